// internal/domain/stake.go
package domain

import "time"

// StakeState is the per-wallet staking state machine position.
type StakeState string

const (
	StateUnstaked         StakeState = "unstaked"
	StateStakedLocked     StakeState = "staked_locked"
	StateStakedUnlockable StakeState = "staked_unlockable"
)

// StakePosition is a read-side view of a wallet's stake.
type StakePosition struct {
	Owner         string        `json:"owner"`
	StakedAmount  float64       `json:"stakedAmount"`
	StakeStart    int64         `json:"stakeStartTime"`
	LockStart     int64         `json:"lockStartTime"`
	APYPercent    float64       `json:"apyPercent"`
	LockPeriod    time.Duration `json:"lockPeriod"`
	State         StakeState    `json:"state"`
	PendingReward float64       `json:"pendingReward"`
	LockRemaining time.Duration `json:"lockRemaining"`
}
