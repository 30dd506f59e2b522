// internal/ledger/keys.go
package ledger

import "strings"

// Поля кошелька в хранилище; ключ: "${owner}_${field}".
const (
	FieldGoldBalance    = "goldBalance"
	FieldSOLBalance     = "solBalance"
	FieldLPTokens       = "lpTokens"
	FieldStakedAmount   = "stakedAmount"
	FieldStakeStartTime = "stakeStartTime"
	FieldStakeLockStart = "stakeLockStart"
	FieldLastClaimTime  = "lastClaimTime"
	FieldBridgeHistory  = "bridgeHistory"
)

// Key собирает ключ хранилища.
func Key(owner, field string) string {
	return owner + "_" + field
}

// SplitKey разбирает ключ на владельца и поле. Base58 не содержит '_',
// поэтому граница однозначна.
func SplitKey(key string) (owner, field string, ok bool) {
	i := strings.LastIndexByte(key, '_')
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// defaults засеваются InitializeTestEnvironment для отсутствующих полей.
var defaults = []struct {
	field string
	value string
}{
	{FieldGoldBalance, "1000"},
	{FieldSOLBalance, "10"},
	{FieldLPTokens, "0"},
	{FieldStakedAmount, "0"},
	{FieldBridgeHistory, "[]"},
}
