// internal/ledger/state.go
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletState: снимок всех полей кошелька. Нулевое время означает "не задано".
type WalletState struct {
	Owner          string
	GoldBalance    float64
	SOLBalance     float64
	LPTokens       float64
	StakedAmount   float64
	StakeStartTime int64
	StakeLockStart int64
	LastClaimTime  int64
	BridgeHistory  []domain.BridgeRecord
}

// Balance возвращает баланс по символу симулятора.
func (s *WalletState) Balance(symbol string) (*float64, bool) {
	switch symbol {
	case "GOLD":
		return &s.GoldBalance, true
	case "SOL":
		return &s.SOLBalance, true
	case "LP":
		return &s.LPTokens, true
	}
	return nil, false
}

func (s *WalletState) clone() WalletState {
	c := *s
	c.BridgeHistory = append([]domain.BridgeRecord(nil), s.BridgeHistory...)
	return c
}

type numberField struct {
	name string
	get  func(*WalletState) *float64
}

type timeField struct {
	name string
	get  func(*WalletState) *int64
}

var numberFields = []numberField{
	{FieldGoldBalance, func(s *WalletState) *float64 { return &s.GoldBalance }},
	{FieldSOLBalance, func(s *WalletState) *float64 { return &s.SOLBalance }},
	{FieldLPTokens, func(s *WalletState) *float64 { return &s.LPTokens }},
	{FieldStakedAmount, func(s *WalletState) *float64 { return &s.StakedAmount }},
}

var timeFields = []timeField{
	{FieldStakeStartTime, func(s *WalletState) *int64 { return &s.StakeStartTime }},
	{FieldStakeLockStart, func(s *WalletState) *int64 { return &s.StakeLockStart }},
	{FieldLastClaimTime, func(s *WalletState) *int64 { return &s.LastClaimTime }},
}

func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parseNumber(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// load читает все поля; отсутствующие и нечитаемые значения дают 0.
func (l *Ledger) load(ctx context.Context, owner string) (WalletState, error) {
	st := WalletState{Owner: owner}

	for _, f := range numberFields {
		raw, ok, err := l.store.Get(ctx, Key(owner, f.name))
		if err != nil {
			return st, fmt.Errorf("read %s: %w", f.name, err)
		}
		if !ok {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			l.logger.Warn("malformed ledger number, treating as zero",
				zap.String("owner", owner),
				zap.String("field", f.name),
				zap.String("raw", raw))
			continue
		}
		*f.get(&st) = v
	}

	for _, f := range timeFields {
		raw, ok, err := l.store.Get(ctx, Key(owner, f.name))
		if err != nil {
			return st, fmt.Errorf("read %s: %w", f.name, err)
		}
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			l.logger.Warn("malformed ledger timestamp, treating as unset",
				zap.String("owner", owner),
				zap.String("field", f.name),
				zap.String("raw", raw))
			continue
		}
		*f.get(&st) = v
	}

	raw, ok, err := l.store.Get(ctx, Key(owner, FieldBridgeHistory))
	if err != nil {
		return st, fmt.Errorf("read %s: %w", FieldBridgeHistory, err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &st.BridgeHistory); err != nil {
			l.logger.Warn("malformed bridge history, treating as empty",
				zap.String("owner", owner),
				zap.Error(err))
			st.BridgeHistory = nil
		}
	}
	return st, nil
}

type change struct {
	field    string
	old, new float64
}

// diff строит операции для изменившихся полей.
func diff(before, after *WalletState) ([]Op, []change, error) {
	var ops []Op
	var changes []change

	for _, f := range numberFields {
		o, n := *f.get(before), *f.get(after)
		if o == n {
			continue
		}
		ops = append(ops, SetOp(Key(after.Owner, f.name), formatNumber(n)))
		changes = append(changes, change{field: f.name, old: o, new: n})
	}

	for _, f := range timeFields {
		o, n := *f.get(before), *f.get(after)
		if o == n {
			continue
		}
		if n == 0 {
			ops = append(ops, DeleteOp(Key(after.Owner, f.name)))
		} else {
			ops = append(ops, SetOp(Key(after.Owner, f.name), strconv.FormatInt(n, 10)))
		}
	}

	oldHist, err := encodeHistory(before.BridgeHistory)
	if err != nil {
		return nil, nil, err
	}
	newHist, err := encodeHistory(after.BridgeHistory)
	if err != nil {
		return nil, nil, err
	}
	if oldHist != newHist {
		ops = append(ops, SetOp(Key(after.Owner, FieldBridgeHistory), newHist))
	}
	return ops, changes, nil
}

func encodeHistory(h []domain.BridgeRecord) (string, error) {
	if len(h) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode bridge history: %w", err)
	}
	return string(b), nil
}
