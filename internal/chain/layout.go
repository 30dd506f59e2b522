// internal/chain/layout.go
package chain

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/goldium-io/gold-core/internal/utils/binary"
)

// Раскладка SPL Token аккаунтов.
const (
	TokenAccountSize   = 165
	tokenAmountOffset  = 64
	MintAccountSize    = 82
	mintAuthorityOff   = 0
	mintSupplyOffset   = 36
	mintDecimalsOffset = 44
	mintInitOffset     = 45
	freezeAuthorityOff = 46
)

// ErrNotMintAccount: данные аккаунта не являются SPL mint (например, это токен-аккаунт).
var ErrNotMintAccount = errors.New("not a mint account")

// MintInfo: декодированный mint-аккаунт.
type MintInfo struct {
	Address         solana.PublicKey  `json:"address"`
	Owner           solana.PublicKey  `json:"owner"`
	Decimals        uint8             `json:"decimals"`
	Supply          uint64            `json:"supply"`
	IsInitialized   bool              `json:"isInitialized"`
	MintAuthority   *solana.PublicKey `json:"mintAuthority,omitempty"`
	FreezeAuthority *solana.PublicKey `json:"freezeAuthority,omitempty"`
}

// parseTokenAmount читает amount (u64 LE, байты 64..72) без полной десериализации аккаунта.
func parseTokenAmount(data []byte) (uint64, error) {
	return binary.ReadUint64LittleEndian(data, tokenAmountOffset)
}

func readOptionKey(data []byte, offset int) (*solana.PublicKey, error) {
	tag, err := binary.ReadUint32LittleEndian(data, offset)
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	key, err := binary.ReadPubKey(data, offset+4)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func parseMint(data []byte) (MintInfo, error) {
	var info MintInfo
	// токен-аккаунт (165 байт) тоже принадлежит token program, поэтому размер проверяется строго
	if len(data) != MintAccountSize {
		return info, fmt.Errorf("%w: expected %d bytes, got %d", ErrNotMintAccount, MintAccountSize, len(data))
	}
	var err error
	if info.MintAuthority, err = readOptionKey(data, mintAuthorityOff); err != nil {
		return info, err
	}
	if info.Supply, err = binary.ReadUint64LittleEndian(data, mintSupplyOffset); err != nil {
		return info, err
	}
	if info.Decimals, err = binary.ReadUint8(data, mintDecimalsOffset); err != nil {
		return info, err
	}
	initFlag, err := binary.ReadUint8(data, mintInitOffset)
	if err != nil {
		return info, err
	}
	if initFlag > 1 {
		return info, fmt.Errorf("%w: is_initialized flag %d", ErrNotMintAccount, initFlag)
	}
	info.IsInitialized = initFlag == 1
	if info.FreezeAuthority, err = readOptionKey(data, freezeAuthorityOff); err != nil {
		return info, err
	}
	return info, nil
}
