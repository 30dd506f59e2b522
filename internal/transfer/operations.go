// internal/transfer/operations.go
package transfer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

const solDecimals = 9

// CreateTokenAccountIfNeeded возвращает ATA (mint, owner), создавая его при отсутствии.
// Одновременные вызовы для одного ATA сливаются в одну транзакцию.
func (b *Builder) CreateTokenAccountIfNeeded(ctx context.Context, signer Signer, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	if signer == nil {
		return solana.PublicKey{}, ErrWalletNotConnected
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}

	exists, err := b.accountExists(ctx, ata)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if exists {
		return ata, nil
	}

	_, err, _ = b.group.Do(ata.String(), func() (interface{}, error) {
		// аккаунт мог появиться, пока ждали предыдущий вызов
		exists, err := b.accountExists(ctx, ata)
		if err != nil || exists {
			return nil, err
		}
		ix := associatedtokenaccount.NewCreateInstruction(signer.PublicKey(), owner, mint).Build()
		sig, err := b.submit(ctx, signer, "create_ata", []solana.Instruction{ix})
		if err != nil {
			return nil, fmt.Errorf("create token account %s: %w", ata, err)
		}
		b.logger.Info("token account created",
			zap.String("ata", ata.String()),
			zap.String("owner", owner.String()),
			zap.String("mint", mint.String()),
			zap.String("signature", sig.String()))
		return nil, nil
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return ata, nil
}

// TransferTokens переводит amount токенов mint получателю.
// ATA отправителя обязан существовать; ATA получателя создаётся в той же транзакции.
func (b *Builder) TransferTokens(ctx context.Context, signer Signer, mint, recipient solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error) {
	if signer == nil {
		return solana.Signature{}, ErrWalletNotConnected
	}
	units, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return solana.Signature{}, err
	}

	sender := signer.PublicKey()
	senderATA, err := b.requireSenderAccount(ctx, sender, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	instructions, recipientATA, err := b.recipientAccount(ctx, sender, recipient, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	instructions = append(instructions,
		token.NewTransferInstruction(units, senderATA, recipientATA, sender, nil).Build())

	return b.submit(ctx, signer, "transfer_tokens", instructions)
}

// TransferSOL переводит нативные SOL.
func (b *Builder) TransferSOL(ctx context.Context, signer Signer, recipient solana.PublicKey, sol float64) (solana.Signature, error) {
	if signer == nil {
		return solana.Signature{}, ErrWalletNotConnected
	}
	lamports, err := ToBaseUnits(sol, solDecimals)
	if err != nil {
		return solana.Signature{}, err
	}
	ix := system.NewTransferInstruction(lamports, signer.PublicKey(), recipient).Build()
	return b.submit(ctx, signer, "transfer_sol", []solana.Instruction{ix})
}

// BurnTokens сжигает токены с ATA подписанта.
func (b *Builder) BurnTokens(ctx context.Context, signer Signer, mint solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error) {
	if signer == nil {
		return solana.Signature{}, ErrWalletNotConnected
	}
	units, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return solana.Signature{}, err
	}
	owner := signer.PublicKey()
	source, err := b.requireSenderAccount(ctx, owner, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	ix := token.NewBurnInstruction(units, source, mint, owner, nil).Build()
	return b.submit(ctx, signer, "burn", []solana.Instruction{ix})
}

// MintTokens выпускает токены получателю. Подписант должен быть mint authority,
// это проверяет программа токенов.
func (b *Builder) MintTokens(ctx context.Context, signer Signer, mint, recipient solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error) {
	if signer == nil {
		return solana.Signature{}, ErrWalletNotConnected
	}
	units, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return solana.Signature{}, err
	}
	authority := signer.PublicKey()
	instructions, dest, err := b.recipientAccount(ctx, authority, recipient, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	instructions = append(instructions,
		token.NewMintToInstruction(units, mint, dest, authority, nil).Build())
	return b.submit(ctx, signer, "mint", instructions)
}

func (b *Builder) requireSenderAccount(ctx context.Context, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	exists, err := b.accountExists(ctx, ata)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !exists {
		return solana.PublicKey{}, ErrSenderAccountMissing
	}
	return ata, nil
}

// recipientAccount возвращает ATA получателя и, если его нет, инструкцию создания.
func (b *Builder) recipientAccount(ctx context.Context, payer, recipient, mint solana.PublicKey) ([]solana.Instruction, solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	exists, err := b.accountExists(ctx, ata)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if exists {
		return nil, ata, nil
	}
	return []solana.Instruction{createATAIdempotentInstruction(payer, recipient, mint, ata)}, ata, nil
}
