package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Wallet is the funding collaborator for all money movements. The real
// implementation lives in the platform's wallet service; the engine only
// needs debit and credit. A failed Debit must leave the customer untouched,
// so ledger operations call Debit before persisting any state change.
type Wallet interface {
	// Debit withdraws amount from the customer's balance. Returns
	// domain.ErrInsufficientFunds when the balance cannot cover it.
	Debit(ctx context.Context, customerKey string, amount decimal.Decimal) error
	// Credit deposits amount into the customer's balance.
	Credit(ctx context.Context, customerKey string, amount decimal.Decimal) error
}

// NopWallet accepts every movement. It backs the CLI and tests where no
// wallet service is attached.
type NopWallet struct{}

func (NopWallet) Debit(ctx context.Context, customerKey string, amount decimal.Decimal) error {
	return nil
}

func (NopWallet) Credit(ctx context.Context, customerKey string, amount decimal.Decimal) error {
	return nil
}
