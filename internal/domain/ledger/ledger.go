package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// TransactionInput describes one balance movement. Source names the
// subsystem granting or spending the coins, SourceID the concrete
// record it traces back to.
type TransactionInput struct {
	UserID   string
	Amount   int64
	Source   string
	SourceID string
}

// Ledger is the single write path for coin balances. Every movement
// leaves a transaction record, so the sum of a user's transactions
// always equals the account balance.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Credit(ctx context.Context, input TransactionInput) (*entity.CurrencyTransaction, error)
	Debit(ctx context.Context, input TransactionInput) (*entity.CurrencyTransaction, error)
	Transactions(ctx context.Context, userID string, offset, limit int) ([]entity.CurrencyTransaction, error)
}

type ledger struct {
	currencyRepo repository.CurrencyRepository
}

func New(currencyRepo repository.CurrencyRepository) *ledger {
	return &ledger{currencyRepo: currencyRepo}
}

func (l *ledger) Balance(ctx context.Context, userID string) (int64, error) {
	account, err := l.currencyRepo.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get currency account: %v", err)
		return 0, errorx.Unknown
	}

	return account.Balance, nil
}

func (l *ledger) Credit(ctx context.Context, input TransactionInput) (*entity.CurrencyTransaction, error) {
	return l.move(ctx, input, entity.TransactionCredit)
}

func (l *ledger) Debit(ctx context.Context, input TransactionInput) (*entity.CurrencyTransaction, error) {
	return l.move(ctx, input, entity.TransactionDebit)
}

// move joins the caller's transaction when one is in flight, otherwise
// it runs in a transaction of its own. The balance update and the
// transaction record always land together.
func (l *ledger) move(
	ctx context.Context, input TransactionInput, txType entity.TransactionType,
) (*entity.CurrencyTransaction, error) {
	if input.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be positive")
	}

	if xcontext.HasDBTransaction(ctx) {
		return l.moveTx(ctx, input, txType)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	transaction, err := l.moveTx(ctx, input, txType)
	if err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return transaction, nil
}

func (l *ledger) moveTx(
	ctx context.Context, input TransactionInput, txType entity.TransactionType,
) (*entity.CurrencyTransaction, error) {
	if err := l.currencyRepo.CreateAccount(ctx, &entity.CurrencyAccount{UserID: input.UserID}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot ensure currency account: %v", err)
		return nil, errorx.Unknown
	}

	delta := input.Amount
	if txType == entity.TransactionDebit {
		delta = -input.Amount
	}

	if err := l.currencyRepo.AddBalance(ctx, input.UserID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PaymentRequired, "Not enough balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot update balance: %v", err)
		return nil, errorx.Unknown
	}

	transaction := &entity.CurrencyTransaction{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   input.UserID,
		Amount:   delta,
		Type:     txType,
		Source:   input.Source,
		SourceID: input.SourceID,
	}

	if err := l.currencyRepo.CreateTransaction(ctx, transaction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create currency transaction: %v", err)
		return nil, errorx.Unknown
	}

	return transaction, nil
}

func (l *ledger) Transactions(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.CurrencyTransaction, error) {
	transactions, err := l.currencyRepo.GetTransactions(ctx, userID, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get currency transactions: %v", err)
		return nil, errorx.Unknown
	}

	return transactions, nil
}
