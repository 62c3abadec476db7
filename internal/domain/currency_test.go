package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/testutil"
	"github.com/stunity/backend/pkg/xcontext"
)

func Test_currencyDomain_GetBalance(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	coinLedger := ledger.New(repository.NewCurrencyRepository())
	domain := NewCurrencyDomain(coinLedger)

	// A user without any transaction has a zero balance, not an error.
	resp, err := domain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, &model.GetBalanceResponse{UserID: "user1", Balance: 0}, resp)

	_, err = coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 100, Source: "challenge", SourceID: "challenge-1",
	})
	require.NoError(t, err)

	_, err = coinLedger.Debit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 30, Source: "shop_purchase", SourceID: "item-1",
	})
	require.NoError(t, err)

	resp, err = domain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(70), resp.Balance)

	// The balance always equals the sum of transaction amounts.
	txResp, err := domain.GetTransactions(ctx, &model.GetTransactionsRequest{})
	require.NoError(t, err)
	require.Len(t, txResp.Transactions, 2)

	var sum int64
	for _, tx := range txResp.Transactions {
		sum += tx.Amount
	}
	require.Equal(t, resp.Balance, sum)
}

func Test_ledger_Debit_insufficientBalance(t *testing.T) {
	ctx := testutil.MockContext()
	coinLedger := ledger.New(repository.NewCurrencyRepository())

	_, err := coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 20, Source: "challenge",
	})
	require.NoError(t, err)

	_, err = coinLedger.Debit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 30, Source: "shop_purchase",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PaymentRequired, errx.Code)

	// A refused debit leaves no trace in the ledger.
	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(20), balance)

	transactions, err := coinLedger.Transactions(ctx, "user1", 0, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
}

func Test_ledger_move_transactionScope(t *testing.T) {
	ctx := testutil.MockContext()
	coinLedger := ledger.New(repository.NewCurrencyRepository())

	// A movement joins the caller's transaction, so rolling the caller
	// back discards both the balance update and the record.
	txCtx := xcontext.WithDBTransaction(ctx)
	_, err := coinLedger.Credit(txCtx, ledger.TransactionInput{
		UserID: "user1", Amount: 100, Source: "challenge",
	})
	require.NoError(t, err)
	xcontext.WithRollbackDBTransaction(txCtx)

	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	transactions, err := coinLedger.Transactions(ctx, "user1", 0, 10)
	require.NoError(t, err)
	require.Empty(t, transactions)

	// Without a caller transaction the movement commits on its own.
	_, err = coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 100, Source: "challenge",
	})
	require.NoError(t, err)

	balance, err = coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	transactions, err = coinLedger.Transactions(ctx, "user1", 0, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
}

func Test_ledger_move_invalidAmount(t *testing.T) {
	ctx := testutil.MockContext()
	coinLedger := ledger.New(repository.NewCurrencyRepository())

	var errx errorx.Error
	_, err := coinLedger.Credit(ctx, ledger.TransactionInput{UserID: "user1", Amount: 0})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	_, err = coinLedger.Debit(ctx, ledger.TransactionInput{UserID: "user1", Amount: -5})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_currencyDomain_GetTransactions_limit(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain := NewCurrencyDomain(ledger.New(repository.NewCurrencyRepository()))

	var errx errorx.Error
	_, err := domain.GetTransactions(ctx, &model.GetTransactionsRequest{Limit: -1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	_, err = domain.GetTransactions(ctx, &model.GetTransactionsRequest{Limit: 101})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}
