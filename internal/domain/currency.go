package domain

import (
	"context"

	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
)

type CurrencyDomain interface {
	GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetTransactions(ctx context.Context, req *model.GetTransactionsRequest) (*model.GetTransactionsResponse, error)
}

type currencyDomain struct {
	ledger ledger.Ledger
}

func NewCurrencyDomain(ledger ledger.Ledger) *currencyDomain {
	return &currencyDomain{ledger: ledger}
}

func (d *currencyDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	balance, err := d.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.GetBalanceResponse{UserID: userID, Balance: balance}, nil
}

func (d *currencyDomain) GetTransactions(
	ctx context.Context, req *model.GetTransactionsRequest,
) (*model.GetTransactionsResponse, error) {
	if req.Limit == 0 {
		req.Limit = xcontext.Configs(ctx).ApiServer.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > xcontext.Configs(ctx).ApiServer.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)",
			xcontext.Configs(ctx).ApiServer.MaxLimit)
	}

	transactions, err := d.ledger.Transactions(ctx, xcontext.RequestUserID(ctx), req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	result := make([]model.CurrencyTransaction, 0, len(transactions))
	for i := range transactions {
		result = append(result, convertTransaction(&transactions[i]))
	}

	return &model.GetTransactionsResponse{Transactions: result}, nil
}
