package model

type CurrencyTransaction struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	Type      string `json:"type"`
	Source    string `json:"source"`
	SourceID  string `json:"source_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

type GetTransactionsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetTransactionsResponse struct {
	Transactions []CurrencyTransaction `json:"transactions"`
}
