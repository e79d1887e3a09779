package aggregator

import "context"

// Client is the aggregator surface used by the link and transaction flows.
// Every method performs a single round trip and never retries.
type Client interface {
	CreateLinkToken(ctx context.Context, req LinkSessionRequest) (*LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)
	GetTransactions(ctx context.Context, query TransactionQuery) (*TransactionsResponse, error)
}
