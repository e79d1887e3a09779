package fakeaggregator

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-plaid-link/aggregator"
)

var _ aggregator.Client = (*FakeClient)(nil)

// FakeClient is an in-memory aggregator. Public tokens handed out by
// CreateLinkToken via IssuePublicToken are single use, like the real thing.
type FakeClient struct {
	lock sync.Mutex

	// Set any of these to make the matching call fail
	LinkTokenErr    error
	ExchangeErr     error
	TransactionsErr error

	// Transactions returned for any valid access token
	Transactions      []aggregator.TransactionRecord
	TotalTransactions int

	publicTokens map[string]string // public token -> item id
	accessTokens map[string]string // access token -> item id

	LinkRequests       []aggregator.LinkSessionRequest
	TransactionQueries []aggregator.TransactionQuery
	ExchangeCalls      int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		publicTokens: make(map[string]string),
		accessTokens: make(map[string]string),
	}
}

// IssuePublicToken simulates a user completing the link widget
func (c *FakeClient) IssuePublicToken() string {
	c.lock.Lock()
	defer c.lock.Unlock()

	token := "public-sandbox-" + uuid.New().String()
	c.publicTokens[token] = "item-" + uuid.New().String()
	return token
}

func (c *FakeClient) CreateLinkToken(_ context.Context, req aggregator.LinkSessionRequest) (*aggregator.LinkToken, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.LinkRequests = append(c.LinkRequests, req)
	if c.LinkTokenErr != nil {
		return nil, c.LinkTokenErr
	}

	token := &aggregator.LinkToken{
		LinkToken:  "link-sandbox-" + uuid.New().String(),
		Expiration: "2099-01-01T00:00:00Z",
		RequestID:  uuid.New().String(),
	}
	raw, err := json.Marshal(map[string]string{
		"link_token": token.LinkToken,
		"expiration": token.Expiration,
		"request_id": token.RequestID,
	})
	if err != nil {
		return nil, err
	}
	token.Raw = raw
	return token, nil
}

func (c *FakeClient) ExchangePublicToken(_ context.Context, publicToken string) (*aggregator.ExchangeResult, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.ExchangeCalls++
	if c.ExchangeErr != nil {
		return nil, c.ExchangeErr
	}

	itemID, ok := c.publicTokens[publicToken]
	if !ok {
		return nil, aggregator.UpstreamError("INVALID_INPUT", "INVALID_PUBLIC_TOKEN", "provided public token is in an invalid format. expected format: public-<environment>-<identifier>", nil)
	}
	delete(c.publicTokens, publicToken)

	accessToken := "access-sandbox-" + uuid.New().String()
	c.accessTokens[accessToken] = itemID
	return &aggregator.ExchangeResult{
		AccessToken: accessToken,
		ItemID:      itemID,
		RequestID:   uuid.New().String(),
	}, nil
}

func (c *FakeClient) GetTransactions(_ context.Context, query aggregator.TransactionQuery) (*aggregator.TransactionsResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.TransactionQueries = append(c.TransactionQueries, query)
	if c.TransactionsErr != nil {
		return nil, c.TransactionsErr
	}
	if _, ok := c.accessTokens[query.AccessToken]; !ok {
		return nil, aggregator.UpstreamError("INVALID_INPUT", "INVALID_ACCESS_TOKEN", "provided access token is invalid", nil)
	}

	records := make([]aggregator.TransactionRecord, len(c.Transactions))
	copy(records, c.Transactions)
	total := c.TotalTransactions
	if total == 0 {
		total = len(records)
	}
	return &aggregator.TransactionsResponse{
		Transactions:      records,
		TotalTransactions: total,
		RequestID:         uuid.New().String(),
	}, nil
}

// AccessTokens returns the access tokens issued so far
func (c *FakeClient) AccessTokens() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	tokens := make([]string, 0, len(c.accessTokens))
	for t := range c.accessTokens {
		tokens = append(tokens, t)
	}
	return tokens
}
