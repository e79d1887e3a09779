package transactions

import (
	"context"
	"time"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/jrsteele09/go-plaid-link/credentials"
	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	applog "github.com/jrsteele09/go-plaid-link/internal/log"
	"github.com/rs/zerolog"
)

// DefaultWindowDays is how far back a fetch reaches when nothing else is
// configured
const DefaultWindowDays = 365

// Window returns the calendar dates [start, end] for a fetch at now. Both
// are midnight UTC of the calendar day as seen in now's location, so
// end-start is always exactly days*24h.
func Window(now time.Time, days int) (start, end time.Time) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	y, m, d := now.Date()
	end = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start = end.AddDate(0, 0, -days)
	return start, end
}

// Service fetches the transactions for the account linked to the current
// session
type Service struct {
	client     aggregator.Client
	store      credentials.Store
	windowDays int
	logger     zerolog.Logger
}

func NewService(client aggregator.Client, store credentials.Store, windowDays int, logger zerolog.Logger) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{
		client:     client,
		store:      store,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Query builds the aggregator query for accessToken at now
func (s *Service) Query(accessToken string, now time.Time) aggregator.TransactionQuery {
	start, end := Window(now, s.windowDays)
	return aggregator.TransactionQuery{
		AccessToken:             accessToken,
		StartDate:               start,
		EndDate:                 end,
		IncludeEnhancedCategory: true,
	}
}

// Fetch returns the records in the trailing window ending at now, exactly
// as the aggregator sent them. ErrNotLinked means no access token is held
// for the session.
func (s *Service) Fetch(ctx context.Context, now time.Time) ([]aggregator.TransactionRecord, error) {
	accessToken, ok := s.store.Get(ctx)
	if !ok {
		return nil, apperrors.ErrNotLinked
	}

	query := s.Query(accessToken, now)
	s.logger.Info().
		Str("start_date", query.StartDate.Format(aggregator.DateLayout)).
		Str("end_date", query.EndDate.Format(aggregator.DateLayout)).
		Msg("Fetching transactions")

	resp, err := s.client.GetTransactions(ctx, query)
	if err != nil {
		applog.Failure(s.logger, err, "Error fetching transactions")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(resp.Transactions)).
		Int("total_transactions", resp.TotalTransactions).
		Str("request_id", resp.RequestID).
		Msg("Transactions fetched")
	if resp.TotalTransactions > len(resp.Transactions) {
		// TODO: follow the offset/count pagination of /transactions/get once the
		// account volume makes truncation observable in practice.
		s.logger.Warn().
			Int("count", len(resp.Transactions)).
			Int("total_transactions", resp.TotalTransactions).
			Msg("Aggregator returned fewer transactions than it reports")
	}

	return resp.Transactions, nil
}
