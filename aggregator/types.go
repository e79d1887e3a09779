package aggregator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v29/plaid"
)

// DateLayout is the calendar date format the aggregator expects
const DateLayout = "2006-01-02"

// ProductTransactions is the product every link in this service asks for
const ProductTransactions = string(plaid.PRODUCTS_TRANSACTIONS)

// ParseProduct converts a configured product name into the Plaid product
// identifier, rejecting names Plaid does not know
func ParseProduct(s string) (plaid.Products, error) {
	p, err := plaid.NewProductsFromValue(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("unknown product %q: %w", s, err)
	}
	return *p, nil
}

// ParseCountryCode converts an ISO-3166-1 alpha-2 code into the Plaid
// country code, rejecting countries Plaid does not serve
func ParseCountryCode(s string) (plaid.CountryCode, error) {
	c, err := plaid.NewCountryCodeFromValue(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("unsupported country code %q: %w", s, err)
	}
	return *c, nil
}

// LinkSessionRequest describes a requested link. It is built per request
// and never stored.
type LinkSessionRequest struct {
	ClientUserID string
	ClientName   string
	Products     []string
	CountryCodes []string
	Language     string
}

// LinkToken is the vendor response to a link token request. Raw holds the
// payload exactly as received so it can be handed to the browser widget.
type LinkToken struct {
	LinkToken  string          `json:"link_token"`
	Expiration string          `json:"expiration"`
	RequestID  string          `json:"request_id"`
	Raw        json.RawMessage `json:"-"`
}

// ExchangeResult carries the durable access token. AccessToken must not be
// serialised to clients, hence the "-" tag.
type ExchangeResult struct {
	AccessToken string `json:"-"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// TransactionQuery asks for every transaction in [StartDate, EndDate]
type TransactionQuery struct {
	AccessToken             string
	StartDate               time.Time
	EndDate                 time.Time
	IncludeEnhancedCategory bool
}

func (q TransactionQuery) Validate() error {
	if q.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if q.StartDate.After(q.EndDate) {
		return fmt.Errorf("start date %s is after end date %s", q.StartDate.Format(DateLayout), q.EndDate.Format(DateLayout))
	}
	return nil
}

// TransactionRecord is one transaction exactly as the aggregator returned
// it. Its fields are not interpreted here.
type TransactionRecord = json.RawMessage

// TransactionsResponse is the envelope returned for a transaction query
type TransactionsResponse struct {
	Transactions      []TransactionRecord `json:"transactions"`
	TotalTransactions int                 `json:"total_transactions"`
	RequestID         string              `json:"request_id"`
}
