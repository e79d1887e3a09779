package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-plaid-link/internal/config"
	"github.com/jrsteele09/go-plaid-link/internal/utils"
	"github.com/plaid/plaid-go/v29/plaid"
	"github.com/rs/zerolog"
)

const (
	apiVersion        = "2020-09-14"
	maxResponseBytes  = 32 << 20
	defaultAPITimeout = 30 * time.Second
)

// PlaidConfig holds the credentials and endpoint for the Plaid API
type PlaidConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
	Timeout  time.Duration
}

func PlaidConfigFrom(c config.AggregatorConfig) PlaidConfig {
	return PlaidConfig{
		ClientID: c.GetPlaidClientID(),
		Secret:   c.GetPlaidSecret(),
		BaseURL:  c.GetPlaidBaseURL(),
		Timeout:  c.GetPlaidTimeout(),
	}
}

// PlaidClient talks to the Plaid API through the generated plaid-go client.
// Responses handed back to callers are the raw reply bodies, not the
// re-encoded typed models.
type PlaidClient struct {
	api    *plaid.APIClient
	logger zerolog.Logger
}

var _ Client = (*PlaidClient)(nil)

// NewPlaidClient creates a Plaid client. A nil httpClient gets one with
// cfg.Timeout applied.
func NewPlaidClient(cfg PlaidConfig, httpClient *http.Client, logger zerolog.Logger) *PlaidClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAPITimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.AddDefaultHeader("Plaid-Version", apiVersion)
	configuration.Servers = plaid.ServerConfigurations{
		{URL: strings.TrimRight(cfg.BaseURL, "/")},
	}
	configuration.HTTPClient = httpClient

	return &PlaidClient{
		api:    plaid.NewAPIClient(configuration),
		logger: logger,
	}
}

// CreateLinkToken asks Plaid for a link token for the given user
func (c *PlaidClient) CreateLinkToken(ctx context.Context, req LinkSessionRequest) (*LinkToken, error) {
	products := make([]plaid.Products, 0, len(req.Products))
	for _, p := range req.Products {
		product, err := ParseProduct(p)
		if err != nil {
			return nil, UpstreamError(ErrorTypeInvalidRequest, "INVALID_PRODUCT", err.Error(), err)
		}
		products = append(products, product)
	}
	if len(products) == 0 {
		return nil, UpstreamError(ErrorTypeInvalidRequest, "INVALID_PRODUCT", "at least one product is required", nil)
	}

	countryCodes := make([]plaid.CountryCode, 0, len(req.CountryCodes))
	for _, cc := range req.CountryCodes {
		code, err := ParseCountryCode(cc)
		if err != nil {
			return nil, UpstreamError(ErrorTypeInvalidRequest, "INVALID_COUNTRY_CODE", err.Error(), err)
		}
		countryCodes = append(countryCodes, code)
	}
	if len(countryCodes) == 0 {
		return nil, UpstreamError(ErrorTypeInvalidRequest, "INVALID_COUNTRY_CODE", "at least one country code is required", nil)
	}

	request := plaid.NewLinkTokenCreateRequest(
		req.ClientName,
		req.Language,
		countryCodes,
		plaid.LinkTokenCreateRequestUser{ClientUserId: req.ClientUserID},
	)
	request.SetProducts(products)

	c.logger.Debug().
		Str("client_user_id", req.ClientUserID).
		Interface("products", products).
		Interface("country_codes", countryCodes).
		Str("language", req.Language).
		Msg("Creating link token")

	start := time.Now()
	_, httpResp, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	raw, err := c.rawBody("link_token_create", start, httpResp, err)
	if err != nil {
		return nil, err
	}

	var token LinkToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, UpstreamError(ErrorTypeInvalidResp, "", "failed to decode link token response", err)
	}
	if token.LinkToken == "" {
		return nil, UpstreamError(ErrorTypeInvalidResp, "", "link token missing from response", nil)
	}
	token.Raw = raw
	return &token, nil
}

// ExchangePublicToken swaps a single-use public token for an access token
func (c *PlaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	if publicToken == "" {
		return nil, UpstreamError(ErrorTypeInvalidRequest, "MISSING_FIELDS", "public token is required", nil)
	}

	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	start := time.Now()
	resp, httpResp, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if _, err := c.rawBody("item_public_token_exchange", start, httpResp, err); err != nil {
		return nil, err
	}
	if resp.GetAccessToken() == "" {
		return nil, UpstreamError(ErrorTypeInvalidResp, "", "access token missing from response", nil)
	}

	return &ExchangeResult{
		AccessToken: resp.GetAccessToken(),
		ItemID:      resp.GetItemId(),
		RequestID:   resp.GetRequestId(),
	}, nil
}

// GetTransactions fetches the whole date window in one request. Pagination
// is not followed; TotalTransactions lets callers notice truncation.
func (c *PlaidClient) GetTransactions(ctx context.Context, query TransactionQuery) (*TransactionsResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, UpstreamError(ErrorTypeInvalidRequest, "INVALID_FIELD", err.Error(), err)
	}

	request := plaid.NewTransactionsGetRequest(
		query.AccessToken,
		query.StartDate.Format(DateLayout),
		query.EndDate.Format(DateLayout),
	)
	if query.IncludeEnhancedCategory {
		request.SetOptions(plaid.TransactionsGetRequestOptions{
			IncludePersonalFinanceCategory: utils.Ptr(true),
		})
	}

	start := time.Now()
	_, httpResp, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	raw, err := c.rawBody("transactions_get", start, httpResp, err)
	if err != nil {
		return nil, err
	}

	var resp TransactionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, UpstreamError(ErrorTypeInvalidResp, "", "failed to decode transactions response", err)
	}
	if resp.Transactions == nil {
		resp.Transactions = []TransactionRecord{}
	}
	return &resp, nil
}

// rawBody turns the outcome of a generated Execute call into the reply body
// exactly as Plaid sent it. The generated client rewinds the body after
// decoding, so it can be read again here. A 200 whose body the typed model
// rejects is still returned; callers only rely on the raw bytes.
func (c *PlaidClient) rawBody(operation string, start time.Time, httpResp *http.Response, err error) (json.RawMessage, error) {
	if httpResp == nil {
		if err == nil {
			err = fmt.Errorf("no response")
		}
		return nil, UpstreamError(ErrorTypeTransport, "", fmt.Sprintf("%s request failed", operation), err)
	}
	defer httpResp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if readErr != nil {
		return nil, UpstreamError(ErrorTypeTransport, "", "failed to read response body", readErr)
	}

	c.logger.Debug().
		Str("operation", operation).
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Aggregator call")

	if httpResp.StatusCode != http.StatusOK {
		if err == nil {
			err = fmt.Errorf("unexpected status %d", httpResp.StatusCode)
		}
		return nil, fromAPIError(httpResp.StatusCode, raw, err)
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("operation", operation).Msg("Typed decode failed, using raw body")
	}
	return json.RawMessage(raw), nil
}
