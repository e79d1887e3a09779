// Package link runs the two halves of account linking: creating a link
// token for the browser widget and exchanging the resulting public token
// for an access token kept in the session.
package link

import (
	"context"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/jrsteele09/go-plaid-link/credentials"
	"github.com/jrsteele09/go-plaid-link/internal/config"
	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	applog "github.com/jrsteele09/go-plaid-link/internal/log"
	"github.com/jrsteele09/go-plaid-link/internal/utils"
	"github.com/jrsteele09/go-plaid-link/sessions"
	"github.com/rs/zerolog"
)

// Settings are the fixed parts of every link token request
type Settings struct {
	ClientName   string
	Products     []string
	CountryCodes []string
	Language     string
}

func DefaultSettings() Settings {
	return Settings{
		ClientName:   "Plaid Web App",
		Products:     []string{aggregator.ProductTransactions},
		CountryCodes: []string{"US"},
		Language:     "en",
	}
}

func SettingsFrom(cfg config.AggregatorConfig) Settings {
	return Settings{
		ClientName:   cfg.GetLinkClientName(),
		Products:     cfg.GetLinkProducts(),
		CountryCodes: cfg.GetLinkCountryCodes(),
		Language:     cfg.GetLinkLanguage(),
	}
}

type Controller struct {
	client   aggregator.Client
	store    credentials.Store
	states   credentials.StateStore
	settings Settings
	logger   zerolog.Logger
}

func NewController(client aggregator.Client, store credentials.Store, states credentials.StateStore, settings Settings, logger zerolog.Logger) *Controller {
	return &Controller{
		client:   client,
		store:    store,
		states:   states,
		settings: settings,
		logger:   logger,
	}
}

// Initiate creates a link token for identity (GuestUserID when empty) and
// returns the vendor payload untouched.
func (c *Controller) Initiate(ctx context.Context, identity string) (*aggregator.LinkToken, error) {
	if identity == "" {
		identity = sessions.GuestUserID
	}

	req := aggregator.LinkSessionRequest{
		ClientUserID: identity,
		ClientName:   c.settings.ClientName,
		Products:     append([]string(nil), c.settings.Products...),
		CountryCodes: append([]string(nil), c.settings.CountryCodes...),
		Language:     c.settings.Language,
	}

	token, err := c.client.CreateLinkToken(ctx, req)
	if err != nil {
		applog.Failure(c.logger, err, "Error creating link token")
		c.transition(ctx, StateFailed)
		return nil, err
	}

	c.logger.Info().
		Str("client_user_id", identity).
		Str("link_token", utils.Truncate(token.LinkToken, 24)).
		Msg("Link token created")
	c.transition(ctx, StateInitiated)
	return token, nil
}

// Complete exchanges publicToken and stores the resulting access token in
// the current session. Nothing is stored unless the exchange succeeds.
func (c *Controller) Complete(ctx context.Context, publicToken string) (*aggregator.ExchangeResult, error) {
	if publicToken == "" {
		err := apperrors.New(apperrors.KindInvalidRequest, "link", "publicToken is required")
		c.transition(ctx, StateFailed)
		return nil, err
	}

	result, err := c.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		applog.Failure(c.logger, err, "Error exchanging public token")
		c.transition(ctx, StateFailed)
		return nil, err
	}

	if err := c.store.Set(ctx, result.AccessToken, result.ItemID); err != nil {
		storeErr := &apperrors.Error{
			Kind:    apperrors.KindInternal,
			Message: "failed to store access token",
			Type:    string(apperrors.KindInternal),
			Source:  "credentials",
			Err:     err,
		}
		applog.Failure(c.logger, storeErr, "Error storing access token")
		c.transition(ctx, StateFailed)
		return nil, storeErr
	}

	c.logger.Info().Str("item_id", result.ItemID).Msg("Public token exchanged")
	c.transition(ctx, StateComplete)
	return result, nil
}

// State returns the last recorded link state for the current session
func (c *Controller) State(ctx context.Context) State {
	return ParseState(c.states.LinkState(ctx))
}

func (c *Controller) transition(ctx context.Context, to State) {
	from := c.State(ctx)
	if err := c.states.SetLinkState(ctx, string(to)); err != nil {
		c.logger.Debug().Err(err).Str("state", string(to)).Msg("Link state not recorded")
		return
	}
	c.logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Link state")
}
