package config

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-plaid-link/internal/utils"
)

const (
	plaidClientIDVar = "PLAID_CLIENT_ID"
	plaidSecretVar   = "PLAID_SECRET"
	plaidEnvVar      = "PLAID_ENV"
	plaidBaseURLVar  = "PLAID_BASE_URL"
	plaidTimeoutVar  = "PLAID_TIMEOUT"

	transactionWindowVar = "TRANSACTIONS_WINDOW_DAYS"
)

type Aggregator struct {
	file *File
}

var _ AggregatorConfig = Aggregator{}

func (Aggregator) GetPlaidClientID() string {
	return GetEnv(plaidClientIDVar, "")
}

func (Aggregator) GetPlaidSecret() string {
	return GetEnv(plaidSecretVar, "")
}

// GetPlaidEnv returns sandbox, development or production
func (Aggregator) GetPlaidEnv() string {
	return GetEnv(plaidEnvVar, "sandbox")
}

// GetPlaidBaseURL returns PLAID_BASE_URL, or the host derived from PLAID_ENV
func (a Aggregator) GetPlaidBaseURL() string {
	return GetEnv(plaidBaseURLVar, fmt.Sprintf("https://%s.plaid.com", a.GetPlaidEnv()))
}

func (Aggregator) GetPlaidTimeout() time.Duration {
	return GetEnvDuration(plaidTimeoutVar, 30*time.Second)
}

func (a Aggregator) GetLinkClientName() string {
	if a.file != nil && a.file.Link.ClientName != "" {
		return a.file.Link.ClientName
	}
	return "Plaid Web App"
}

func (a Aggregator) GetLinkProducts() []string {
	if a.file != nil {
		if products := utils.NormaliseList(a.file.Link.Products, false); len(products) > 0 {
			return products
		}
	}
	return []string{"transactions"}
}

func (a Aggregator) GetLinkCountryCodes() []string {
	if a.file != nil {
		if codes := utils.NormaliseList(a.file.Link.CountryCodes, true); len(codes) > 0 {
			return codes
		}
	}
	return []string{"US"}
}

func (a Aggregator) GetLinkLanguage() string {
	if a.file != nil && a.file.Link.Language != "" {
		return a.file.Link.Language
	}
	return "en"
}

func (a Aggregator) GetTransactionWindowDays() int {
	days := 365
	if a.file != nil && a.file.Transactions.WindowDays > 0 {
		days = a.file.Transactions.WindowDays
	}
	return GetEnvInt(transactionWindowVar, days)
}
