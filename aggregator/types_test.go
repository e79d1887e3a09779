package aggregator_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/plaid/plaid-go/v29/plaid"
	"github.com/stretchr/testify/require"
)

func TestParseProduct(t *testing.T) {
	p, err := aggregator.ParseProduct(" Transactions ")
	require.NoError(t, err)
	require.Equal(t, plaid.PRODUCTS_TRANSACTIONS, p)
	require.Equal(t, aggregator.ProductTransactions, string(p))

	_, err = aggregator.ParseProduct("unknown")
	require.Error(t, err)
}

func TestParseCountryCode(t *testing.T) {
	c, err := aggregator.ParseCountryCode("gb")
	require.NoError(t, err)
	require.Equal(t, plaid.COUNTRYCODE_GB, c)

	_, err = aggregator.ParseCountryCode("USA")
	require.Error(t, err)
}

func TestTransactionQuery_Validate(t *testing.T) {
	now := time.Now()

	require.NoError(t, aggregator.TransactionQuery{AccessToken: "a", StartDate: now, EndDate: now}.Validate())
	require.Error(t, aggregator.TransactionQuery{StartDate: now, EndDate: now}.Validate())
	require.Error(t, aggregator.TransactionQuery{AccessToken: "a", StartDate: now.Add(time.Hour), EndDate: now}.Validate())
}
