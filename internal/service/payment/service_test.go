package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

func TestCheckSettlementMatchingAmount(t *testing.T) {
	amount := decimal.NewFromFloat(149.50)
	assert.NoError(t, checkSettlement(amount, amount))
}

func TestCheckSettlementRejectsDriftedCart(t *testing.T) {
	err := checkSettlement(decimal.NewFromFloat(149.50), decimal.NewFromFloat(199.00))
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestCheckSettlementRejectsEmptiedCart(t *testing.T) {
	err := checkSettlement(decimal.NewFromFloat(149.50), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}
