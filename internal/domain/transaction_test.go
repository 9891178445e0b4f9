package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTxType(t *testing.T) {
	for _, s := range []string{"purchase", "sale", "metal_received", "metal_given", "cash_received", "cash_given"} {
		got, err := ParseTxType(s)
		require.NoError(t, err)
		require.Equal(t, TxType(s), got)
	}

	for _, s := range []string{"", "donation", "PURCHASE", "metal received"} {
		_, err := ParseTxType(s)
		require.Error(t, err, "tag %q must be rejected", s)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "type", verr.Field)
	}
}

func TestTxTypeClassification(t *testing.T) {
	tests := []struct {
		t      TxType
		weight bool
		amount bool
	}{
		{TxPurchase, true, true},
		{TxSale, true, true},
		{TxMetalReceived, true, false},
		{TxMetalGiven, true, false},
		{TxCashReceived, false, true},
		{TxCashGiven, false, true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.weight, tt.t.WeightBearing(), "%s weight", tt.t)
		require.Equal(t, tt.amount, tt.t.AmountBearing(), "%s amount", tt.t)
	}
}
