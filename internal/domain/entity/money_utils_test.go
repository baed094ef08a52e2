package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain amount", input: "50.00", want: "50.00"},
		{name: "no decimals", input: "7", want: "7"},
		{name: "surrounding whitespace", input: "  12.34  ", want: "12.34"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "fifty", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-5.00", wantErr: true},
		{name: "too many decimal places", input: "1.999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50.00", FormatAmount(decimal.RequireFromString("50")))
	assert.Equal(t, "0.50", FormatAmount(decimal.RequireFromString("0.5")))
	assert.Equal(t, "12.34", FormatAmount(decimal.RequireFromString("12.34")))
}

func TestTxStatusIsTerminal(t *testing.T) {
	assert.True(t, TxCommitted.IsTerminal())
	assert.True(t, TxRolledBack.IsTerminal())
	assert.False(t, TxInit.IsTerminal())
	assert.False(t, TxTrySuccess.IsTerminal())
	assert.False(t, TxTryFailed.IsTerminal())
}
