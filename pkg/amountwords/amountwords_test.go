package amountwords

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSpanish(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "CERO QUETZALES CON 00/100"},
		{"0.50", "CERO QUETZALES CON 50/100"},
		{"1", "UNO QUETZAL CON 00/100"},
		{"15", "QUINCE QUETZALES CON 00/100"},
		{"21", "VEINTIUNO QUETZALES CON 00/100"},
		{"45.07", "CUARENTA Y CINCO QUETZALES CON 07/100"},
		{"100", "CIEN QUETZALES CON 00/100"},
		{"101", "CIENTO UNO QUETZALES CON 00/100"},
		{"350.00", "TRESCIENTOS CINCUENTA QUETZALES CON 00/100"},
		{"1000", "MIL QUETZALES CON 00/100"},
		{"1500.25", "MIL QUINIENTOS QUETZALES CON 25/100"},
		{"25000", "VEINTICINCO MIL QUETZALES CON 00/100"},
		{"999999.99", "NOVECIENTOS NOVENTA Y NUEVE MIL NOVECIENTOS NOVENTA Y NUEVE QUETZALES CON 99/100"},
		{"1000000", ExceedsLimit},
		{"-20", "VEINTE QUETZALES CON 00/100"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Spanish(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestSpanishInCustomCurrency(t *testing.T) {
	got := SpanishIn(decimal.RequireFromString("1"), Currency{Singular: "DÓLAR", Plural: "DÓLARES"})
	assert.Equal(t, "UNO DÓLAR CON 00/100", got)
}
