// Package amountwords spells out currency amounts in Spanish, the way they are
// written on hand-filled receipts: "CIEN QUETZALES CON 00/100".
package amountwords

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Limit is the largest integer part that can be spelled out
const Limit = 999999

// ExceedsLimit is returned for amounts above Limit
const ExceedsLimit = "CANTIDAD EXCEDE LÍMITE"

var (
	units    = []string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}
	tens     = []string{"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}
	teens    = []string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}
	hundreds = []string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// Currency names the unit in singular and plural form
type Currency struct {
	Singular string
	Plural   string
}

// Quetzal is the default currency
var Quetzal = Currency{Singular: "QUETZAL", Plural: "QUETZALES"}

// Spanish spells out amount in quetzales
func Spanish(amount decimal.Decimal) string {
	return SpanishIn(amount, Quetzal)
}

// SpanishIn spells out amount using the given currency names.
// Cents are rendered as a fraction of 100.
func SpanishIn(amount decimal.Decimal, cur Currency) string {
	amount = amount.Abs().Round(2)

	integer := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(integer)).Mul(decimal.NewFromInt(100)).IntPart()

	if integer > Limit {
		return ExceedsLimit
	}

	words := "CERO"
	if integer > 0 {
		words = thousandsToWords(int(integer))
	}

	name := cur.Plural
	if integer == 1 {
		name = cur.Singular
	}

	return fmt.Sprintf("%s %s CON %02d/100", words, name, cents)
}

func thousandsToWords(n int) string {
	if n < 1000 {
		return hundredsToWords(n)
	}

	thousand, rest := n/1000, n%1000
	parts := make([]string, 0, 2)
	if thousand == 1 {
		parts = append(parts, "MIL")
	} else {
		parts = append(parts, hundredsToWords(thousand)+" MIL")
	}
	if rest > 0 {
		parts = append(parts, hundredsToWords(rest))
	}
	return strings.Join(parts, " ")
}

func hundredsToWords(n int) string {
	if n == 0 {
		return ""
	}
	if n == 100 {
		return "CIEN"
	}

	h, rest := n/100, n%100
	result := hundreds[h]
	if rest > 0 {
		if result != "" {
			result += " "
		}
		result += tensToWords(rest)
	}
	return result
}

func tensToWords(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return units[n]
	case n < 20:
		return teens[n-10]
	}

	t, u := n/10, n%10
	if u == 0 {
		return tens[t]
	}
	// 21-29 are written as a single word
	if t == 2 {
		return "VEINTI" + units[u]
	}
	return tens[t] + " Y " + units[u]
}
