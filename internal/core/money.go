// Package core provides money parsing and handling utilities.
//
// Amounts are typed by hand in Brazilian Portuguese forms, so both decimal
// separators are accepted and thousands separators are tolerated. Values are
// kept as integer cents; divisions and percentages go through decimal and
// round half-up to the cent.
//
// A lone dot followed by exactly three digits, as in "1.500", is a thousands
// separator; any other lone separator is the decimal point.
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxIntegerDigits keeps cents well inside int64.
const maxIntegerDigits = 15

var hundred = decimal.NewFromInt(100)

var dotGrouping = regexp.MustCompile(`^[1-9]\d{0,2}\.\d{3}$`)

// ParseAmount converts a non-negative amount to Money. Empty input is zero.
//
// Examples:
//
//	ParseAmount("12.50")     -> 1250
//	ParseAmount("12,50")     -> 1250
//	ParseAmount("R$ 1.234,56") -> 123456
//	ParseAmount("1,234.56")  -> 123456
//	ParseAmount("1.500")     -> 150000
//	ParseAmount("0,005")     -> 1 (half-up)
func ParseAmount(s string) (Money, error) {
	return parseAmount(s, false)
}

// ParseBalance is ParseAmount allowing a leading minus sign.
func ParseBalance(s string) (Money, error) {
	return parseAmount(s, true)
}

func parseAmount(s string, allowNegative bool) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return Money{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		if !allowNegative {
			return Money{}, ErrInvalidAmount
		}
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	norm, ok := normalizeDecimal(s)
	if !ok {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0).IntPart()
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// normalizeDecimal rewrites a human-typed number into "1234.56" form.
// When both separators appear, the last one is the decimal separator. A
// single kind of separator repeated more than once is a thousands separator,
// and so is a lone dot in grouping position.
func normalizeDecimal(s string) (string, bool) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || dotGrouping.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	if strings.Count(s, ".") > 1 {
		return "", false
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return "", false
	}
	if len(intPart) > maxIntegerDigits {
		return "", false
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return intPart, true
	}
	return intPart + "." + fracPart, true
}

// ParseCount parses a non-negative customer count written as plain digits.
// Empty input is zero.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidCount
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidCount
	}
	return n, nil
}

// ParseExpenseLines sums the amounts written after "R$" on each line of the
// free-text expenses field. Lines without "R$" or without a readable amount
// count as zero, e.g. "Gás R$ 120,00" contributes 12000 cents.
func ParseExpenseLines(text string) Money {
	var total int64
	for _, line := range strings.Split(text, "\n") {
		_, rest, found := strings.Cut(line, "R$")
		if !found {
			continue
		}
		token := leadingNumber(rest)
		m, err := ParseAmount(token)
		if err != nil {
			continue
		}
		total += m.Cents
	}
	return Money{Cents: total}
}

// leadingNumber returns the run of digits and separators that starts the
// string after optional spaces, so "  45,90 padaria" yields "45,90".
func leadingNumber(s string) string {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == ',' {
			end++
			continue
		}
		break
	}
	return strings.TrimRight(s[:end], ".,")
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Fixed formats the amount with two decimals and a dot separator ("12.50").
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the amount in reais for charting.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// PerUnit divides the amount by n, treating zero units as one, and rounds
// half-up to the cent. This is the average-ticket rule.
func (m Money) PerUnit(n int) Money {
	if n <= 0 {
		n = 1
	}
	q := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(int64(n))).Round(0)
	return Money{Cents: q.IntPart()}
}

// Percent returns p percent of the amount, rounded half-up to the cent.
func (m Money) Percent(p decimal.Decimal) Money {
	q := decimal.NewFromInt(m.Cents).Mul(p).Div(hundred).Round(0)
	return Money{Cents: q.IntPart()}
}
