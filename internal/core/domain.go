package core

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DateKeyLayout is the layout of record keys in the store (YYYY-MM-DD).
const DateKeyLayout = "2006-01-02"

const (
	WindowLast7 Window = "7dias"
	WindowMonth Window = "mes"
)

type (
	// Window selects the slice of history shown on the dashboard.
	Window string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// DailyForm holds the operator inputs for one day exactly as typed.
	// The JSON shape is the persisted value of a daily record.
	DailyForm struct {
		VendasLoja      string `json:"vendasLoja"`
		VendasIfood     string `json:"vendasIfood"`
		ClientesLoja    string `json:"clientesLoja"`
		ClientesIfood   string `json:"clientesIfood"`
		SaldoFinalConta string `json:"saldoFinalConta"`
		SaldoFinalCofre string `json:"saldoFinalCofre"`
		ReceitasExtras  string `json:"receitasExtras"`
		Despesas        string `json:"despesas"`
	}

	DailyRecord struct {
		Date Date
		Form DailyForm
	}

	// DailyMetrics are derived from a DailyForm by ComputeMetrics.
	DailyMetrics struct {
		Loja             Money
		Ifood            Money
		Total            Money
		ClientesLoja     int
		ClientesIfood    int
		TotalClientes    int
		TicketMedioLoja  Money
		TicketMedioIfood Money
		TicketMedioGeral Money
		Taxa             Money // card fee on in-store sales
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidCount  = errors.New("invalid count")
	ErrInvalidDate   = errors.New("invalid date")
	ErrFutureDate    = errors.New("date is in the future")
	ErrInvalidWindow = errors.New("invalid window")
)

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// maxTextLength bounds the free-text fields (extras and expenses).
const maxTextLength = 4000

// Field names as used in forms, JSON and validation errors.
const (
	FieldVendasLoja      = "vendasLoja"
	FieldVendasIfood     = "vendasIfood"
	FieldClientesLoja    = "clientesLoja"
	FieldClientesIfood   = "clientesIfood"
	FieldSaldoFinalConta = "saldoFinalConta"
	FieldSaldoFinalCofre = "saldoFinalCofre"
	FieldReceitasExtras  = "receitasExtras"
	FieldDespesas        = "despesas"
)

// FormFields lists every DailyForm field in display order.
var FormFields = []string{
	FieldVendasLoja, FieldVendasIfood, FieldClientesLoja, FieldClientesIfood,
	FieldReceitasExtras, FieldDespesas, FieldSaldoFinalConta, FieldSaldoFinalCofre,
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// IsDateKey reports whether a store key names a daily record.
func IsDateKey(key string) bool {
	if !dateKeyPattern.MatchString(key) {
		return false
	}
	_, err := time.Parse(DateKeyLayout, key)
	return err == nil
}

// ParseDateKey parses a YYYY-MM-DD key.
func ParseDateKey(key string) (Date, error) {
	key = strings.TrimSpace(key)
	if !dateKeyPattern.MatchString(key) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Key returns the store key for the date.
func (d Date) Key() string {
	return d.Format(DateKeyLayout)
}

// BR formats the date as DD/MM/YYYY.
func (d Date) BR() string {
	return d.Format("02/01/2006")
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// FirstOfMonth returns the first day of the date's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// ParseWindow maps the UI filter value to a Window. Empty means last 7 days.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.TrimSpace(s)) {
	case "", WindowLast7:
		return WindowLast7, nil
	case WindowMonth:
		return WindowMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
}

// Start returns the first date included by the window, given today.
func (w Window) Start(today Date) Date {
	if w == WindowMonth {
		return today.FirstOfMonth()
	}
	return today.AddDays(-6)
}

// Label is the UI label of the window.
func (w Window) Label() string {
	if w == WindowMonth {
		return "Mês atual"
	}
	return "Últimos 7 dias"
}

// Get returns a form field by its name.
func (f DailyForm) Get(field string) (string, bool) {
	switch field {
	case FieldVendasLoja:
		return f.VendasLoja, true
	case FieldVendasIfood:
		return f.VendasIfood, true
	case FieldClientesLoja:
		return f.ClientesLoja, true
	case FieldClientesIfood:
		return f.ClientesIfood, true
	case FieldSaldoFinalConta:
		return f.SaldoFinalConta, true
	case FieldSaldoFinalCofre:
		return f.SaldoFinalCofre, true
	case FieldReceitasExtras:
		return f.ReceitasExtras, true
	case FieldDespesas:
		return f.Despesas, true
	}
	return "", false
}

// Set assigns a form field by its name and reports whether the field exists.
func (f *DailyForm) Set(field, value string) bool {
	switch field {
	case FieldVendasLoja:
		f.VendasLoja = value
	case FieldVendasIfood:
		f.VendasIfood = value
	case FieldClientesLoja:
		f.ClientesLoja = value
	case FieldClientesIfood:
		f.ClientesIfood = value
	case FieldSaldoFinalConta:
		f.SaldoFinalConta = value
	case FieldSaldoFinalCofre:
		f.SaldoFinalCofre = value
	case FieldReceitasExtras:
		f.ReceitasExtras = value
	case FieldDespesas:
		f.Despesas = value
	default:
		return false
	}
	return true
}

// CarryOver returns an empty form that keeps only the closing balances,
// used to prefill a day that has no record yet.
func (f DailyForm) CarryOver() DailyForm {
	return DailyForm{
		SaldoFinalConta: f.SaldoFinalConta,
		SaldoFinalCofre: f.SaldoFinalCofre,
	}
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate checks every field strictly. ComputeMetrics stays lenient; this
// is what report generation enforces.
func (f DailyForm) Validate() error {
	fields := map[string]string{}
	for _, name := range []string{FieldVendasLoja, FieldVendasIfood} {
		v, _ := f.Get(name)
		if _, err := ParseAmount(v); err != nil {
			fields[name] = "valor inválido"
		}
	}
	for _, name := range []string{FieldSaldoFinalConta, FieldSaldoFinalCofre} {
		v, _ := f.Get(name)
		if _, err := ParseBalance(v); err != nil {
			fields[name] = "saldo inválido"
		}
	}
	for _, name := range []string{FieldClientesLoja, FieldClientesIfood} {
		v, _ := f.Get(name)
		if _, err := ParseCount(v); err != nil {
			fields[name] = "número de clientes inválido"
		}
	}
	for _, name := range []string{FieldReceitasExtras, FieldDespesas} {
		v, _ := f.Get(name)
		if len(v) > maxTextLength {
			fields[name] = fmt.Sprintf("texto muito longo (máx. %d caracteres)", maxTextLength)
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
