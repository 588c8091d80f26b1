// This file implements a builder for HTMX responses: HX-Trigger events,
// status codes and small HTML fragments.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"informe/internal/core"
)

// Events raised towards the page.
const (
	EventRecordSaved     = "record:saved"
	EventReportGenerated = "report:generated"
	EventNotification    = "show-notification"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerRecordSaved tells the dashboard to refresh.
func (b *HTMXResponseBuilder) TriggerRecordSaved(date core.Date, version int64) *HTMXResponseBuilder {
	return b.Trigger(EventRecordSaved, map[string]interface{}{"date": date.Key(), "version": version})
}

func (b *HTMXResponseBuilder) TriggerReportGenerated(date core.Date) *HTMXResponseBuilder {
	return b.Trigger(EventReportGenerated, map[string]string{"date": date.Key()})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an HTML error fragment. The message is escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// fieldLabels names the form fields in error lists.
var fieldLabels = map[string]string{
	core.FieldVendasLoja:      "Vendas Loja",
	core.FieldVendasIfood:     "Vendas iFood",
	core.FieldClientesLoja:    "Clientes Loja",
	core.FieldClientesIfood:   "Clientes iFood",
	core.FieldSaldoFinalConta: "Saldo Final em Conta",
	core.FieldSaldoFinalCofre: "Saldo Final no Cofre",
	core.FieldReceitasExtras:  "Receitas Extras",
	core.FieldDespesas:        "Despesas",
}

// ValidationErrorResponse lists each invalid field with its message (422).
func ValidationErrorResponse(verr *core.ValidationError) *HTMXResponseBuilder {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(`<div class="error"><p>Corrija os campos abaixo:</p><ul>`)
	for _, f := range fields {
		label := fieldLabels[f]
		if label == "" {
			label = f
		}
		b.WriteString(`<li data-field="` + template.HTMLEscapeString(f) + `"><strong>` +
			template.HTMLEscapeString(label) + `</strong>: ` +
			template.HTMLEscapeString(verr.Fields[f]) + `</li>`)
	}
	b.WriteString(`</ul></div>`)
	return NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		TriggerErrorNotification("Informe não gerado: há campos inválidos").
		BodyHTML(b.String())
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
