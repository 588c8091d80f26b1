// This file holds the request parsing helpers shared by the handlers.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"informe/internal/core"
)

// maxBodyBytes bounds form posts; the free-text fields are the largest.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	_, ok := p.formData[key]
	return ok
}

// Get returns a sanitized value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values exposes the parsed fields as url.Values.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		return p.formData
	}
	v := url.Values{}
	for k := range p.jsonData {
		v.Set(k, p.Get(k))
	}
	return v
}

// DailyForm collects the daily form fields. Single-line fields are
// trimmed; the free-text fields keep their line breaks. sent is false when
// the request carried none of them.
func (p *RequestBodyParser) DailyForm() (form core.DailyForm, sent bool) {
	sent = p.ApplyDailyForm(&form)
	return form, sent
}

// ApplyDailyForm overwrites the fields of f that the request carried and
// leaves the others untouched.
func (p *RequestBodyParser) ApplyDailyForm(f *core.DailyForm) bool {
	sent := false
	for _, field := range core.FormFields {
		if !p.Has(field) {
			continue
		}
		sent = true
		v := p.Get(field)
		if field != core.FieldReceitasExtras && field != core.FieldDespesas {
			v = strings.TrimSpace(v)
		} else {
			v = strings.ReplaceAll(v, "\r\n", "\n")
		}
		f.Set(field, v)
	}
	return sent
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
