package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// ErrBodyTooLarge is returned by Parse when the body exceeds maxBodyBytes.
// Nothing is parsed in that case, a shortened form must never be saved.
var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser reads a form-encoded or JSON body once and exposes its
// fields by name. Scripts post JSON, the HTMX forms post url-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	// one byte past the limit tells a full body from an oversized one
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.body, p.err = nil, ErrBodyTooLarge
	}
	return p
}

// Parse decodes the body, as JSON when it looks like an object.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case trimmed[0] == '{':
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal([]byte(trimmed), &p.jsonData)
	default:
		p.formData, p.err = url.ParseQuery(trimmed)
	}
	return p.err
}

// Get returns the sanitized value of key, or "".
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

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionInput collects the add-transaction fields.
func (p *RequestBodyParser) TransactionInput() core.TransactionInput {
	return core.TransactionInput{
		Amount:   p.Get("amount"),
		Kind:     p.Get("type"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Notes:    p.Get("notes"),
	}
}

func (p *RequestBodyParser) CategoryInput() core.CategoryInput {
	return core.CategoryInput{
		Name: p.Get("name"),
		Kind: p.Get("type"),
	}
}

func stringValue(v any) string {
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

// writeParseError answers a body that could not be read or decoded.
func writeParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		PayloadTooLargeError("Request is too large, shorten the notes and retry").Write(w)
		return
	}
	BadRequestError("Invalid request format").Write(w)
}

// isHTMX reports whether r was issued by htmx rather than a plain form post.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
