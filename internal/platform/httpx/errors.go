package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the transport layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
	ErrBadRequest = errors.New("malformed request")
)

// Rule maps every error matching Err (via errors.Is) to an HTTP status.
type Rule struct {
	Err    error
	Status int
	Title  string
}

// ErrorMapper turns domain errors into RFC7807 responses. Rules are checked
// in order; the first match wins.
type ErrorMapper struct {
	rules []Rule
}

// NewErrorMapper builds a mapper. The transport sentinels are appended after rules.
func NewErrorMapper(rules ...Rule) *ErrorMapper {
	all := make([]Rule, 0, len(rules)+4)
	all = append(all, rules...)
	all = append(all,
		Rule{Err: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
		Rule{Err: ErrDuplicate, Status: http.StatusConflict, Title: "Duplicate"},
		Rule{Err: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
		Rule{Err: ErrBadRequest, Status: http.StatusBadRequest, Title: "Bad Request"},
	)
	return &ErrorMapper{rules: all}
}

// Status returns the HTTP status and title for err.
func (m *ErrorMapper) Status(err error) (int, string) {
	if m != nil {
		for _, rule := range m.rules {
			if errors.Is(err, rule.Err) {
				return rule.Status, rule.Title
			}
		}
	}
	return http.StatusInternalServerError, "Internal Error"
}

// Respond writes err as a problem response. Internal errors carry no detail.
func (m *ErrorMapper) Respond(w http.ResponseWriter, err error) {
	status, title := m.Status(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ""
	}
	Problem(w, status, title, detail)
}

// RespondError maps the transport sentinels only.
func RespondError(w http.ResponseWriter, err error) {
	NewErrorMapper().Respond(w, err)
}
