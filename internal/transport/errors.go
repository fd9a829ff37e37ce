package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// maxDetail bounds the server detail carried in an Error.
const maxDetail = 200

// Op names the operation that failed.
type Op string

const (
	OpSubmit Op = "submit"
	OpFetch  Op = "fetch"
)

// ErrResponseTooLarge reports a success body longer than the client accepts.
var ErrResponseTooLarge = errors.New("response too large")

// Error is a failed request to the processing server.
//
// StatusCode is zero when no response was received (dial failure, timeout,
// reset). Detail is a short plain-text excerpt of the server's fault body.
type Error struct {
	Op         Op
	URL        string
	StatusCode int
	Detail     string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Op, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStatusError reports whether err is a non-success response from the server.
func IsStatusError(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.StatusCode != 0 && (te.StatusCode < 200 || te.StatusCode > 299)
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

var detailPolicy = bluemonday.StrictPolicy()

// faultDetail extracts a readable message from a non-success body.
// The server answers {"error": "..."}; proxies often answer with HTML.
func faultDetail(body []byte) string {
	var fault struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &fault); err == nil && fault.Error != "" {
		return truncate(fault.Error)
	}
	text := html.UnescapeString(detailPolicy.Sanitize(string(body)))
	return truncate(strings.Join(strings.Fields(text), " "))
}

func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	cut := maxDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
