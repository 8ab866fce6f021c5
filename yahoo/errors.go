package yahoo

import (
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure
type Kind uint8

const (
	// KindSession means the cookie/session bootstrap request failed
	KindSession Kind = iota + 1
	// KindCrumb means the page loaded but carried no crumb token
	KindCrumb
	// KindHTTPStatus means the quote endpoint answered with a non-2xx status
	KindHTTPStatus
	// KindDecode means the quote payload could not be decoded or held no chain
	KindDecode
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindCrumb:
		return "crumb"
	case KindHTTPStatus:
		return "http status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is returned by every Client operation
type FetchError struct {
	Kind       Kind
	Symbol     string
	StatusCode int // Set for KindHTTPStatus and failed session pages
	Err        error
}

func (e *FetchError) Error() string {
	msg := "yahoo " + e.Kind.String() + " " + e.Symbol
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
