package cerr

import "net/http"

// Code classifies errors crossing the API boundary. Invalid covers rejected
// input on create/update and per-record snapshot validation, BadFormat covers
// malformed snapshot documents, NotFound covers updates targeting unknown ids.
type Code int

const (
	OK Code = iota
	Canceled
	Unknown
	Invalid
	NotFound
	BadFormat
	Internal
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Canceled:
		return "canceled"
	case Unknown:
		return "unknown"
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case BadFormat:
		return "bad_format"
	case Internal:
		return "internal"
	}
	return "unknown"
}

func (c Code) HTTPCode() int {
	switch c {
	case OK:
		return http.StatusOK
	case Canceled:
		return 499 // client closed request
	case Invalid, BadFormat:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unknown, Internal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
