package binance

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a series could not be fetched.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1 // transport failure or non-200 status
	KindDecode                       // body is not UTF-8 or not well-formed JSON
	KindParse                        // well-formed JSON that does not match the record shape
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

var (
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("decode error")
	ErrParse   = errors.New("parse error")
)

// FetchError is returned by FetchSeries. It matches ErrNetwork, ErrDecode or
// ErrParse with errors.Is according to Kind.
type FetchError struct {
	Kind     ErrorKind
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrParse:
		return e.Kind == KindParse
	}
	return false
}

// KindOf extracts the ErrorKind from err, or 0 if err is not a *FetchError.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
