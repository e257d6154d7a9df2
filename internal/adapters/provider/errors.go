package provider

import "errors"

var (
	// ErrQuotaExhausted indicates the daily request budget is spent.
	ErrQuotaExhausted = errors.New("daily request quota exhausted")

	// ErrRequestFailed indicates the upstream request failed.
	ErrRequestFailed = errors.New("provider request failed")

	// ErrBadResponse indicates the upstream responded with an unusable body.
	ErrBadResponse = errors.New("provider returned an unusable response")

	// ErrUnknownProvider indicates an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)
