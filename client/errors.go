package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrErrorStatus is the sentinel error wrapped by [StatusError].
	ErrErrorStatus = errors.New("error status code")
	// ErrAuthFailure is joined with [ErrErrorStatus] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrConflictingPort is returned when a port is provided both inside
	// the host string and via [WithPort].
	ErrConflictingPort = errors.New("conflicting arguments: port provided twice")
)

// StatusError is returned when a response carries a 4xx/5xx status code
// and the client's error-raising policy is active.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s for %s, body: %s", e.Err, e.Status, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// newStatusError drains and closes the response body, retaining a
// size-capped snippet for the error message.
func newStatusError(resp *http.Response, url string) *StatusError {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	sentinel := ErrErrorStatus
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		sentinel = errors.Join(ErrErrorStatus, ErrAuthFailure)
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        url,
		Body:       string(b),
		Err:        sentinel,
	}
}
