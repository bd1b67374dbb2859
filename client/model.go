package client

// maxErrBodySize caps the amount of response body read when
// building an error for a 4xx/5xx status code. This prevents
// unbounded memory usage when a large response arrives with an
// error status.
const maxErrBodySize = 4 << 10 // 4KB

// ErrorHook converts an error produced while executing a request into a
// caller-defined error. cause is either a *StatusError (for 4xx/5xx
// responses) or the wrapped transport error; url is the full request URL.
type ErrorHook func(cause error, url string) error
