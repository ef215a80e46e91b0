package xapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/go-twitter/twitter"
)

const (
	opUpdateProfileBanner = "update_profile_banner"
	opVerifyCredentials   = "verify_credentials"
)

// ErrRemoteRequest matches every *RemoteError with errors.Is.
var ErrRemoteRequest = errors.New("remote request failed")

// RemoteError is a failed API call: rejected credentials or payload,
// rate limiting, or a transport failure (StatusCode 0).
type RemoteError struct {
	Op         string
	StatusCode int
	API        twitter.APIError
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	switch {
	case len(e.API.Errors) > 0:
		for _, d := range e.API.Errors {
			fmt.Fprintf(&b, ": code %d: %s", d.Code, d.Message)
		}
	case e.Body != "":
		b.WriteString(": ")
		b.WriteString(truncate(e.Body, 200))
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteRequest }

// Unauthorized reports whether the credentials were rejected.
func (e *RemoteError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func newRemoteError(op string, resp *http.Response, err error) *RemoteError {
	re := &RemoteError{Op: op, Err: err}
	if resp != nil {
		re.StatusCode = resp.StatusCode
	}
	var apiErr twitter.APIError
	if errors.As(err, &apiErr) {
		re.API = apiErr
	}
	return re
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
