package httpclient

import (
	"fmt"
	"net/http"
)

// HTTPError is returned for a response outside the 2xx range. The body is
// kept because metadata servers describe failures in a JSON status block.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	// Status is the status line text, e.g. "404 Not Found"
	Status string
	Body   []byte
}

// Error returns the request and its status; the body is left out
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unavailable reports whether the server or a gateway in front of it could
// not handle the request at the time. Such GET requests may be retried.
func (e *HTTPError) Unavailable() bool {
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func newHTTPError(req *http.Request, resp *http.Response, body []byte) *HTTPError {
	return &HTTPError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}
}
