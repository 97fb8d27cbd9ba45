package httpclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpi/egeria-sub150/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		statusCode      int
		body            string
		wantSuffix      string
		wantUnavailable bool
	}{
		{name: "not found", statusCode: http.StatusNotFound, body: "missing", wantSuffix: ": HTTP 404 Not Found"},
		{
			name:       "envelope body is kept",
			statusCode: http.StatusBadRequest,
			body:       `{"relatedHTTPCode":400}`,
			wantSuffix: ": HTTP 400 Bad Request",
		},
		{name: "bad gateway", statusCode: http.StatusBadGateway, wantSuffix: ": HTTP 502 Bad Gateway", wantUnavailable: true},
		{
			name:            "service unavailable",
			statusCode:      http.StatusServiceUnavailable,
			wantSuffix:      ": HTTP 503 Service Unavailable",
			wantUnavailable: true,
		},
		{name: "gateway timeout", statusCode: http.StatusGatewayTimeout, wantSuffix: ": HTTP 504 Gateway Timeout", wantUnavailable: true},
		{name: "server error", statusCode: http.StatusInternalServerError, wantSuffix: ": HTTP 500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer mockServer.Close()

			url := mockServer.URL + "/servers/cocoMDS1/open-metadata"
			_, err := httpclient.NewClient().Post(context.Background(), url, []byte(`{}`))

			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, "POST "+url+tt.wantSuffix, err.Error())
			assert.Equal(t, http.MethodPost, httpErr.Method)
			assert.Equal(t, url, httpErr.URL)
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, http.StatusText(tt.statusCode), httpErr.Status[4:])
			assert.Equal(t, tt.body, string(httpErr.Body))
			assert.Equal(t, tt.wantUnavailable, httpErr.Unavailable())
		})
	}
}
