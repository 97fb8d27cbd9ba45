package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpi/egeria-sub150/internal/catalogtest"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
	"github.com/odpi/egeria-sub150/pkg/catalog"
)

func TestServe_ServesCatalogUntilCancelled(t *testing.T) {
	t.Parallel()

	opts := serveOptions{serverName: "devMDS", maxPageSize: 5, deniedUsers: []string{"mallory"}}
	stub, err := catalogtest.New(opts.stubOptions(nil)...)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, listener, stub) }()

	owner, err := catalog.NewAssetOwner(catalog.Config{
		PlatformURL: fmt.Sprintf("http://%s", listener.Addr()),
		ServerName:  "devMDS",
		Logger:      slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	guid, err := owner.Folders.Create(context.Background(), "erinoverview", &api.FolderProperties{
		ReferenceableProperties: api.ReferenceableProperties{QualifiedName: "folder:/dev"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, guid)

	_, err = owner.Folders.Get(context.Background(), "mallory", guid)
	assert.True(t, apierrors.IsUserNotAuthorized(err))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(fmt.Sprintf("http://%s/", listener.Addr()))
	assert.Error(t, err)
}

func TestServeOptions_TelemetryConfig(t *testing.T) {
	t.Parallel()

	assert.Nil(t, serveOptions{}.telemetryConfig())

	cfg := serveOptions{otelEndpoint: "collector:4318", otelInsecure: true}.telemetryConfig()
	require.NotNil(t, cfg)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "catalog-stub", cfg.ServiceName)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.True(t, cfg.Tracing.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestRunServe_ListenFailure(t *testing.T) {
	t.Parallel()

	err := runServe(context.Background(), serveOptions{
		address:     "256.0.0.1:bad",
		serverName:  catalogtest.DefaultServerName,
		maxPageSize: catalogtest.DefaultMaxPageSize,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
