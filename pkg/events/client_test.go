package events_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odpi/egeria-sub150/internal/catalogtest"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
	"github.com/odpi/egeria-sub150/pkg/catalog"
	"github.com/odpi/egeria-sub150/pkg/events"
	"github.com/odpi/egeria-sub150/pkg/events/mocks"
)

const user = "erinoverview"

// fakeConnector records registrations without any transport
type fakeConnector struct {
	mu        sync.Mutex
	listeners []events.Listener
	started   atomic.Int32
	closed    atomic.Bool
	startFn   func(ctx context.Context) error
}

func (f *fakeConnector) Start(ctx context.Context) error {
	f.started.Add(1)
	if f.startFn != nil {
		return f.startFn(ctx)
	}
	return nil
}

func (f *fakeConnector) RegisterListener(l events.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *fakeConnector) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// plainConnector is a connector that cannot deliver events
type plainConnector struct {
	closed atomic.Bool
}

func (p *plainConnector) Close() error {
	p.closed.Store(true)
	return nil
}

func connection(provider string) *api.Connection {
	return &api.Connection{
		ConnectorType: &api.ConnectorType{ConnectorProviderClassName: provider},
		Endpoint:      &api.Endpoint{Address: "http://localhost/topic"},
	}
}

func newClient(t *testing.T, source events.ConnectionSource, registry *events.Registry) *events.Client {
	t.Helper()

	client, err := events.NewClient(source, events.Options{
		CallerID: "test-caller",
		Registry: registry,
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func noop(context.Context, api.AssetOwnerEvent) {}

func TestRegisterListener_ConcurrentFirstUseCreatesOneConnector(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockConnectionSource(ctrl)
	source.EXPECT().
		GetOutTopicConnection(gomock.Any(), user, "test-caller").
		Return(connection("fake"), nil).
		Times(1)

	var builds atomic.Int32
	connector := &fakeConnector{}
	registry := events.NewRegistry()
	registry.Register("fake", func(*api.Connection, events.Dependencies) (events.Connector, error) {
		builds.Add(1)
		return connector, nil
	})
	client := newClient(t, source, registry)

	const callers = 20
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, callers)
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- client.RegisterListener(context.Background(), user, events.ListenerFunc(noop))
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, builds.Load())
	assert.EqualValues(t, 1, connector.started.Load())
	assert.Equal(t, callers, connector.count())

	require.NoError(t, client.Close())
	assert.True(t, connector.closed.Load())
	assert.ErrorIs(t, client.RegisterListener(context.Background(), user, events.ListenerFunc(noop)), events.ErrClosed)
}

func TestRegisterListener_PermanentFailures(t *testing.T) {
	t.Parallel()

	plain := &plainConnector{}

	tests := []struct {
		name       string
		connection *api.Connection
		provider   events.ConnectorProvider
		check      func(t *testing.T)
	}{
		{
			name:       "no connection",
			connection: nil,
		},
		{
			name:       "unknown provider",
			connection: connection("kafka"),
		},
		{
			name:       "provider fails",
			connection: connection("fake"),
			provider: func(*api.Connection, events.Dependencies) (events.Connector, error) {
				return nil, errors.New("bad configuration")
			},
		},
		{
			name:       "connector of the wrong type",
			connection: connection("fake"),
			provider: func(*api.Connection, events.Dependencies) (events.Connector, error) {
				return plain, nil
			},
			check: func(t *testing.T) {
				assert.True(t, plain.closed.Load())
			},
		},
		{
			name:       "provider returns no connector",
			connection: connection("fake"),
			provider: func(*api.Connection, events.Dependencies) (events.Connector, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			source := mocks.NewMockConnectionSource(ctrl)
			source.EXPECT().
				GetOutTopicConnection(gomock.Any(), user, "test-caller").
				Return(tt.connection, nil).
				Times(1)

			registry := events.NewRegistry()
			if tt.provider != nil {
				registry.Register("fake", tt.provider)
			}
			client := newClient(t, source, registry)

			first := client.RegisterListener(context.Background(), user, events.ListenerFunc(noop))
			require.Error(t, first)
			assert.Equal(t, apierrors.KindConnectorChecked, apierrors.KindOf(first))

			second := client.RegisterListener(context.Background(), user, events.ListenerFunc(noop))
			assert.Same(t, first, second)

			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestRegisterListener_TransportFailureIsNotCached(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockConnectionSource(ctrl)
	gomock.InOrder(
		source.EXPECT().
			GetOutTopicConnection(gomock.Any(), user, "test-caller").
			Return(nil, apierrors.NewPropertyServer("getOutTopicConnection", 0, nil, "unreachable")),
		source.EXPECT().
			GetOutTopicConnection(gomock.Any(), user, "test-caller").
			Return(connection("fake"), nil),
	)

	registry := events.NewRegistry()
	registry.Register("fake", func(*api.Connection, events.Dependencies) (events.Connector, error) {
		return &fakeConnector{}, nil
	})
	client := newClient(t, source, registry)

	err := client.RegisterListener(context.Background(), user, events.ListenerFunc(noop))
	assert.True(t, apierrors.IsPropertyServer(err))

	require.NoError(t, client.RegisterListener(context.Background(), user, events.ListenerFunc(noop)))
}

func TestRegisterListener_StartFailureIsNotCached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		startErr func(ctx context.Context) error
		ctx      func() context.Context
	}{
		{
			name:     "caller context cancelled",
			startErr: func(ctx context.Context) error { return ctx.Err() },
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
		},
		{
			name:     "stream unreachable",
			startErr: func(context.Context) error { return errors.New("connection refused") },
			ctx:      context.Background,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			source := mocks.NewMockConnectionSource(ctrl)
			source.EXPECT().
				GetOutTopicConnection(gomock.Any(), user, "test-caller").
				Return(connection("fake"), nil).
				Times(2)

			var built []*fakeConnector
			registry := events.NewRegistry()
			registry.Register("fake", func(*api.Connection, events.Dependencies) (events.Connector, error) {
				connector := &fakeConnector{}
				if len(built) == 0 {
					connector.startFn = tt.startErr
				}
				built = append(built, connector)
				return connector, nil
			})
			client := newClient(t, source, registry)

			err := client.RegisterListener(tt.ctx(), user, events.ListenerFunc(noop))
			require.Error(t, err)
			assert.True(t, apierrors.IsPropertyServer(err))

			require.NoError(t, client.RegisterListener(context.Background(), user, events.ListenerFunc(noop)))
			require.Len(t, built, 2)
			assert.True(t, built[0].closed.Load(), "failed connector should be closed")
			assert.Equal(t, 1, built[1].count())
		})
	}
}

func TestRegisterListener_Validation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockConnectionSource(ctrl)
	client := newClient(t, source, events.NewRegistry())

	err := client.RegisterListener(context.Background(), " ", events.ListenerFunc(noop))
	assert.True(t, apierrors.IsInvalidParameter(err))

	err = client.RegisterListener(context.Background(), user, nil)
	assert.True(t, apierrors.IsInvalidParameter(err))
}

func TestRegisterListener_ReceivesCatalogEvents(t *testing.T) {
	t.Parallel()

	srv, url := catalogtest.Start(t)
	owner, err := catalog.NewAssetOwner(catalog.Config{
		PlatformURL: url,
		ServerName:  srv.ServerName(),
		Logger:      slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	listener := mocks.NewMockListener(ctrl)
	received := make(chan api.AssetOwnerEvent, 1)
	listener.EXPECT().
		ProcessEvent(gomock.Any(), gomock.Cond(func(e api.AssetOwnerEvent) bool {
			return e.EventType == api.EventNewElement
		})).
		Do(func(_ context.Context, e api.AssetOwnerEvent) { received <- e }).
		Times(1)

	client := newClient(t, owner, nil)
	require.NoError(t, client.RegisterListener(context.Background(), user, listener))
	assert.Equal(t, 1, srv.Subscribers())

	guid, err := owner.Files.Create(context.Background(), user, &api.FileProperties{
		ReferenceableProperties: api.ReferenceableProperties{QualifiedName: "file:/landing/new.csv"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, guid, event.ElementHeader.GUID)
		assert.Equal(t, catalog.FileKind.TypeName, event.ElementHeader.TypeName)
		assert.Equal(t, "file:/landing/new.csv", event.ElementHeader.UniqueName)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the event")
	}
}
