// Package catalogtest provides an in-memory metadata server that serves the
// access service endpoints used by the catalog client. It backs the client
// tests and the catalog-stub command.
package catalogtest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/pkg/api"
)

const (
	// DefaultServerName is the metadata server name served when none is configured
	DefaultServerName = "cocoMDS1"

	// DefaultMaxPageSize bounds the results returned by one list request
	DefaultMaxPageSize = 100

	// SSEConnectorProvider is the connector provider named by the out-topic connection
	SSEConnectorProvider = "sse"
)

const (
	exceptionPackage           = "org.odpi.openmetadata.frameworks.connectors.ffdc."
	invalidParameterException  = exceptionPackage + "InvalidParameterException"
	userNotAuthorizedException = exceptionPackage + "UserNotAuthorizedException"
	propertyServerException    = exceptionPackage + "PropertyServerException"
)

// Server is a fake metadata server. It is safe for concurrent use.
type Server struct {
	serverName        string
	maxPageSize       int
	deniedUsers       map[string]struct{}
	connectorProvider string
	noConnection      bool
	logger            *slog.Logger
	tracerProvider    trace.TracerProvider
	meterProvider     metric.MeterProvider

	store    *store
	hub      *hub
	requests atomic.Int64
	router   chi.Router
}

// Option configures a Server
type Option func(*Server)

// WithServerName sets the metadata server name accepted in request paths
func WithServerName(name string) Option {
	return func(s *Server) {
		s.serverName = name
	}
}

// WithDeniedUser rejects every request made by userID as unauthorized
func WithDeniedUser(userID string) Option {
	return func(s *Server) {
		s.deniedUsers[userID] = struct{}{}
	}
}

// WithConnectorProvider sets the provider named by the out-topic connection
func WithConnectorProvider(name string) Option {
	return func(s *Server) {
		s.connectorProvider = name
	}
}

// WithoutConnection makes the out-topic connection request return no connection
func WithoutConnection() Option {
	return func(s *Server) {
		s.noConnection = true
	}
}

// WithMaxPageSize sets the largest page returned by list requests
func WithMaxPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.maxPageSize = size
		}
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerProvider enables server spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider enables request metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) {
		s.meterProvider = mp
	}
}

// New creates a fake metadata server
func New(opts ...Option) (*Server, error) {
	s := &Server{
		serverName:        DefaultServerName,
		maxPageSize:       DefaultMaxPageSize,
		deniedUsers:       make(map[string]struct{}),
		connectorProvider: SSEConnectorProvider,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore()
	s.hub = newHub(s.logger)

	router, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ServerName returns the metadata server name accepted in request paths
func (s *Server) ServerName() string {
	return s.serverName
}

// Requests returns the number of requests received so far
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Subscribers returns the number of connected event streams
func (s *Server) Subscribers() int {
	return s.hub.subscriberCount()
}

// AddElement seeds an element with a fixed GUID
func (s *Server) AddElement(guid, typeName, qualifiedName string) error {
	_, err := s.store.addElement(guid, typeName, "", map[string]any{
		"qualifiedName": qualifiedName,
		"typeName":      typeName,
	})
	return err
}

func (s *Server) routes() (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.count)
	r.Use(s.logRequests)
	if s.tracerProvider != nil {
		r.Use(telemetry.TracingMiddleware(s.tracerProvider, nil))
	}
	if s.meterProvider != nil {
		metrics, err := telemetry.NewHTTPMetrics(s.meterProvider)
		if err != nil {
			return nil, err
		}
		r.Use(metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Route("/servers/{serverName}/open-metadata/access-services/{service}", func(r chi.Router) {
		r.Use(s.knownServer)
		r.Get("/topics/out-topic", s.hub.ServeHTTP)

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Use(s.authorized)

			r.Get("/topics/out-topic-connection/{callerId}", s.outTopicConnection)

			r.Route("/related-elements/{guid}/{relationship}", func(r chi.Router) {
				r.Get("/", s.listRelated)
				r.Post("/{secondaryGUID}", s.setupRelationship(false))
				r.Post("/{secondaryGUID}/instances", s.setupRelationship(true))
				r.Post("/{secondaryGUID}/delete", s.clearBetween)
			})

			r.Route("/{collection}", func(r chi.Router) {
				r.Post("/", s.createElement)
				r.Post("/by-name", s.findByName)
				r.Post("/relationships/{relationshipGUID}/update", s.updateRelationship)
				r.Post("/relationships/{relationshipGUID}/delete", s.clearRelationship)
				r.Get("/{guid}", s.getElement)
				r.Post("/{guid}/update", s.updateElement)
				r.Post("/{guid}/delete", s.removeElement)
			})
		})
	})

	return r, nil
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) knownServer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := chi.URLParam(r, "serverName"); name != s.serverName {
			writeError(w, &storeError{
				status:    http.StatusServiceUnavailable,
				exception: propertyServerException,
				message:   "the metadata server " + name + " is not active on this platform",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if _, denied := s.deniedUsers[userID]; denied {
			writeError(w, &storeError{
				status:    http.StatusForbidden,
				exception: userNotAuthorizedException,
				message:   "user " + userID + " is not authorized to access " + chi.URLParam(r, "service"),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type referenceableBody struct {
	AnchorGUID string         `json:"anchorGUID"`
	Properties map[string]any `json:"properties"`
}

type relationshipBody struct {
	RelationshipName string         `json:"relationshipName"`
	Properties       map[string]any `json:"properties"`
}

type nameBody struct {
	Name string `json:"name"`
}

func (s *Server) createElement(w http.ResponseWriter, r *http.Request) {
	var body referenceableBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Properties == nil {
		writeError(w, invalidParameter(http.StatusBadRequest, "the properties are required"))
		return
	}

	stub, err := s.store.addElement("", chi.URLParam(r, "collection"), body.AnchorGUID, body.Properties)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.publish(api.AssetOwnerEvent{EventType: api.EventNewElement, ElementHeader: stub, Properties: body.Properties})
	writeJSON(w, http.StatusOK, api.GUIDResponse{
		FFDCResponse: success("GUIDResponse"),
		GUID:         stub.GUID,
	})
}

func (s *Server) updateElement(w http.ResponseWriter, r *http.Request) {
	merge, err := strconv.ParseBool(r.URL.Query().Get("isMergeUpdate"))
	if err != nil {
		writeError(w, invalidParameter(http.StatusBadRequest, "isMergeUpdate must be true or false"))
		return
	}
	var body referenceableBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Properties == nil {
		writeError(w, invalidParameter(http.StatusBadRequest, "the properties are required"))
		return
	}

	stub, err := s.store.updateElement(chi.URLParam(r, "guid"), merge, body.Properties)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.publish(api.AssetOwnerEvent{EventType: api.EventUpdatedElement, ElementHeader: stub, Properties: body.Properties})
	writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
}

func (s *Server) removeElement(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.removeElement(chi.URLParam(r, "guid"))
	if err != nil {
		writeError(w, err)
		return
	}
	for _, stub := range removed {
		s.hub.publish(api.AssetOwnerEvent{EventType: api.EventDeletedElement, ElementHeader: stub})
	}
	writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
}

func (s *Server) getElement(w http.ResponseWriter, r *http.Request) {
	el, err := s.store.getElement(chi.URLParam(r, "guid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ElementResponse{FFDCResponse: success("ElementResponse"), Element: el})
}

func (s *Server) findByName(w http.ResponseWriter, r *http.Request) {
	startFrom, pageSize, ok := s.paging(w, r)
	if !ok {
		return
	}
	var body nameBody
	if !decodeBody(w, r, &body) {
		return
	}

	stubs, err := s.store.findByName(chi.URLParam(r, "collection"), body.Name, startFrom, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ElementStubListResponse{
		FFDCResponse: success("ElementStubsResponse"),
		ElementList:  stubs,
	})
}

func (s *Server) setupRelationship(multi bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body relationshipBody
		if !decodeBody(w, r, &body) {
			return
		}
		collection := chi.URLParam(r, "relationship")
		name := body.RelationshipName
		if name == "" {
			name = collection
		}

		rel, err := s.store.setupRelationship(collection, name,
			chi.URLParam(r, "guid"), chi.URLParam(r, "secondaryGUID"), body.Properties, multi)
		if err != nil {
			writeError(w, err)
			return
		}
		s.hub.publish(api.AssetOwnerEvent{
			EventType:     api.EventNewRelationship,
			ElementHeader: api.ElementStub{GUID: rel.guid, TypeName: rel.name},
			Properties:    body.Properties,
		})

		if multi {
			writeJSON(w, http.StatusOK, api.GUIDResponse{FFDCResponse: success("GUIDResponse"), GUID: rel.guid})
			return
		}
		writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
	}
}

func (s *Server) updateRelationship(w http.ResponseWriter, r *http.Request) {
	merge, err := strconv.ParseBool(r.URL.Query().Get("isMergeUpdate"))
	if err != nil {
		writeError(w, invalidParameter(http.StatusBadRequest, "isMergeUpdate must be true or false"))
		return
	}
	var body relationshipBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.store.updateRelationship(chi.URLParam(r, "collection"), chi.URLParam(r, "relationshipGUID"),
		merge, body.Properties); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
}

func (s *Server) clearRelationship(w http.ResponseWriter, r *http.Request) {
	rel, err := s.store.clearRelationship(chi.URLParam(r, "collection"), chi.URLParam(r, "relationshipGUID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.relationshipDeleted(rel)
	writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
}

func (s *Server) clearBetween(w http.ResponseWriter, r *http.Request) {
	rel, err := s.store.clearBetween(chi.URLParam(r, "relationship"),
		chi.URLParam(r, "guid"), chi.URLParam(r, "secondaryGUID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.relationshipDeleted(rel)
	writeJSON(w, http.StatusOK, api.VoidResponse{FFDCResponse: success("VoidResponse")})
}

func (s *Server) relationshipDeleted(rel *relationship) {
	s.hub.publish(api.AssetOwnerEvent{
		EventType:     api.EventDeletedRelationship,
		ElementHeader: api.ElementStub{GUID: rel.guid, TypeName: rel.name},
	})
}

func (s *Server) listRelated(w http.ResponseWriter, r *http.Request) {
	startFrom, pageSize, ok := s.paging(w, r)
	if !ok {
		return
	}

	stubs, err := s.store.related(chi.URLParam(r, "relationship"), chi.URLParam(r, "guid"), startFrom, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.RelatedElementListResponse{
		FFDCResponse: success("RelatedElementListResponse"),
		ElementList:  stubs,
	})
}

func (s *Server) outTopicConnection(w http.ResponseWriter, r *http.Request) {
	resp := api.ConnectionResponse{FFDCResponse: success("ConnectionResponse")}
	if !s.noConnection {
		service := chi.URLParam(r, "service")
		resp.Connection = &api.Connection{
			Class:         "VirtualConnection",
			QualifiedName: service + " out topic for " + chi.URLParam(r, "callerId"),
			ConnectorType: &api.ConnectorType{ConnectorProviderClassName: s.connectorProvider},
			Endpoint: &api.Endpoint{
				Address: "http://" + r.Host + "/servers/" + s.serverName +
					"/open-metadata/access-services/" + service + "/topics/out-topic",
			},
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// paging reads startFrom and pageSize, clamping the page size to the server maximum
func (s *Server) paging(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	query := r.URL.Query()

	startFrom, err := strconv.Atoi(query.Get("startFrom"))
	if err != nil || startFrom < 0 {
		writeError(w, invalidParameter(http.StatusBadRequest, "startFrom must be a non-negative integer"))
		return 0, 0, false
	}
	pageSize, err := strconv.Atoi(query.Get("pageSize"))
	if err != nil || pageSize < 0 {
		writeError(w, invalidParameter(http.StatusBadRequest, "pageSize must be a non-negative integer"))
		return 0, 0, false
	}
	if pageSize == 0 || pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return startFrom, pageSize, true
}

func success(class string) api.FFDCResponse {
	return api.FFDCResponse{Class: class, RelatedHTTPCode: http.StatusOK}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, invalidParameter(http.StatusBadRequest, "the request body could not be decoded: %v", err))
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes a failed envelope whose related HTTP code matches the response status
func writeError(w http.ResponseWriter, err error) {
	var se *storeError
	if !errors.As(err, &se) {
		se = &storeError{status: http.StatusInternalServerError, exception: propertyServerException, message: err.Error()}
	}
	writeJSON(w, se.status, api.VoidResponse{FFDCResponse: api.FFDCResponse{
		Class:                   "VoidResponse",
		RelatedHTTPCode:         se.status,
		ExceptionClassName:      se.exception,
		ExceptionErrorMessage:   se.message,
		ExceptionErrorMessageID: "CATALOG-TEST-" + strconv.Itoa(se.status),
		ExceptionSystemAction:   "The request was rejected.",
		ExceptionUserAction:     "Correct the request and retry.",
	}})
}
