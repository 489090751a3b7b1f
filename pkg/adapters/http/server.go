// Package http exposes the node editor over a REST surface plus an SSE
// event stream, mounted on a chi router.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Editor defines the scene-engine surface the HTTP adapter drives.
type Editor interface {
	Models() []domain.ModelSpec
	Model(name string) (domain.ModelSpec, error)
	CreateNode(model string, at domain.Point) (domain.NodeRecord, error)
	RemoveNode(id domain.NodeID) error
	MoveNode(id domain.NodeID, to domain.Point) (domain.NodeRecord, error)
	Connect(out domain.NodeID, outPort domain.PortIndex, in domain.NodeID, inPort domain.PortIndex) (domain.ConnectionRecord, error)
	Disconnect(id domain.ConnectionID) error
	Document() *domain.SceneDocument
	Load(doc *domain.SceneDocument) error
}

// Server implements the editor API over chi.
type Server struct {
	Editor  Editor
	Store   ports.SceneStore
	Streams *StreamManager
}

// Option configures the server.
type Option func(*Server)

// WithStore enables the persistence endpoints over the given store.
func WithStore(store ports.SceneStore) Option {
	return func(s *Server) { s.Store = store }
}

// WithStreams attaches an existing stream manager, so its hooks can be wired
// into the scene before the server exists.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// NewServer creates the API server for the editor.
func NewServer(editor Editor, opts ...Option) *Server {
	server := &Server{
		Editor:  editor,
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(server)
	}
	return server
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	return NewServer(editor, opts...).Handler()
}

// Handler mounts every route and returns the CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/models", s.ListModels)
	r.Get("/models/{name}", s.GetModel)
	r.Get("/scene", s.GetScene)
	r.Post("/scene", s.ReplaceScene)
	r.Post("/nodes", s.CreateNode)
	r.Patch("/nodes/{id}", s.MoveNode)
	r.Delete("/nodes/{id}", s.DeleteNode)
	r.Post("/connections", s.CreateConnection)
	r.Delete("/connections/{id}", s.DeleteConnection)
	r.Get("/events", s.SubscribeEvents)

	if s.Store != nil {
		r.Get("/scenes", s.ListScenes)
		r.Put("/scenes/{id}", s.SaveScene)
		r.Post("/scenes/{id}/load", s.LoadScene)
		r.Delete("/scenes/{id}", s.DeleteScene)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ListModelsParams defines parameters for ListModels.
type ListModelsParams struct {
	Category *string `form:"category,omitempty" json:"category,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	Watch *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// CreateNodeRequest is the body of POST /nodes.
type CreateNodeRequest struct {
	Model    string        `json:"model"`
	Position *domain.Point `json:"position,omitempty"`
}

// MoveNodeRequest is the body of PATCH /nodes/{id}.
type MoveNodeRequest struct {
	Position domain.Point `json:"position"`
}

// CreateConnectionRequest is the body of POST /connections. Field names
// mirror the connection record encoding.
type CreateConnectionRequest struct {
	OutNode domain.NodeID    `json:"out_id"`
	OutPort domain.PortIndex `json:"out_index"`
	InNode  domain.NodeID    `json:"in_id"`
	InPort  domain.PortIndex `json:"in_index"`
}

// ErrorResponse carries a machine-readable reason next to the message.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// ListModels handles the GET /models request.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	var params ListModelsParams
	if err := runtime.BindQueryParameter("form", true, false, "category", r.URL.Query(), &params.Category); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid category parameter: %v", err), "")
		return
	}

	specs := s.Editor.Models()
	if params.Category != nil {
		filtered := make([]domain.ModelSpec, 0, len(specs))
		for _, spec := range specs {
			if spec.Category == *params.Category {
				filtered = append(filtered, spec)
			}
		}
		specs = filtered
	}

	writeJSON(w, http.StatusOK, specs)
}

// GetModel handles the GET /models/{name} request.
func (s *Server) GetModel(w http.ResponseWriter, r *http.Request) {
	name, ok := bindPathParam(w, r, "name")
	if !ok {
		return
	}

	spec, err := s.Editor.Model(name)
	if err != nil {
		s.writeDomainError(w, "GetModel", err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// GetScene handles the GET /scene request.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Document())
}

// ReplaceScene handles the POST /scene request: the posted document becomes
// the live scene.
func (s *Server) ReplaceScene(w http.ResponseWriter, r *http.Request) {
	var doc domain.SceneDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		slog.Warn("ReplaceScene: Invalid request body", "error", err)
		return
	}

	if err := s.Editor.Load(&doc); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), domain.RejectionCode(err))
		slog.Warn("ReplaceScene: Document rejected", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Document())
}

// CreateNode handles the POST /nodes request.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		slog.Warn("CreateNode: Invalid request body", "error", err)
		return
	}

	at := domain.Point{}
	if body.Position != nil {
		at = *body.Position
	}

	record, err := s.Editor.CreateNode(body.Model, at)
	if err != nil {
		s.writeDomainError(w, "CreateNode", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// MoveNode handles the PATCH /nodes/{id} request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	var body MoveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		slog.Warn("MoveNode: Invalid request body", "error", err)
		return
	}

	record, err := s.Editor.MoveNode(domain.NodeID(id), body.Position)
	if err != nil {
		s.writeDomainError(w, "MoveNode", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteNode handles the DELETE /nodes/{id} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.Editor.RemoveNode(domain.NodeID(id)); err != nil {
		s.writeDomainError(w, "DeleteNode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateConnection handles the POST /connections request. Refused
// connections come back as 422 with the refusal reason.
func (s *Server) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var body CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		slog.Warn("CreateConnection: Invalid request body", "error", err)
		return
	}

	record, err := s.Editor.Connect(body.OutNode, body.OutPort, body.InNode, body.InPort)
	if err != nil {
		s.writeDomainError(w, "CreateConnection", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// DeleteConnection handles the DELETE /connections/{id} request.
func (s *Server) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.Editor.Disconnect(domain.ConnectionID(id)); err != nil {
		s.writeDomainError(w, "DeleteConnection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListScenes handles the GET /scenes request.
func (s *Server) ListScenes(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("List error: %v", err), "")
		slog.Error("ListScenes failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// SaveScene handles the PUT /scenes/{id} request: the live scene document is
// persisted under the given id.
func (s *Server) SaveScene(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.Store.Save(r.Context(), id, s.Editor.Document()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Save error: %v", err), "")
		slog.Error("SaveScene failed", "scene_id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadScene handles the POST /scenes/{id}/load request: the stored document
// replaces the live scene.
func (s *Server) LoadScene(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	doc, err := s.Store.Load(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, "LoadScene", err)
		return
	}

	if err := s.Editor.Load(doc); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), domain.RejectionCode(err))
		slog.Warn("LoadScene: Document rejected", "scene_id", id, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Document())
}

// DeleteScene handles the DELETE /scenes/{id} request.
func (s *Server) DeleteScene(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPathParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, "DeleteScene", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "espalier-http",
		"version":     strings.TrimSpace(espalier.Version),
		"api_version": apiVersion,
	})
}

// writeDomainError maps engine errors onto status codes: refusals are 422
// with their reason code, missing resources are 404, the rest 500.
func (s *Server) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConnectable):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), domain.RejectionCode(err))
	case errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrConnectionNotFound),
		errors.Is(err, domain.ErrSceneNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		slog.Error(op+" failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Reason: reason})
}

// bindPathParam binds a chi URL parameter the same way generated handlers
// do. Reports false after writing the error response.
func bindPathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter: %v", name, err), "")
		return "", false
	}
	return value, true
}

// StreamManager handles active SSE connections and turns scene lifecycle
// events into broadcast messages.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan streamMsg]struct{}
}

type streamMsg struct {
	Event string
	Data  string
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan streamMsg]struct{}),
	}
}

// Hooks returns lifecycle hooks that broadcast every scene event to the
// subscribers. Combine them with other consumers via domain.CombineHooks.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeCreated: func(e domain.NodeEvent) {
			sm.broadcastJSON("node_created", e)
		},
		OnNodeRemoved: func(e domain.NodeEvent) {
			sm.broadcastJSON("node_removed", e)
		},
		OnConnectionCreated: func(e domain.ConnectionEvent) {
			sm.broadcastJSON("connection_created", e)
		},
		OnConnectionDeleted: func(e domain.ConnectionEvent) {
			sm.broadcastJSON("connection_deleted", e)
		},
		OnConnectionDetached: func(e domain.DetachEvent) {
			sm.broadcastJSON("connection_detached", e)
		},
		OnConnectionRejected: func(err error) {
			sm.broadcastJSON("connection_rejected", ErrorResponse{
				Error:  err.Error(),
				Reason: domain.RejectionCode(err),
			})
		},
	}
}

func (sm *StreamManager) broadcastJSON(event string, payload any) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		slog.Error("StreamManager: Payload marshal failed", "event", event, "error", err)
		return
	}
	sm.Broadcast(event, string(bytes))
}

func (sm *StreamManager) Subscribe() (chan streamMsg, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan streamMsg, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(event, data string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	slog.Debug("StreamManager: Broadcasting", "event", event, "payload_size", len(data))

	for ch := range sm.subscribers {
		select {
		case ch <- streamMsg{Event: event, Data: data}:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "event", event)
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE). The optional watch
// parameter filters by event family: "nodes", "connections", or an exact
// event name.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid watch parameter: %v", err), "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported", "")
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	// Parse 'watch' filter
	var watchList []string
	if params.Watch != nil {
		watchList = strings.Split(*params.Watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg.Event, watchList) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

func matchesWatch(event string, watchList []string) bool {
	for _, field := range watchList {
		field = strings.TrimSpace(field)
		switch field {
		case "nodes":
			if strings.HasPrefix(event, "node_") {
				return true
			}
		case "connections":
			if strings.HasPrefix(event, "connection_") {
				return true
			}
		default:
			if event == field {
				return true
			}
		}
	}
	return false
}
