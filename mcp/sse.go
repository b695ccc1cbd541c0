package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/wikidata-links-mcp/render"
	"github.com/foomo/wikidata-links-mcp/service"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var errClientGone = errors.New("client disconnected")

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func newSSEEvent(event string, data interface{}) SSEEvent {
	return SSEEvent{
		ID:        event + "_" + uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time
	mu       sync.Mutex
}

// MCPSSEServer wraps the MCP server with SSE capabilities
type MCPSSEServer struct {
	logger        *zap.Logger
	mcpServer     *server.MCPServer
	service       service.Service
	httpClient    *http.Client
	renderOptions render.Options
	config        *SSEServerConfig
	clients       map[string]*SSEClient
	clientsMutex  sync.RWMutex
	broadcast     chan SSEEvent
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new MCP SSE server
func NewMCPSSEServer(logger *zap.Logger, mcpServer *server.MCPServer, serviceInstance service.Service, httpClient *http.Client, renderOptions render.Options, config *SSEServerConfig) *MCPSSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = DefaultSSEServerConfig().KeepaliveInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sseServer := &MCPSSEServer{
		logger:        logger,
		mcpServer:     mcpServer,
		service:       serviceInstance,
		httpClient:    httpClient,
		renderOptions: renderOptions,
		config:        config,
		clients:       make(map[string]*SSEClient),
		broadcast:     make(chan SSEEvent, config.BufferSize),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

// broadcastLoop handles broadcasting events to all connected clients
func (s *MCPSSEServer) broadcastLoop() {
	for event := range s.broadcast {
		s.clientsMutex.RLock()
		clients := make([]*SSEClient, 0, len(s.clients))
		for _, client := range s.clients {
			clients = append(clients, client)
		}
		s.clientsMutex.RUnlock()

		for _, client := range clients {
			err := s.sendEventToClient(client, event)
			if err != nil && !errors.Is(err, errClientGone) {
				s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
				s.removeClient(client.ID)
			}
		}
	}
}

// writeEvent writes one event in SSE framing
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	flusher.Flush()
	return nil
}

// sendEventToClient sends an SSE event to a specific client
func (s *MCPSSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	// the writer belongs to a handler that may already have returned
	select {
	case <-client.Done:
		return errClientGone
	default:
	}
	if err := writeEvent(client.Writer, client.Flusher, event); err != nil {
		return err
	}
	client.LastSeen = time.Now()
	return nil
}

// addClient adds a new SSE client
func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:       "client_" + uuid.NewString(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	connectEvent := newSSEEvent("connected", map[string]string{"clientID": client.ID, "message": "Connected to MCP SSE server"})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		return nil
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

// removeClient removes a client from the server
func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.Done)
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

// disconnectClient removes a client and waits for any write to its response to finish
func (s *MCPSSEServer) disconnectClient(client *SSEClient) {
	client.mu.Lock()
	defer client.mu.Unlock()
	s.removeClient(client.ID)
}

// broadcastEvent sends an event to all connected clients
func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// HandleSSE handles SSE client connections; connected clients receive every resolution
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := s.addClient(w)
	if client == nil {
		return
	}

	defer s.disconnectClient(client)

	ctx := r.Context()
	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done:
			return
		case <-ticker.C:
			keepaliveEvent := newSSEEvent("keepalive", map[string]interface{}{"timestamp": time.Now()})
			if err := s.sendEventToClient(client, keepaliveEvent); err != nil {
				return
			}
		}
	}
}

// HandleResolveSSE handles resolve requests via SSE
func (s *MCPSSEServer) HandleResolveSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Resolve service not available", http.StatusServiceUnavailable)
		return
	}

	var request RenderLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Format != "" && request.Format != formatHTML && request.Format != formatMarkdown {
		http.Error(w, "format must be html or markdown", http.StatusBadRequest)
		return
	}
	if request.PageURL == "" && (request.Site == "" || request.Title == "" || request.Namespace == nil) {
		http.Error(w, errMissingPage.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	ctx := r.Context()
	send := func(event SSEEvent) bool {
		if err := writeEvent(w, flusher, event); err != nil {
			s.logger.Warn("failed to write resolve event", zap.String("eventID", event.ID), zap.Error(err))
			return false
		}
		return true
	}

	if !send(newSSEEvent("resolve_start", request)) {
		return
	}

	pc, err := pageContext(ctx, s.httpClient, request.ResolveRequest)
	if err != nil {
		send(newSSEEvent("resolve_error", map[string]string{"error": err.Error()}))
		return
	}

	result := s.service.Resolve(ctx, pc)
	data := map[string]interface{}{
		"page":   pc,
		"result": vo.NewEnvelope(result),
	}
	if request.Format != "" {
		links, err := renderResult(result, request.Format, s.renderOptions)
		if err != nil {
			send(newSSEEvent("resolve_error", map[string]string{"error": err.Error()}))
			return
		}
		data["links"] = links
	}

	resultEvent := newSSEEvent("resolve_result", data)
	if !send(resultEvent) {
		return
	}
	s.broadcastEvent(newSSEEvent("page_resolved", data))

	send(newSSEEvent("resolve_complete", map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]interface{} {
	s.clientsMutex.RLock()
	snapshot := make([]*SSEClient, 0, len(s.clients))
	for _, client := range s.clients {
		snapshot = append(snapshot, client)
	}
	s.clientsMutex.RUnlock()

	clients := make([]map[string]interface{}, 0, len(snapshot))
	for _, client := range snapshot {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		clients = append(clients, map[string]interface{}{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]interface{} {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]interface{}{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
