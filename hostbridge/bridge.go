package hostbridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Server is the host-facing websocket endpoint: one Core drives
// however many connected editor clients, each receiving the same
// node.changed/node.autobox/box.tbd broadcast stream.
type Server struct {
	core     Core
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients []*wsClient
}

// NewServer builds a Server backed by core.
func NewServer(core Core) *Server {
	return &Server{
		core: core,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades every request to a websocket connection; unlike
// web.Server it serves no static files, since hostbridge has no GUI
// of its own to host.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hostbridge: websocket upgrade: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		resp := s.handleRPC(req)
		data, _ := json.Marshal(resp)
		client.mu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		client.mu.Unlock()
	}
}

func (s *Server) handleRPC(req rpcRequest) rpcResponse {
	switch req.Method {
	case "edit":
		return s.rpcEdit(req)
	case "reportError":
		return s.rpcReportError(req)
	case "setPreviousVersion":
		return s.rpcSetPreviousVersion(req)
	default:
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -32601, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) rpcEdit(req rpcRequest) rpcResponse {
	var p struct {
		Offset   int    `json:"offset"`
		Removed  int    `json:"removed"`
		Inserted string `json:"inserted"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	result := s.core.Edit(p.Offset, p.Removed, p.Inserted)
	for _, c := range result.Changed {
		s.Broadcast("node.changed", c)
	}
	for _, b := range result.Removable {
		s.Broadcast("box.tbd", b)
	}
	if result.Autobox != nil {
		s.Broadcast("node.autobox", *result.Autobox)
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

func (s *Server) rpcReportError(req rpcRequest) rpcResponse {
	var p struct {
		Offset int `json:"offset"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	autobox, ok := s.core.ReportError(p.Offset)
	if !ok {
		return rpcResponse{ID: req.ID, Result: map[string]any{"found": false}}
	}
	s.Broadcast("node.autobox", autobox)
	return rpcResponse{ID: req.ID, Result: map[string]any{"found": true, "autobox": autobox}}
}

func (s *Server) rpcSetPreviousVersion(req rpcRequest) rpcResponse {
	var p struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	version, err := uuid.Parse(p.Version)
	if err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	s.core.SetPreviousVersion(version)
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

// Broadcast sends a notification to every connected client, the way
// web.Server.Broadcast pushes file-change events; here the method
// names are node.changed/node.autobox/box.tbd instead.
func (s *Server) Broadcast(method string, params any) {
	msg, err := json.Marshal(map[string]any{
		"method": method,
		"params": params,
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
		c.mu.Unlock()
	}
}
