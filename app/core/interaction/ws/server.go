package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"taskmate/app/pkg/logger"
)

// Conn is a connected peer the coordinator can also read from. Reads
// stay single-threaded inside the per-connection loop.
type Conn interface {
	Client
	ReadJSON(v interface{}) error
}

func (c *wsClient) ReadJSON(v interface{}) error {
	return c.conn.ReadJSON(v)
}

// ConnectionHandler runs the per-connection session loop. It returns
// when the peer goes away or the server shuts down.
type ConnectionHandler func(ctx context.Context, conn Conn)

type Server struct {
	port            int
	allowedOrigins  []string
	handler         ConnectionHandler
	statusProvider  func(context.Context) map[string]interface{}
	server          *http.Server
	shutdownTimeout time.Duration
}

func NewServer(port int, allowedOrigins []string, handler ConnectionHandler) *Server {
	return &Server{
		port:            port,
		allowedOrigins:  allowedOrigins,
		handler:         handler,
		shutdownTimeout: 5 * time.Second,
	}
}

func (s *Server) SetStatusProvider(provider func(context.Context) map[string]interface{}) {
	s.statusProvider = provider
}

func (s *Server) Start(ctx context.Context) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originAllowed,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/chat", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("[WS] Upgrade failed: %v", err)
			return
		}
		go s.handler(ctx, NewClient(conn))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{"status": "ok"}
		if s.statusProvider != nil {
			status = s.statusProvider(r.Context())
		}
		writeJSON(w, status)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("[WS] Shutdown error: %v", err)
		}
	}()

	logger.Info("[WS] Listening on port %d...", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// originAllowed admits listed browser origins plus non-browser clients
// that send no Origin header.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
