package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Controls receives interaction events reported by display clients.
type Controls interface {
	Show()
	Hide()
	MouseEntered()
	MouseExited()
	Detach()
	Attach()
	PresentSheet()
	DismissSheet()
}

// clientMessage is sent by display clients, e.g. {"action":"mouse_exited"}.
type clientMessage struct {
	Action string `json:"action"`
}

type response struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server exposes the latest sample and a live stream of samples.
type Server struct {
	http     *http.Server
	hub      *Hub
	source   Source
	controls Controls
	logger   *zap.Logger
	upgrader websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a feed server listening on addr. controls may be nil,
// in which case client actions are ignored.
func NewServer(addr string, hub *Hub, source Source, controls Controls, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:      hub,
		source:   source,
		controls: controls,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     allowOrigin,
		},
		closing: make(chan struct{}),
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the gin router serving the feed.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/health", s.health)
	api.GET("/sample", s.latestSample)
	router.GET("/ws", s.stream)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Display feed listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.closeOnce.Do(func() { close(s.closing) })
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true, Data: gin.H{"clients": s.hub.Count()}})
}

func (s *Server) latestSample(c *gin.Context) {
	sample, ok := s.source.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: sample})
}

// stream upgrades to a WebSocket and writes one JSON sample per tick.
func (s *Server) stream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	samples, unsubscribe := s.source.Subscribe()
	defer unsubscribe()

	id := s.hub.Join(c.Request.RemoteAddr)
	defer s.hub.Leave(id)

	// Reader: clients send action messages, pongs and close frames.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				var syntaxErr *json.SyntaxError
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
					continue
				}
				return
			}
			if !s.dispatch(msg.Action) {
				s.logger.Debug("Unknown client action",
					zap.String("client", id),
					zap.String("action", msg.Action))
			}
		}
	}()

	if latest, ok := s.source.Latest(); ok {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(latest); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case sample, ok := <-samples:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(sample); err != nil {
				s.logger.Debug("WebSocket write failed", zap.String("client", id), zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// allowOrigin accepts non-browser clients (no Origin header), pages served
// from the feed's own host and pages on a loopback host. Any other web page
// open in the user's browser is rejected.
func allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// dispatch forwards a client action to the controls and reports whether the
// action was recognized.
func (s *Server) dispatch(action string) bool {
	if s.controls == nil {
		return false
	}
	switch action {
	case "show":
		s.controls.Show()
	case "hide":
		s.controls.Hide()
	case "mouse_entered":
		s.controls.MouseEntered()
	case "mouse_exited":
		s.controls.MouseExited()
	case "detach":
		s.controls.Detach()
	case "attach":
		s.controls.Attach()
	case "sheet_presented":
		s.controls.PresentSheet()
	case "sheet_dismissed":
		s.controls.DismissSheet()
	default:
		return false
	}
	return true
}
