package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// Default server values.
const (
	DefaultHost           = "127.0.0.1"
	DefaultRequestTimeout = 5 * time.Minute
	DefaultMaxUploadBytes = 50 << 20
	DefaultBackendName    = "rag-pipeline"

	// readHeaderTimeout bounds slow clients independently of long generations.
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ModelInfo describes a model listed by GET /api/config.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultModels is the model list advertised to chat front ends.
var DefaultModels = []ModelInfo{{ID: "qwen", Name: "Qwen 2.5 Instruct"}}

// Config configures the HTTP server.
type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxUploadBytes int64

	// ChatRate is the sustained chat requests per second allowed per user.
	// Zero disables rate limiting.
	ChatRate  float64
	ChatBurst int

	BackendName string
	Models      []ModelInfo
}

// ConfigFrom builds a Config from server settings.
func ConfigFrom(s domain.ServerSettings) Config {
	return Config{
		Host:           s.Host,
		Port:           s.Port,
		RequestTimeout: s.RequestTimeout,
		MaxUploadBytes: s.MaxUploadBytes,
		ChatRate:       s.ChatRate,
		ChatBurst:      s.ChatBurst,
	}
}

// Server serves the chat API over HTTP.
type Server struct {
	cfg     Config
	chat    driving.ChatService
	metrics http.Handler
	limiter *userLimiter
	log     *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates an HTTP server for chat. Zero config values use defaults.
func NewServer(cfg Config, chat driving.ChatService, opts ...Option) *Server {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.BackendName == "" {
		cfg.BackendName = DefaultBackendName
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}

	s := &Server{
		cfg:     cfg,
		chat:    chat,
		limiter: newUserLimiter(cfg.ChatRate, cfg.ChatBurst),
		log:     logger.Named("http"),
		errChan: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload_pdf", s.handleUpload)
	mux.Handle("POST /api/chat", s.limiter.middleware(http.HandlerFunc(s.handleChat)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metadata", s.handleMetadata)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	return requestID(s.logRequests(s.recoverPanics(s.withTimeout(mux))))
}

// Start listens on the configured address and serves in the background.
// If the port is 0, a random available port is chosen.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.RequestTimeout,
		// Leave room to write the timeout response itself.
		WriteTimeout: s.cfg.RequestTimeout + readHeaderTimeout,
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.cfg.Port = tcpAddr.Port
	}

	s.log.Info("Listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// Errors reports a failure of the background serve loop.
func (s *Server) Errors() <-chan error {
	return s.errChan
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires. A nil ctx waits up to five seconds.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Port
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return "http://" + net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.Port()))
}
