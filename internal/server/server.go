package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/tngrm/tngrm/internal/config"
	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/solver"
	"github.com/tngrm/tngrm/internal/levels"
)

// EventLevelSaved is published on the bus after a level is persisted. Its
// data is a LevelSaved.
const EventLevelSaved = "level.saved"

// LevelSaved is the payload of EventLevelSaved.
type LevelSaved struct {
	Name string `json:"name"`
}

// Server serves the puzzle pages, the level API and the level feed.
type Server struct {
	config  config.ServerConfig
	store   levels.Store
	checker  *solver.Checker
	detector magnet.Detector
	bus      bus.EventBus
	logger   log.Log

	feed    *Feed
	feedSub bus.Subscription
	static  *staticFiles
	handler http.Handler

	// Server state
	running atomic.Bool
	closed  atomic.Bool

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	group      *errgroup.Group
}

// New creates a server. It subscribes the level feed to eventBus right away,
// so saves are broadcast even when the handler is mounted elsewhere.
// detector serves POST /api/snap.
func New(cfg config.ServerConfig, store levels.Store, checker *solver.Checker, detector magnet.Detector, eventBus bus.EventBus, logger log.Log) (*Server, error) {
	s := &Server{
		config:   cfg,
		store:    store,
		checker:  checker,
		detector: detector,
		bus:      eventBus,
		logger:   logger.With(log.String("component", "server")),
	}

	static, err := newStaticFiles(cfg.StaticDir, cfg.IndexFile)
	if err != nil {
		return nil, err
	}
	s.static = static

	s.feed = NewFeed(s.logger, s.levelNames)
	s.feedSub, err = eventBus.Subscribe(EventLevelSaved, s.feed.HandleEvent)
	if err != nil {
		return nil, fmt.Errorf("subscribe level feed: %w", err)
	}

	s.handler = s.routes()

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.Addr()),
		log.Float64("magnet_threshold", detector.Threshold()),
		log.String("static_dir", static.root))
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/save-level", s.handleSaveLevel)
		r.Get("/levels", s.handleListLevels)
		r.Get("/levels/{name}", s.handleGetLevel)
		r.Post("/check", s.handleCheck)
		r.Post("/snap", s.handleSnap)
	})
	r.Get("/ws/levels", s.feed.ServeHTTP)
	r.Handle("/*", s.static)
	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.handler }

// Feed returns the websocket level feed
func (s *Server) Feed() *Feed { return s.feed }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request handled",
			log.String("request_id", middleware.GetReqID(r.Context())),
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Int("status", ww.Status()),
			log.Int("bytes", ww.BytesWritten()),
			log.Duration("elapsed", time.Since(start)))
	})
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.Addr())
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %v", ErrListenerFailed, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", log.Error(err))
			return err
		}
		return nil
	})

	s.mu.Lock()
	s.httpServer, s.listener, s.group = srv, ln, g
	s.mu.Unlock()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Wait blocks until the background serve loop exits and returns its error.
func (s *Server) Wait() error {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g == nil {
		return ErrServerNotRunning
	}
	return g.Wait()
}

// Stop disconnects feed clients and shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	s.mu.Lock()
	srv, g := s.httpServer, s.group
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotRunning
	}

	s.feed.CloseClients()
	err := srv.Shutdown(ctx)
	if werr := g.Wait(); err == nil {
		err = werr
	}

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if running and detaches the feed from the bus.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("Closing server")

	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.Stop(ctx)
		cancel()
	}
	s.feed.Close()
	return s.bus.Unsubscribe(s.feedSub)
}

func (s *Server) levelNames(ctx context.Context) ([]string, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, l := range all {
		names = append(names, l.Name)
	}
	return names, nil
}
