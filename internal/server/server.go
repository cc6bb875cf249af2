package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
)

type Server struct {
	srv *http.Server
	log logger.Interface
}

// New creates a server. The baseCtx is used as the base context for all
// incoming requests (via BaseContext).
func New(baseCtx context.Context, port string, d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: newMux(d),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: d.Log,
	}
}

func (s *Server) Start() error {
	s.log.Info("starting server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
