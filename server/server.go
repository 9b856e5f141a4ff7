// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const MetricsEndpoint = "/metrics"

var ErrDuplicateRoute = errors.New("duplicate route")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server maintains the HTTP router
type Server struct {
	// log this server writes to
	log logging.Logger

	shutdownTimeout time.Duration

	// Maps endpoints to handlers
	router *mux.Router
	routes map[string]struct{}

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	log logging.Logger,
	listener net.Listener,
	httpConfig HTTPConfig,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
) *Server {
	router := mux.NewRouter()
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	log.Info("API created",
		zap.Strings("allowedOrigins", allowedOrigins),
	)

	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		router:          router,
		routes:          map[string]struct{}{},
		srv: &http.Server{
			Handler:           corsHandler,
			ReadTimeout:       httpConfig.ReadTimeout,
			ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
			WriteTimeout:      httpConfig.WriteTimeout,
			IdleTimeout:       httpConfig.IdleTimeout,
		},
		listener: listener,
	}
}

// AddRoute registers [handler] at [endpoint]. Responses are gzipped when
// the client accepts it.
func (s *Server) AddRoute(handler http.Handler, endpoint string) error {
	return s.addRoute(gziphandler.GzipHandler(handler), endpoint)
}

// AddStreamRoute registers [handler] at [endpoint] without response
// compression. Used for connections that are upgraded.
func (s *Server) AddStreamRoute(handler http.Handler, endpoint string) error {
	return s.addRoute(handler, endpoint)
}

// AddMetrics serves the metrics of [gatherer] at [MetricsEndpoint].
func (s *Server) AddMetrics(gatherer prometheus.Gatherer) error {
	return s.AddRoute(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), MetricsEndpoint)
}

func (s *Server) addRoute(handler http.Handler, endpoint string) error {
	if _, ok := s.routes[endpoint]; ok {
		return ErrDuplicateRoute
	}
	s.log.Info("adding route",
		zap.String("endpoint", endpoint),
	)
	s.routes[endpoint] = struct{}{}
	s.router.Handle(endpoint, handler)
	return nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Dispatch starts the API server. It returns [http.ErrServerClosed] after
// [Shutdown].
func (s *Server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
