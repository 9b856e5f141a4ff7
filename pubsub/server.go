// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server maintains the set of active clients and sends messages to the
// clients. It is mounted on an existing HTTP server as a handler.
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader

	// conns a set of all our connections
	conns *Connections
	// Callback function when server receives a message
	callback Callback
}

// New returns a new Server instance. The callback function [r] is called
// by the server in response to messages if not nil.
func New(log logging.Logger, config ServerConfig, r Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns:    NewConnections(),
		callback: r,
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		send: make(chan []byte, s.config.MaxPendingMessages),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends msg from [s] to [toConns].
func (s *Server) Publish(msg []byte, toConns *Connections) {
	for _, conn := range toConns.Conns() {
		// check server has connection O(1)
		if !s.conns.Has(conn) {
			continue
		}
		if err := conn.Send(msg); err != nil {
			s.log.Verbo(
				"dropping message to subscribed connection",
				zap.Error(err),
			)
		}
	}
}

// Broadcast sends [msg] to every connection.
func (s *Server) Broadcast(msg []byte) {
	s.Publish(msg, s.conns)
}

// Connections returns the set of active connections.
func (s *Server) Connections() *Connections {
	return s.conns
}

// removeConnection removes [conn] from the servers connection set.
func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

// Close disconnects every client.
func (s *Server) Close() {
	for _, conn := range s.conns.Drain() {
		conn.deactivate()
	}
}
