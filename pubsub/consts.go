// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize     = units.KiB
	writeBufferSize    = units.KiB
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 10 * units.KiB // bytes
	maxPendingMessages = 1024
)

type ServerConfig struct {
	// Size of the ws read buffer
	ReadBufferSize int `json:"readBufferSize" yaml:"readBufferSize"`
	// Size of the ws write buffer
	WriteBufferSize int `json:"writeBufferSize" yaml:"writeBufferSize"`
	// Maximum number of pending messages to send to a peer.
	MaxPendingMessages int `json:"maxPendingMessages" yaml:"maxPendingMessages"`
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int64 `json:"maxReadMessageSize" yaml:"maxReadMessageSize"`
	// Time allowed to write a message to the peer.
	WriteWait time.Duration `json:"writeWait" yaml:"writeWait"`
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration `json:"pongWait" yaml:"pongWait"`
	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration `json:"pingPeriod" yaml:"pingPeriod"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     readBufferSize,
		WriteBufferSize:    writeBufferSize,
		MaxPendingMessages: maxPendingMessages,
		MaxReadMessageSize: maxMessageSize,
		WriteWait:          writeWait,
		PongWait:           pongWait,
		PingPeriod:         pingPeriod,
	}
}
