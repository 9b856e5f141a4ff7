// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/vaultvm/codec"
)

type WebSocketClient struct {
	conn *websocket.Conn

	wl sync.Mutex
	rl sync.Mutex
	cl sync.Once

	pending []*Deposit
}

// NewWebSocketClient dials the deposit stream of the node at [uri].
func NewWebSocketClient(uri string) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http", "ws", 1)
	uri += Endpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	// not using resp for now
	resp.Body.Close()
	return &WebSocketClient{conn: conn}, nil
}

// Subscribe restricts the stream to the deposits of [user] and waits for
// the server to acknowledge it. Deposits received in the meantime are
// returned by the next calls to [ListenDeposit].
func (c *WebSocketClient) Subscribe(user codec.Address) error {
	msg, err := json.Marshal(&SubscribeRequest{User: user})
	if err != nil {
		return err
	}
	c.wl.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, msg)
	c.wl.Unlock()
	if err != nil {
		return err
	}

	c.rl.Lock()
	defer c.rl.Unlock()
	for {
		m, err := c.read()
		if err != nil {
			return err
		}
		switch m.Type {
		case SubscribedType:
			if m.User != nil && *m.User == user {
				return nil
			}
		case DepositType:
			c.pending = append(c.pending, m.Deposit)
		}
	}
}

// ListenDeposit blocks until the next deposit is received.
func (c *WebSocketClient) ListenDeposit() (*Deposit, error) {
	c.rl.Lock()
	defer c.rl.Unlock()

	if len(c.pending) > 0 {
		d := c.pending[0]
		c.pending = c.pending[1:]
		return d, nil
	}
	for {
		m, err := c.read()
		if err != nil {
			return nil, err
		}
		if m.Type == DepositType && m.Deposit != nil {
			return m.Deposit, nil
		}
	}
}

func (c *WebSocketClient) read() (*Message, error) {
	_, b, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Close closes the connection to the server.
func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}
