// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/api"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/event"
	"github.com/ava-labs/vaultvm/pubsub"
)

const Endpoint = "/deposits"

const (
	DepositType    = "deposit"
	SubscribedType = "subscribed"
)

var (
	_ event.Subscription[*chain.Result] = (*WebSocketServer)(nil)
	_ api.HandlerFactory[api.VM]        = (*WebSocketServerFactory)(nil)
)

// SubscribeRequest restricts the deposits streamed to a connection to those
// of User. The empty address streams every deposit.
type SubscribeRequest struct {
	User codec.Address `json:"user"`
}

type Deposit struct {
	TxID      ids.ID        `json:"txId"`
	User      codec.Address `json:"user"`
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
}

type Message struct {
	Type    string         `json:"type"`
	Deposit *Deposit       `json:"deposit,omitempty"`
	User    *codec.Address `json:"user,omitempty"`
}

type WebSocketServerFactory struct {
	handler *pubsub.Server
}

func NewWebSocketServerFactory(server *pubsub.Server) *WebSocketServerFactory {
	return &WebSocketServerFactory{handler: server}
}

func (w WebSocketServerFactory) New(api.VM) (api.Handler, error) {
	return api.Handler{
		Path:    Endpoint,
		Handler: w.handler,
	}, nil
}

// WebSocketServer streams the deposits of accepted transactions.
type WebSocketServer struct {
	log logging.Logger
	s   *pubsub.Server

	l       sync.Mutex
	filters map[*pubsub.Connection]codec.Address
}

func NewWebSocketServer(
	log logging.Logger,
	config pubsub.ServerConfig,
) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		log:     log,
		filters: map[*pubsub.Connection]codec.Address{},
	}
	w.s = pubsub.New(log, config, w.MessageCallback())
	return w, w.s
}

// MessageCallback handles subscription requests.
func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	return func(msgBytes []byte, c *pubsub.Connection) {
		var req SubscribeRequest
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			w.log.Debug("failed to parse subscription",
				zap.Error(err),
			)
			return
		}

		w.l.Lock()
		if req.User == codec.EmptyAddress {
			delete(w.filters, c)
		} else {
			w.filters[c] = req.User
		}
		w.l.Unlock()

		ack, err := json.Marshal(&Message{Type: SubscribedType, User: &req.User})
		if err != nil {
			return
		}
		if err := c.Send(ack); err != nil {
			w.log.Debug("failed to acknowledge subscription",
				zap.Error(err),
			)
		}
	}
}

// Accept publishes the deposit events of [result] to the connections
// interested in them.
func (w *WebSocketServer) Accept(_ context.Context, result *chain.Result) error {
	if !result.Success {
		return nil
	}
	for _, b := range result.Events {
		if !actions.IsDepositEvent(b) {
			continue
		}
		e, err := actions.ParseDepositEvent(b)
		if err != nil {
			return err
		}
		msg, err := json.Marshal(&Message{
			Type: DepositType,
			Deposit: &Deposit{
				TxID:      result.TxID,
				User:      e.User,
				Amount:    e.Amount,
				Timestamp: e.Timestamp,
			},
		})
		if err != nil {
			return err
		}
		w.s.Publish(msg, w.listeners(e.User))
	}
	return nil
}

func (w *WebSocketServer) listeners(user codec.Address) *pubsub.Connections {
	w.l.Lock()
	defer w.l.Unlock()

	active := w.s.Connections()
	listeners := pubsub.NewConnections()
	for c := range w.filters {
		if !active.Has(c) {
			delete(w.filters, c)
		}
	}
	for _, c := range active.Conns() {
		filter, ok := w.filters[c]
		if ok && filter != user {
			continue
		}
		listeners.Add(c)
	}
	return listeners
}

// Close disconnects every client.
func (w *WebSocketServer) Close() error {
	w.s.Close()
	return nil
}
