// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/base64"

	"github.com/ava-labs/vaultvm/codec"
)

var _ Emitter = (*Recorder)(nil)

// EventLogPrefix precedes the base64 encoding of every emitted event in the
// transaction logs.
const EventLogPrefix = "Program data: "

// Recorder is the [Emitter] used during execution.
type Recorder struct {
	Logs   []string
	Events []codec.Bytes
}

func (r *Recorder) Log(msg string) {
	r.Logs = append(r.Logs, msg)
}

// Emit records [event] and renders it into the logs.
func (r *Recorder) Emit(event []byte) {
	r.Events = append(r.Events, event)
	r.Logs = append(r.Logs, EventLogPrefix+base64.StdEncoding.EncodeToString(event))
}
