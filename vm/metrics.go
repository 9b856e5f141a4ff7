// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"strconv"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted prometheus.Counter
	txsRejected  prometheus.Counter
	txsSucceeded prometheus.Counter
	txsFailed    *prometheus.CounterVec

	initializations prometheus.Counter
	deposits        prometheus.Counter
	withdrawals     prometheus.Counter
	deposited       prometheus.Counter
	withdrawn       prometheus.Counter
	vaultBalance    prometheus.Gauge

	stateChanges prometheus.Counter
	locksHeld    prometheus.Gauge

	waitSignatures metric.Averager
	waitLocks      metric.Averager
	execute        metric.Averager
	commit         metric.Averager
}

func newMetrics() (*prometheus.Registry, *Metrics, error) {
	r := prometheus.NewRegistry()

	waitSignatures, err := metric.NewAverager(
		"vm_wait_signatures",
		"time spent verifying signatures of submitted txs",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	waitLocks, err := metric.NewAverager(
		"vm_wait_locks",
		"time spent waiting for account locks",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	execute, err := metric.NewAverager(
		"vm_execute",
		"time spent executing txs",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	commit, err := metric.NewAverager(
		"vm_commit",
		"time spent writing tx changes to disk",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs submitted",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of txs rejected before execution",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_succeeded",
			Help:      "number of txs executed successfully",
		}),
		txsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_failed",
			Help:      "number of txs reverted during execution by error code",
		}, []string{"code"}),
		initializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "initializations",
			Help:      "number of successful initialize actions",
		}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "deposits",
			Help:      "number of successful deposit actions",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "withdrawals",
			Help:      "number of successful withdraw actions",
		}),
		deposited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "deposited",
			Help:      "total amount deposited",
		}),
		withdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "withdrawn",
			Help:      "total amount withdrawn",
		}),
		vaultBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vault",
			Name:      "balance",
			Help:      "balance held by the vault",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "state_changes",
			Help:      "number of keys written by accepted txs",
		}),
		locksHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "locks_held",
			Help:      "number of account locks held or awaited",
		}),
		waitSignatures: waitSignatures,
		waitLocks:      waitLocks,
		execute:        execute,
		commit:         commit,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsRejected),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.initializations),
		r.Register(m.deposits),
		r.Register(m.withdrawals),
		r.Register(m.deposited),
		r.Register(m.withdrawn),
		r.Register(m.vaultBalance),
		r.Register(m.stateChanges),
		r.Register(m.locksHeld),
	)
	return r, m, errs.Err
}

func (m *Metrics) recordFailure(code uint32) {
	m.txsFailed.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
}
