// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	nerrgroup "github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/event"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/lockmap"
	"github.com/ava-labs/vaultvm/registry"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/tstate"
)

// VM executes vault transactions against a local database. Transactions
// touching disjoint accounts run in parallel and transactions sharing an
// account are serialized.
type VM struct {
	config  Config
	log     logging.Logger
	tracer  trace.Tracer
	db      DB
	genesis *genesis.Genesis
	rules   *genesis.Rules
	parser  *registry.Parser

	clock   mockable.Clock
	locks   *lockmap.Lockmap
	window  *chain.TimeValidityWindow
	results *cache.LRU[ids.ID, *chain.Result]
	hub     *event.Hub[*chain.Result]

	metricsRegistry *prometheus.Registry
	metrics         *Metrics

	// inflight tracks submissions so [Close] can wait for them
	closeLock sync.RWMutex
	closed    bool
	inflight  sync.WaitGroup
}

func New(
	ctx context.Context,
	config Config,
	log logging.Logger,
	tracer trace.Tracer,
	db DB,
	g *genesis.Genesis,
) (*VM, error) {
	metricsRegistry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	vm := &VM{
		config:          config,
		log:             log,
		tracer:          tracer,
		db:              db,
		genesis:         g,
		rules:           g.Rules,
		parser:          registry.NewParser(g.Rules),
		locks:           lockmap.New(1_024),
		window:          chain.NewTimeValidityWindow(log),
		results:         &cache.LRU[ids.ID, *chain.Result]{Size: max(config.ResultCacheSize, 1)},
		hub:             event.NewHub[*chain.Result](),
		metricsRegistry: metricsRegistry,
		metrics:         metrics,
	}
	if err := vm.initializeGenesis(ctx); err != nil {
		return nil, err
	}
	vault, err := vm.Balance(ctx, vm.VaultAddress())
	if err != nil {
		return nil, err
	}
	vm.metrics.vaultBalance.Set(float64(vault))
	return vm, nil
}

func (vm *VM) Rules() *genesis.Rules {
	return vm.rules
}

func (vm *VM) Parser() chain.Parser {
	return vm.parser
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Tracer() trace.Tracer {
	return vm.tracer
}

func (vm *VM) Clock() *mockable.Clock {
	return &vm.clock
}

func (vm *VM) MetricsRegistry() *prometheus.Registry {
	return vm.metricsRegistry
}

// Subscribe registers [sub] for the result of every executed tx. The
// returned function removes it.
func (vm *VM) Subscribe(sub event.Subscription[*chain.Result]) func() error {
	return vm.hub.Subscribe(sub)
}

func (vm *VM) enter() error {
	vm.closeLock.RLock()
	defer vm.closeLock.RUnlock()

	if vm.closed {
		return ErrClosed
	}
	vm.inflight.Add(1)
	return nil
}

// Submit verifies and executes [tx]. An error means the tx was rejected
// without being executed. A tx whose actions fail is still executed and
// its failure is reported in the [chain.Result].
func (vm *VM) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	if err := vm.enter(); err != nil {
		return nil, err
	}
	defer vm.inflight.Done()

	vm.metrics.txsSubmitted.Inc()
	start := time.Now()
	if err := tx.Verify(ctx); err != nil {
		vm.metrics.txsRejected.Inc()
		return nil, err
	}
	vm.metrics.waitSignatures.Observe(float64(time.Since(start)))
	return vm.execute(ctx, tx)
}

// SubmitTxs verifies the signatures of [txs] in batches and executes the
// valid ones concurrently on at most [Config.ExecutionCores] goroutines.
// The result and error of each tx are returned at its index.
func (vm *VM) SubmitTxs(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, []error) {
	ctx, span := vm.tracer.Start(ctx, "VM.SubmitTxs")
	defer span.End()

	results := make([]*chain.Result, len(txs))
	errs := make([]error, len(txs))
	if err := vm.enter(); err != nil {
		for i := range errs {
			errs[i] = err
		}
		return results, errs
	}
	defer vm.inflight.Done()

	vm.metrics.txsSubmitted.Add(float64(len(txs)))
	start := time.Now()
	vm.verifyAuth(ctx, txs, errs)
	vm.metrics.waitSignatures.Observe(float64(time.Since(start)))

	cores := max(vm.config.ExecutionCores, 1)
	g, _ := nerrgroup.WithContextN(ctx, cores, cores*4)
	for i, tx := range txs {
		if errs[i] != nil {
			vm.metrics.txsRejected.Inc()
			continue
		}
		i, tx := i, tx
		g.Go(func() error {
			results[i], errs[i] = vm.execute(ctx, tx)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// verifyAuth checks all signatures with batch verification. If a batch
// fails, each of its txs is verified on its own to find the invalid ones.
func (vm *VM) verifyAuth(ctx context.Context, txs []*chain.Transaction, errs []error) {
	msgs := make([][]byte, len(txs))
	valid := 0
	for i, tx := range txs {
		msg, err := tx.Digest()
		if err != nil {
			errs[i] = err
			continue
		}
		msgs[i] = msg
		valid++
	}
	if valid == 0 {
		return
	}

	batch := auth.NewED25519Batch(vm.config.AuthVerificationCores, valid)
	g := &errgroup.Group{}
	g.SetLimit(max(vm.config.AuthVerificationCores, 1))
	for i, tx := range txs {
		if errs[i] != nil {
			continue
		}
		if verify := batch.Add(msgs[i], tx.Auth); verify != nil {
			g.Go(verify)
		}
	}
	for _, verify := range batch.Done() {
		g.Go(verify)
	}
	if err := g.Wait(); err == nil {
		return
	}
	vm.log.Debug("batch signature verification failed", zap.Int("txs", valid))
	for i, tx := range txs {
		if errs[i] == nil {
			errs[i] = tx.Verify(ctx)
		}
	}
}

func (vm *VM) execute(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.execute")
	defer span.End()

	now := vm.clock.Time().UnixMilli()
	if err := tx.PreExecute(vm.rules, now); err != nil {
		vm.metrics.txsRejected.Inc()
		return nil, err
	}
	stateKeys, err := tx.StateKeys(vm.rules.ProgramID)
	if err != nil {
		vm.metrics.txsRejected.Inc()
		return nil, err
	}
	if err := vm.window.Accept(tx, now); err != nil {
		vm.metrics.txsRejected.Inc()
		return nil, err
	}

	start := time.Now()
	unlock := vm.locks.LockKeys(stateKeys)
	vm.metrics.locksHeld.Set(float64(vm.locks.Locks()))
	vm.metrics.waitLocks.Observe(float64(time.Since(start)))

	result, changes, err := vm.executeLocked(ctx, tx, stateKeys, now)
	unlock()
	if err != nil {
		vm.log.Error("unable to commit tx", zap.Stringer("txID", tx.ID()), zap.Error(err))
		return nil, err
	}

	vm.record(ctx, tx, result, changes)
	if err := vm.hub.Accept(ctx, result); err != nil {
		vm.log.Warn("result subscription failed", zap.Stringer("txID", tx.ID()), zap.Error(err))
	}
	return result, nil
}

// executeLocked runs [tx] and commits its changes. The locks of every key
// in [stateKeys] must be held.
func (vm *VM) executeLocked(
	ctx context.Context,
	tx *chain.Transaction,
	stateKeys state.Keys,
	now int64,
) (*chain.Result, int, error) {
	values := make(map[string][]byte, len(stateKeys))
	for k := range stateKeys {
		v, err := vm.db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		values[k] = v
	}

	start := time.Now()
	ts := tstate.New(len(stateKeys))
	view := ts.NewView(stateKeys, values)
	result := tx.Execute(ctx, vm.parser, view, now)
	view.Commit()
	vm.metrics.execute.Observe(float64(time.Since(start)))

	start = time.Now()
	batch := vm.db.NewBatch()
	changes, err := ts.WriteTo(ctx, vm.tracer, batch)
	if err != nil {
		return nil, 0, err
	}
	if err := vm.storeResult(batch, result); err != nil {
		return nil, 0, err
	}
	if err := batch.Write(); err != nil {
		return nil, 0, err
	}
	vm.metrics.commit.Observe(float64(time.Since(start)))
	return result, changes, nil
}

func (vm *VM) record(ctx context.Context, tx *chain.Transaction, result *chain.Result, changes int) {
	vm.results.Put(result.TxID, result)
	vm.metrics.stateChanges.Add(float64(changes))
	for _, msg := range result.Logs {
		vm.log.Debug("program log", zap.Stringer("txID", result.TxID), zap.String("msg", msg))
	}
	if !result.Success {
		vm.metrics.recordFailure(result.ErrorCode)
		vm.log.Debug("tx failed",
			zap.Stringer("txID", result.TxID),
			zap.Uint32("code", result.ErrorCode),
			zap.String("error", result.Error),
		)
		return
	}

	vm.metrics.txsSucceeded.Inc()
	for _, action := range tx.Actions {
		switch a := action.(type) {
		case *actions.Initialize:
			vm.metrics.initializations.Inc()
		case *actions.Deposit:
			vm.metrics.deposits.Inc()
			vm.metrics.deposited.Add(float64(a.Amount))
		case *actions.Withdraw:
			vm.metrics.withdrawals.Inc()
			vm.metrics.withdrawn.Add(float64(a.Amount))
		}
	}
	if vault, err := vm.Balance(ctx, vm.VaultAddress()); err == nil {
		vm.metrics.vaultBalance.Set(float64(vault))
	}
}

// ProgramID is the address the vault accounts are derived from.
func (vm *VM) ProgramID() codec.Address {
	return vm.rules.ProgramID
}

func (vm *VM) VaultAddress() codec.Address {
	return storage.VaultAddress(vm.rules.ProgramID)
}

func (vm *VM) StateAddress() codec.Address {
	return storage.StateAddress(vm.rules.ProgramID)
}

// Balance returns the committed balance of [addr].
func (vm *VM) Balance(ctx context.Context, addr codec.Address) (uint64, error) {
	return storage.GetBalanceFromState(ctx, vm.ReadState, addr)
}

// VaultState returns the committed vault configuration. The second value
// is false until the vault is initialized.
func (vm *VM) VaultState(ctx context.Context) (*storage.VaultState, bool, error) {
	return storage.GetVaultStateFromState(ctx, vm.ReadState, vm.StateAddress())
}

// Close waits for in-flight submissions before releasing the subscriptions
// and the database.
func (vm *VM) Close() error {
	vm.closeLock.Lock()
	if vm.closed {
		vm.closeLock.Unlock()
		return ErrClosed
	}
	vm.closed = true
	vm.closeLock.Unlock()

	vm.inflight.Wait()
	return errors.Join(vm.hub.Close(), vm.db.Close())
}
