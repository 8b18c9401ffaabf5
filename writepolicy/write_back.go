package writepolicy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/krisalay/msea-cache/storage"
)

// This file implements the "write-back" policy.

type opKind int

const (
	opWrite opKind = iota
	opDelete
	opBarrier
)

// writeReq represents one pending store operation.
type writeReq struct {
	op    opKind
	ctx   context.Context
	key   string
	value []byte

	// done is closed by the worker once the operation has been applied.
	// Only deletes and barriers carry one.
	done chan struct{}
}

/*
WriteBackPolicy manages asynchronous writes to the persistent store.

Writes, deletes and barriers share one queue and one worker, so they reach
the store in the order they were issued.

BEHAVIOR:
---------
- OnWrite queues and returns. A full queue drops the write (logged); the
  memory tier still holds the record.
- OnDelete queues and WAITS until the worker has applied it. Deletes are
  never dropped: a dropped delete would let an invalidated record come back.
- Sync queues a barrier and waits for it.
- After Close every operation goes straight to the store.
*/
type WriteBackPolicy struct {
	store  storage.Store
	logger *zap.Logger

	// ch is a buffered channel that holds pending operations.
	ch chan writeReq

	// mu guards closed against concurrent senders: senders hold the read
	// lock while sending, Close takes the write lock before closing ch.
	mu     sync.RWMutex
	closed bool

	// wg is used to wait for the worker to finish during shutdown.
	wg sync.WaitGroup
}

// NewWriteBackPolicy creates a new write-back policy and starts its worker.
func NewWriteBackPolicy(store storage.Store, buffer int, logger *zap.Logger) *WriteBackPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 1
	}
	w := &WriteBackPolicy{
		store:  store,
		logger: logger,
		ch:     make(chan writeReq, buffer),
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite queues the write. If the queue is full, the write is dropped and
// logged: the record stays in memory and is re-persisted on its next fetch.
func (w *WriteBackPolicy) OnWrite(ctx context.Context, key string, value []byte) {
	req := writeReq{op: opWrite, ctx: context.WithoutCancel(ctx), key: key, value: value}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.apply(req)
		return
	}
	select {
	case w.ch <- req:
	default:
		w.logger.Warn("write-back queue full, dropping write", zap.String("key", key))
	}
}

// OnDelete queues the delete behind every pending write and waits for it.
func (w *WriteBackPolicy) OnDelete(ctx context.Context, key string) {
	w.wait(writeReq{op: opDelete, ctx: context.WithoutCancel(ctx), key: key})
}

// Sync waits until every operation queued so far has been applied.
func (w *WriteBackPolicy) Sync() {
	w.wait(writeReq{op: opBarrier})
}

// wait enqueues req, blocking while the queue is full, and waits for the
// worker to apply it.
func (w *WriteBackPolicy) wait(req writeReq) {
	req.done = make(chan struct{})

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		w.apply(req)
		return
	}
	w.ch <- req
	w.mu.RUnlock()

	<-req.done
}

// worker drains the queue until Close.
func (w *WriteBackPolicy) worker() {
	defer w.wg.Done()

	for req := range w.ch {
		w.apply(req)
		if req.done != nil {
			close(req.done)
		}
	}
}

func (w *WriteBackPolicy) apply(req writeReq) {
	switch req.op {
	case opWrite:
		if err := w.store.Set(req.ctx, req.key, req.value); err != nil {
			w.logger.Warn("persist cache entry", zap.String("key", req.key), zap.Error(err))
		}
	case opDelete:
		if err := w.store.Delete(req.ctx, req.key); err != nil {
			w.logger.Warn("delete persisted cache entry", zap.String("key", req.key), zap.Error(err))
		}
	}
}

/*
Close shuts down the write-back policy gracefully.
1. Mark the policy closed (later operations bypass the queue)
2. Close the channel
3. Wait for the worker to finish processing queued operations

Close is idempotent.
*/
func (w *WriteBackPolicy) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
