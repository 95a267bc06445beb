package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/metrics"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// DefaultIngestionTimeout limita uma sessão de análise.
const DefaultIngestionTimeout = 30 * time.Second

// Ingester is what the controller drives. IngestionPipeline implements it.
type Ingester interface {
	Submit(ctx context.Context, upload *entity.Upload) (*entity.UsageReport, error)
}

// TransitionListener recebe cada mudança de estado do controller, em ordem.
type TransitionListener func(entity.DashboardSnapshot)

// DashboardController owns the dashboard state machine:
// Idle -> Processing -> Ready | Failed, and back to Processing on a new submit.
//
// Only one session is current. Submitting while a session is in flight cancels it and
// its result is discarded when it arrives, so the dashboard never shows an older file's
// report after a newer one was submitted.
type DashboardController struct {
	ingester  Ingester
	presenter *ReportPresenter
	timeout   time.Duration
	log       *zap.Logger
	newID     func() string

	mu        sync.Mutex
	state     entity.SessionState
	current   *SessionHandle
	source    string
	report    *entity.UsageReport
	view      *entity.PresentationView
	err       error
	listeners []TransitionListener

	// transições ainda não entregues, na ordem em que aconteceram
	pending   []entity.DashboardSnapshot
	queued    uint64
	delivered uint64
	draining  bool
	idle      *sync.Cond
}

// NewDashboardController cria o controller no estado Idle. timeout <= 0 desativa o limite.
func NewDashboardController(ingester Ingester, presenter *ReportPresenter, timeout time.Duration, log *zap.Logger) *DashboardController {
	if log == nil {
		log = zap.NewNop()
	}
	c := &DashboardController{
		ingester:  ingester,
		presenter: presenter,
		timeout:   timeout,
		log:       log,
		newID:     uuid.NewString,
		state:     entity.StateIdle,
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// OnTransition registra um listener. Listeners are called one at a time, in transition
// order, without any controller lock held, so they may call Snapshot or Submit.
func (c *DashboardController) OnTransition(fn TransitionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot devolve o estado atual.
func (c *DashboardController) Snapshot() entity.DashboardSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Submit starts a new session for upload and returns immediately.
func (c *DashboardController) Submit(ctx context.Context, upload *entity.Upload) *SessionHandle {
	sctx, cancel := context.WithCancel(ctx)
	h := &SessionHandle{
		id:     c.newID(),
		source: upload.Name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if prev := c.current; prev != nil && c.state == entity.StateProcessing {
		c.log.Debug("superseding in-flight session",
			zap.String("session", prev.id), zap.String("by", h.id))
		prev.cancel()
	}
	c.current = h
	c.state = entity.StateProcessing
	c.source = upload.Name
	c.report, c.view, c.err = nil, nil, nil
	c.publishLocked()

	go c.run(sctx, h, upload)
	// sem esperar: Submit pode ser chamado de dentro de um listener
	c.drain(0)
	return h
}

type ingestResult struct {
	report *entity.UsageReport
	err    error
}

func (c *DashboardController) run(ctx context.Context, h *SessionHandle, upload *entity.Upload) {
	defer close(h.done)
	defer h.cancel()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ch := make(chan ingestResult, 1)
	go func() {
		report, err := c.ingester.Submit(ctx, upload)
		ch <- ingestResult{report: report, err: err}
	}()

	var res ingestResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		// o ingester pode estar preso numa leitura; o resultado dele é descartado
		res = ingestResult{err: ctx.Err()}
	}
	c.complete(h, res)
}

func (c *DashboardController) complete(h *SessionHandle, res ingestResult) {
	c.mu.Lock()
	if c.current != h {
		c.mu.Unlock()
		h.stale = true
		metrics.SessionsTotal.WithLabelValues("stale").Inc()
		c.log.Debug("discarding stale completion", zap.String("session", h.id))
		return
	}

	log := c.log.With(zap.String("session", h.id), zap.String("source", h.source))
	switch {
	case h.canceled.Load():
		c.state = entity.StateIdle
		c.report, c.view, c.err = nil, nil, nil
		metrics.SessionsTotal.WithLabelValues("canceled").Inc()
		log.Info("session canceled")

	case res.err != nil:
		err := res.err
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: no result after %s", types.ErrTruncated, c.timeout)
		}
		c.state = entity.StateFailed
		c.err = err
		metrics.SessionsTotal.WithLabelValues("failed").Inc()
		metrics.IngestionErrorsTotal.WithLabelValues(types.IngestionErrorKind(err)).Inc()
		log.Warn("ingestion failed", zap.Error(err))

	default:
		view := c.presenter.Present(res.report)
		c.state = entity.StateReady
		c.report = res.report
		c.view = &view
		metrics.SessionsTotal.WithLabelValues("ready").Inc()
		log.Info("report ready", zap.Int("instances", len(res.report.Instances)))
	}
	h.snap = c.snapshotLocked()
	seq := c.publishLocked()
	c.drain(seq)
}

func (c *DashboardController) snapshotLocked() entity.DashboardSnapshot {
	snap := entity.DashboardSnapshot{
		State:  c.state,
		Source: c.source,
		Report: c.report,
		View:   c.view,
		Err:    c.err,
	}
	if c.current != nil {
		snap.SessionID = c.current.id
	}
	return snap
}

// publishLocked enfileira a transição atual, libera c.mu e devolve o número dela na fila.
func (c *DashboardController) publishLocked() uint64 {
	c.pending = append(c.pending, c.snapshotLocked())
	c.queued++
	seq := c.queued
	c.mu.Unlock()
	return seq
}

// drain entrega as transições pendentes. Only one goroutine drains at a time, which keeps
// delivery in transition order. When another goroutine is already draining, drain waits
// until transition number until was delivered (until == 0 returns at once).
func (c *DashboardController) drain(until uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining {
		for c.draining && c.delivered < until {
			c.idle.Wait()
		}
		if c.delivered >= until {
			return
		}
	}

	c.draining = true
	for len(c.pending) > 0 {
		snap := c.pending[0]
		c.pending = c.pending[1:]
		listeners := append([]TransitionListener(nil), c.listeners...)
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(snap)
		}

		c.mu.Lock()
		c.delivered++
		c.idle.Broadcast()
	}
	c.draining = false
	c.idle.Broadcast()
}

// SessionHandle identifies one submitted analysis.
type SessionHandle struct {
	id       string
	source   string
	cancel   context.CancelFunc
	done     chan struct{}
	canceled atomic.Bool

	// preenchidos por complete antes de done ser fechado
	stale bool
	snap  entity.DashboardSnapshot
}

func (h *SessionHandle) ID() string { return h.id }

// Done is closed once the session has completed, failed, been canceled or gone stale.
func (h *SessionHandle) Done() <-chan struct{} { return h.done }

// Cancel aborta a sessão. Se ela ainda for a atual, o controller volta para Idle.
func (h *SessionHandle) Cancel() {
	h.canceled.Store(true)
	h.cancel()
}

// Wait blocks until the session ends and returns the snapshot it produced.
// It returns types.ErrStaleSession when a newer session replaced this one before it finished.
func (h *SessionHandle) Wait(ctx context.Context) (entity.DashboardSnapshot, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return entity.DashboardSnapshot{}, ctx.Err()
	}
	if h.stale {
		return entity.DashboardSnapshot{SessionID: h.id, Source: h.source}, types.ErrStaleSession
	}
	return h.snap, nil
}
