package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

type ingesterFunc func(ctx context.Context, upload *entity.Upload) (*entity.UsageReport, error)

func (f ingesterFunc) Submit(ctx context.Context, upload *entity.Upload) (*entity.UsageReport, error) {
	return f(ctx, upload)
}

// recorder guarda todas as transições publicadas.
type recorder struct {
	mu    sync.Mutex
	snaps []entity.DashboardSnapshot
}

func (r *recorder) listen(s entity.DashboardSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []entity.DashboardSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.DashboardSnapshot(nil), r.snaps...)
}

func reportFor(source string) *entity.UsageReport {
	r := sampleReport()
	r.Source = source
	return r
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestController(ingester Ingester, timeout time.Duration) (*DashboardController, *recorder) {
	c := NewDashboardController(ingester, NewReportPresenter(DefaultSavingsPolicy()), timeout, nil)
	rec := &recorder{}
	c.OnTransition(rec.listen)
	return c, rec
}

func TestDashboardController_StartsIdle(t *testing.T) {
	c, _ := newTestController(ingesterFunc(func(context.Context, *entity.Upload) (*entity.UsageReport, error) {
		return nil, nil
	}), 0)
	snap := c.Snapshot()
	assert.Equal(t, entity.StateIdle, snap.State)
	assert.Empty(t, snap.SessionID)
}

func TestDashboardController_Ready(t *testing.T) {
	c, rec := newTestController(ingesterFunc(func(_ context.Context, u *entity.Upload) (*entity.UsageReport, error) {
		return reportFor(u.Name), nil
	}), time.Second)

	h := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"})
	snap, err := h.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.Equal(t, entity.StateReady, snap.State)
	assert.Equal(t, h.ID(), snap.SessionID)
	require.NotNil(t, snap.View)
	assert.Equal(t, "a.csv", snap.View.Source)
	assert.NoError(t, snap.Err)

	states := []entity.SessionState{}
	for _, s := range rec.all() {
		states = append(states, s.State)
	}
	assert.Equal(t, []entity.SessionState{entity.StateProcessing, entity.StateReady}, states)
}

func TestDashboardController_Failed(t *testing.T) {
	c, _ := newTestController(ingesterFunc(func(context.Context, *entity.Upload) (*entity.UsageReport, error) {
		return nil, types.ErrUnsupportedFormat
	}), time.Second)

	snap, err := c.Submit(context.Background(), &entity.Upload{Name: "a.xlsx"}).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateFailed, snap.State)
	assert.ErrorIs(t, snap.Err, types.ErrUnsupportedFormat)
	assert.Nil(t, snap.View)
}

func TestDashboardController_SecondSubmitSupersedesFirst(t *testing.T) {
	release := make(chan struct{})
	c, rec := newTestController(ingesterFunc(func(_ context.Context, u *entity.Upload) (*entity.UsageReport, error) {
		if u.Name == "slow.csv" {
			// ignora o cancelamento para simular um resultado que chega atrasado
			<-release
		}
		return reportFor(u.Name), nil
	}), 0)

	first := c.Submit(context.Background(), &entity.Upload{Name: "slow.csv"})
	second := c.Submit(context.Background(), &entity.Upload{Name: "fast.csv"})

	snap, err := second.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateReady, snap.State)
	assert.Equal(t, "fast.csv", snap.View.Source)

	close(release)
	_, err = first.Wait(waitCtx(t))
	assert.ErrorIs(t, err, types.ErrStaleSession)

	// o relatório exibido continua sendo o da sessão mais recente
	final := c.Snapshot()
	assert.Equal(t, second.ID(), final.SessionID)
	assert.Equal(t, "fast.csv", final.View.Source)

	for _, s := range rec.all() {
		if s.State == entity.StateReady {
			assert.Equal(t, "fast.csv", s.View.Source, "no ready transition may show the superseded file")
		}
	}
}

func TestDashboardController_CancelReturnsToIdle(t *testing.T) {
	c, _ := newTestController(ingesterFunc(func(ctx context.Context, _ *entity.Upload) (*entity.UsageReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 0)

	h := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"})
	assert.Equal(t, entity.StateProcessing, c.Snapshot().State)
	h.Cancel()

	snap, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateIdle, snap.State)
	assert.Nil(t, snap.Report)
	assert.NoError(t, snap.Err)
}

func TestDashboardController_TimeoutIsTruncated(t *testing.T) {
	c, _ := newTestController(ingesterFunc(func(ctx context.Context, _ *entity.Upload) (*entity.UsageReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 20*time.Millisecond)

	snap, err := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"}).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateFailed, snap.State)
	assert.ErrorIs(t, snap.Err, types.ErrTruncated)
	assert.Equal(t, types.KindTruncated, types.IngestionErrorKind(snap.Err))
}

func TestDashboardController_TimeoutWithStuckIngester(t *testing.T) {
	stuck := make(chan struct{})
	defer close(stuck)
	c, _ := newTestController(ingesterFunc(func(context.Context, *entity.Upload) (*entity.UsageReport, error) {
		<-stuck
		return nil, errors.New("never seen")
	}), 20*time.Millisecond)

	snap, err := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"}).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.ErrorIs(t, snap.Err, types.ErrTruncated)
}

func TestDashboardController_ResubmitAfterFailure(t *testing.T) {
	calls := 0
	c, _ := newTestController(ingesterFunc(func(_ context.Context, u *entity.Upload) (*entity.UsageReport, error) {
		calls++
		if calls == 1 {
			return nil, types.ErrEmptyOrMalformed
		}
		return reportFor(u.Name), nil
	}), 0)

	snap, err := c.Submit(context.Background(), &entity.Upload{Name: "bad.csv"}).Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, entity.StateFailed, snap.State)

	snap, err = c.Submit(context.Background(), &entity.Upload{Name: "good.csv"}).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateReady, snap.State)
	assert.NoError(t, snap.Err)
}

func TestSessionHandle_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c, _ := newTestController(ingesterFunc(func(context.Context, *entity.Upload) (*entity.UsageReport, error) {
		<-block
		return nil, nil
	}), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"}).Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSessionHandle_WaitAfterNewerSubmit(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c, _ := newTestController(ingesterFunc(func(_ context.Context, u *entity.Upload) (*entity.UsageReport, error) {
		if u.Name == "b.csv" {
			<-block
		}
		return reportFor(u.Name), nil
	}), 0)

	first := c.Submit(context.Background(), &entity.Upload{Name: "a.csv"})
	<-first.Done()
	c.Submit(context.Background(), &entity.Upload{Name: "b.csv"})
	require.Equal(t, entity.StateProcessing, c.Snapshot().State)

	// a primeira sessão terminou antes da segunda começar; não foi substituída
	snap, err := first.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, entity.StateReady, snap.State)
	assert.Equal(t, first.ID(), snap.SessionID)
	require.NotNil(t, snap.View)
	assert.Equal(t, "a.csv", snap.View.Source)
}

func TestDashboardController_ListenersMayCallController(t *testing.T) {
	c, rec := newTestController(ingesterFunc(func(_ context.Context, u *entity.Upload) (*entity.UsageReport, error) {
		return reportFor(u.Name), nil
	}), 0)

	var resubmitted sync.Once
	follow := make(chan *SessionHandle, 1)
	c.OnTransition(func(s entity.DashboardSnapshot) {
		_ = c.Snapshot()
		if s.State == entity.StateReady && s.Source == "first.csv" {
			resubmitted.Do(func() {
				follow <- c.Submit(context.Background(), &entity.Upload{Name: "follow.csv"})
			})
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := c.Submit(context.Background(), &entity.Upload{Name: "other.csv"})
			_, _ = h.Wait(waitCtx(t))
		}()
	}
	wg.Wait()

	_, err := c.Submit(context.Background(), &entity.Upload{Name: "first.csv"}).Wait(waitCtx(t))
	require.NoError(t, err)

	var h *SessionHandle
	select {
	case h = <-follow:
	case <-time.After(5 * time.Second):
		t.Fatal("listener could not submit")
	}
	snap, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "follow.csv", snap.View.Source)

	assert.Eventually(t, func() bool {
		snaps := rec.all()
		last := snaps[len(snaps)-1]
		return last.State == entity.StateReady && last.Source == "follow.csv"
	}, 5*time.Second, 10*time.Millisecond)
}
