package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/metrics"
	"github.com/rl1809/catalog-bot/internal/port"
)

const (
	defaultBatchSize   = 2
	defaultQueueSize   = 16
	defaultIdleTimeout = 5 * time.Minute
)

type Dependencies struct {
	Catalog    port.CatalogStore
	Ledger     port.LedgerRepository
	Messenger  port.Messenger
	Authorizer port.Authorizer
	Assistant  port.Assistant // optional
	Taxonomy   *domain.Taxonomy
	Metrics    *metrics.Metrics // optional
}

type Options struct {
	BatchSize    int
	QueueSize    int
	IdleTimeout  time.Duration
	RemovedPhoto string
}

// SessionManager owns one SelectionState per user and runs every action of a
// user on that user's own worker goroutine, in arrival order. Workers for
// different users never share state and run concurrently.
type SessionManager struct {
	deps    Dependencies
	opts    Options
	pricing *PriceTierResolver

	mu       sync.Mutex
	sessions map[int64]*session
	closed   bool
	wg       sync.WaitGroup
}

type session struct {
	// state is read and written only by the worker goroutine.
	state domain.SelectionState
	// inbox is nil while no worker runs; guarded by SessionManager.mu.
	inbox chan job
}

type job struct {
	ctx      context.Context
	action   domain.Action
	done     chan error
	snapshot chan domain.SelectionState
}

func NewSessionManager(deps Dependencies, opts Options) (*SessionManager, error) {
	if deps.Catalog == nil || deps.Ledger == nil || deps.Messenger == nil || deps.Authorizer == nil {
		return nil, errors.New("session manager requires catalog, ledger, messenger and authorizer")
	}
	if deps.Taxonomy == nil {
		return nil, errors.New("session manager requires a taxonomy")
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("invalid batch size %d", opts.BatchSize)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}

	return &SessionManager{
		deps:     deps,
		opts:     opts,
		pricing:  NewPriceTierResolver(deps.Catalog),
		sessions: make(map[int64]*session),
	}, nil
}

// Submit enqueues an action on the user's worker and returns a channel that
// receives the processing result. Actions beyond the queue capacity are
// rejected with ErrSessionBusy rather than processed out of order.
func (m *SessionManager) Submit(ctx context.Context, action domain.Action) (<-chan error, error) {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	return m.enqueue(action.UserID, job{ctx: ctx, action: action})
}

func (m *SessionManager) enqueue(userID int64, j job) (<-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	s, ok := m.sessions[userID]
	if !ok {
		s = &session{}
		m.sessions[userID] = s
	}
	if s.inbox == nil {
		s.inbox = make(chan job, m.opts.QueueSize)
		m.wg.Add(1)
		go m.run(userID, s, s.inbox)
	}

	j.done = make(chan error, 1)
	select {
	case s.inbox <- j:
	default:
		return nil, ErrSessionBusy
	}

	m.deps.Metrics.SetActiveSessions(len(m.sessions))
	return j.done, nil
}

// Handle submits an action and waits until it has been processed.
func (m *SessionManager) Handle(ctx context.Context, action domain.Action) error {
	done, err := m.Submit(ctx, action)
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the user's state. It is meant for diagnostics
// and tests; it waits for queued actions of that user to finish first.
func (m *SessionManager) State(ctx context.Context, userID int64) (domain.SelectionState, error) {
	snapshot := make(chan domain.SelectionState, 1)
	done, err := m.enqueue(userID, job{ctx: ctx, snapshot: snapshot})
	if err != nil {
		return domain.SelectionState{}, err
	}

	select {
	case <-done:
		return <-snapshot, nil
	case <-ctx.Done():
		return domain.SelectionState{}, ctx.Err()
	}
}

// Close stops accepting actions and waits for the workers to drain.
func (m *SessionManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, s := range m.sessions {
		if s.inbox != nil {
			close(s.inbox)
			s.inbox = nil
		}
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *SessionManager) run(userID int64, s *session, inbox chan job) {
	defer m.wg.Done()

	idle := time.NewTimer(m.opts.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case j, ok := <-inbox:
			if !ok {
				return
			}
			m.process(s, j)
			idle.Reset(m.opts.IdleTimeout)

		case <-idle.C:
			m.mu.Lock()
			if len(inbox) > 0 {
				m.mu.Unlock()
				idle.Reset(m.opts.IdleTimeout)
				continue
			}
			if s.inbox == inbox {
				s.inbox = nil
			}
			if s.state.IsIdle() {
				delete(m.sessions, userID)
			}
			m.deps.Metrics.SetActiveSessions(len(m.sessions))
			m.mu.Unlock()
			return
		}
	}
}

// process runs one transition on a copy of the state and commits the copy
// only if every side effect of the transition succeeded.
func (m *SessionManager) process(s *session, j job) {
	if j.snapshot != nil {
		j.snapshot <- s.state
		j.done <- nil
		return
	}

	start := time.Now()
	a := j.action

	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	next := s.state
	err := m.dispatch(j.ctx, &next, a)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Printf("session %d: action %s (%s) failed at %s/%s: %v",
			a.UserID, a.ID, a.Kind, s.state.Flow, s.state.Step, err)
		if sendErr := m.deps.Messenger.SendText(j.ctx, a.ChatID, textGenericFailure, nil); sendErr != nil {
			log.Printf("session %d: failed to report failure: %v", a.UserID, sendErr)
		}
	} else {
		s.state = next
	}

	m.deps.Metrics.ObserveAction(a.Kind.String(), outcome, s.state.Flow.String(), time.Since(start))
	j.done <- err
}
