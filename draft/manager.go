package draft

import (
	"context"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
)

// DefaultWindow is the quiet period after the last change before a draft is
// written.
const DefaultWindow = 700 * time.Millisecond

// State is the per-key state of a Manager.
type State int

const (
	Idle State = iota
	PendingWrite
)

func (s State) String() string {
	if s == PendingWrite {
		return "pending_write"
	}
	return "idle"
}

// HandleState is the outcome of one ScheduleSave call.
type HandleState int

const (
	Pending HandleState = iota
	Written
	Cancelled
	Failed
)

func (s HandleState) String() string {
	switch s {
	case Written:
		return "written"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithWindow overrides DefaultWindow. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

func WithScheduler(s Scheduler) Option { return func(m *Manager) { m.sched = s } }

func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.log = l } }

func WithMetrics(mt *Metrics) Option { return func(m *Manager) { m.metrics = mt } }

// Manager debounces draft writes per key. It is safe for concurrent use.
//
// Lock order is writeMu then mu. writeMu serializes every store mutation so
// that writes and deletes for a key are totally ordered.
type Manager struct {
	store   Store
	window  time.Duration
	sched   Scheduler
	log     *slog.Logger
	metrics *Metrics

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[string]*Handle
}

// NewManager returns a Manager writing to store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		window:  DefaultWindow,
		sched:   SystemScheduler{},
		log:     slog.Default(),
		pending: map[string]*Handle{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Handle tracks one scheduled save.
type Handle struct {
	m     *Manager
	key   string
	snap  Snapshot
	timer Timer
	state HandleState
	err   error
}

// Key returns the draft key the save targets.
func (h *Handle) Key() string { return h.key }

// State returns the current outcome.
func (h *Handle) State() HandleState {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.state
}

// Err returns the write failure of a Failed handle.
func (h *Handle) Err() error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.err
}

// Cancel stops the save if it is still pending.
func (h *Handle) Cancel() bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.pending[h.key] != h {
		return false
	}
	h.m.cancelLocked(h)
	h.m.metrics.inc(EventCancelled)
	return true
}

// ScheduleSave replaces any pending save for key with snap and restarts the
// window. The previous handle, if any, becomes Cancelled.
func (m *Manager) ScheduleSave(key string, snap Snapshot) *Handle {
	h := &Handle{m: m, key: key, snap: snap.clone()}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.pending[key]; ok {
		m.cancelLocked(old)
		m.metrics.inc(EventCoalesced)
	}
	m.pending[key] = h
	h.timer = m.sched.AfterFunc(m.window, func() { m.fire(h) })
	m.metrics.inc(EventScheduled)
	return h
}

func (m *Manager) cancelLocked(h *Handle) {
	h.timer.Stop()
	h.state = Cancelled
	delete(m.pending, h.key)
}

func (m *Manager) fire(h *Handle) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.mu.Lock()
	if m.pending[h.key] != h {
		m.mu.Unlock()
		return
	}
	delete(m.pending, h.key)
	m.mu.Unlock()
	m.write(context.Background(), h)
}

// write runs with writeMu held.
func (m *Manager) write(ctx context.Context, h *Handle) {
	err := m.put(ctx, h.key, h.snap)
	m.mu.Lock()
	if err != nil {
		h.state, h.err = Failed, err
	} else {
		h.state = Written
	}
	m.mu.Unlock()
	if err != nil {
		m.metrics.inc(EventFailed)
		m.log.Warn("draft save failed", "key", h.key, "op", "put", "err", err)
		return
	}
	m.metrics.inc(EventWritten)
}

func (m *Manager) put(ctx context.Context, key string, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return &IOError{Op: "encode", Key: key, Err: err}
	}
	if err := m.store.Put(ctx, key, b); err != nil {
		return &IOError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Flush writes the pending snapshot for key immediately. It reports whether
// a write happened and succeeded.
func (m *Manager) Flush(ctx context.Context, key string) bool {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.mu.Lock()
	h, ok := m.pending[key]
	if ok {
		h.timer.Stop()
		delete(m.pending, key)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.write(ctx, h)
	return h.State() == Written
}

// CancelPending drops the pending save for key without writing it.
func (m *Manager) CancelPending(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.pending[key]
	if !ok {
		return false
	}
	m.cancelLocked(h)
	m.metrics.inc(EventCancelled)
	return true
}

// State reports whether a save for key is waiting for its window.
func (m *Manager) State(key string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[key]; ok {
		return PendingWrite
	}
	return Idle
}

// LoadDraft reads the stored snapshot for key. Missing, unreadable and
// malformed drafts are all reported as absent.
func (m *Manager) LoadDraft(ctx context.Context, key string) (Snapshot, bool) {
	b, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn("draft load failed", "key", key, "op", "get", "err", &IOError{Op: "get", Key: key, Err: err})
		return Snapshot{}, false
	}
	if !ok {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		m.log.Warn("draft load failed", "key", key, "op", "decode", "err", &IOError{Op: "decode", Key: key, Err: err})
		return Snapshot{}, false
	}
	if snap.Fields == nil {
		snap.Fields = []formkit.FieldDefinition{}
	}
	return snap, true
}

// DiscardDraft deletes the stored draft for key and cancels any pending save,
// so a timer that was already scheduled cannot bring the draft back.
// Discarding a missing key is a no-op.
func (m *Manager) DiscardDraft(ctx context.Context, key string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.mu.Lock()
	if h, ok := m.pending[key]; ok {
		m.cancelLocked(h)
	}
	m.mu.Unlock()
	if err := m.store.Delete(ctx, key); err != nil {
		m.metrics.inc(EventFailed)
		m.log.Warn("draft discard failed", "key", key, "op", "delete", "err", &IOError{Op: "delete", Key: key, Err: err})
		return
	}
	m.metrics.inc(EventDiscarded)
}
