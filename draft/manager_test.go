package draft_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/draft"
)

func snap(name string) draft.Snapshot {
	return draft.Snapshot{Name: name, Fields: []formkit.FieldDefinition{formkit.NewFieldWithID("c1")}}
}

func newManager(t *testing.T, store draft.Store, opts ...draft.Option) (*draft.Manager, *draft.ManualScheduler) {
	t.Helper()
	clock := draft.NewManualScheduler()
	opts = append([]draft.Option{draft.WithScheduler(clock)}, opts...)
	return draft.NewManager(store, opts...), clock
}

func stored(t *testing.T, s *draft.MemoryStore, key string) (draft.Snapshot, bool) {
	t.Helper()
	b, ok, err := s.Get(context.Background(), key)
	if err != nil || !ok {
		return draft.Snapshot{}, false
	}
	var out draft.Snapshot
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("stored draft is not json: %v", err)
	}
	return out, true
}

func TestKeyFor(t *testing.T) {
	if got := draft.KeyFor(""); got != "draft_form_new" {
		t.Fatalf("new key: %q", got)
	}
	if got := draft.KeyFor("7"); got != "draft_form_7" {
		t.Fatalf("id key: %q", got)
	}
}

func TestScheduleSave_Coalesces(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	key := draft.KeyFor("7")

	h1 := m.ScheduleSave(key, snap("a"))
	clock.Advance(100 * time.Millisecond)
	h2 := m.ScheduleSave(key, snap("ab"))
	clock.Advance(100 * time.Millisecond)
	h3 := m.ScheduleSave(key, snap("abc"))

	clock.Advance(699 * time.Millisecond)
	if _, ok := stored(t, store, key); ok {
		t.Fatalf("written before the window elapsed")
	}
	if m.State(key) != draft.PendingWrite {
		t.Fatalf("expected pending_write, got %v", m.State(key))
	}
	clock.Advance(time.Millisecond)

	got, ok := stored(t, store, key)
	if !ok || got.Name != "abc" {
		t.Fatalf("expected last snapshot, got %+v ok=%v", got, ok)
	}
	if h1.State() != draft.Cancelled || h2.State() != draft.Cancelled || h3.State() != draft.Written {
		t.Fatalf("handle states: %v %v %v", h1.State(), h2.State(), h3.State())
	}
	if m.State(key) != draft.Idle {
		t.Fatalf("expected idle after write")
	}
	if clock.Now() != 900*time.Millisecond {
		t.Fatalf("clock: %v", clock.Now())
	}
}

func TestScheduleSave_KeysIndependent(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	m.ScheduleSave("draft_form_1", snap("one"))
	m.ScheduleSave("draft_form_2", snap("two"))
	clock.Advance(draft.DefaultWindow)
	a, _ := stored(t, store, "draft_form_1")
	b, _ := stored(t, store, "draft_form_2")
	if a.Name != "one" || b.Name != "two" {
		t.Fatalf("keys interfered: %q %q", a.Name, b.Name)
	}
}

func TestScheduleSave_SnapshotIsCopied(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	s := snap("x")
	m.ScheduleSave(draft.KeyNew, s)
	s.Fields[0].Name = "mutated"
	clock.Advance(draft.DefaultWindow)
	got, _ := stored(t, store, draft.KeyNew)
	if got.Fields[0].Name != "" {
		t.Fatalf("caller mutation leaked into draft: %q", got.Fields[0].Name)
	}
}

func TestCancelPending(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	h := m.ScheduleSave(draft.KeyNew, snap("x"))
	if !m.CancelPending(draft.KeyNew) {
		t.Fatalf("expected cancel to report true")
	}
	if m.CancelPending(draft.KeyNew) {
		t.Fatalf("second cancel must report false")
	}
	clock.Advance(time.Second)
	if _, ok := stored(t, store, draft.KeyNew); ok {
		t.Fatalf("cancelled save was written")
	}
	if h.State() != draft.Cancelled || h.Cancel() {
		t.Fatalf("handle should be cancelled")
	}
	if clock.Pending() != 0 {
		t.Fatalf("timer left behind")
	}
}

func TestDiscardDraft_CancelsPending(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	ctx := context.Background()
	m.ScheduleSave(draft.KeyNew, snap("old"))
	clock.Advance(draft.DefaultWindow)
	m.ScheduleSave(draft.KeyNew, snap("newer"))

	m.DiscardDraft(ctx, draft.KeyNew)
	clock.Advance(time.Second)
	if _, ok := m.LoadDraft(ctx, draft.KeyNew); ok {
		t.Fatalf("draft resurrected after discard")
	}
	// idempotent
	m.DiscardDraft(ctx, draft.KeyNew)
}

func TestFlush(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store)
	ctx := context.Background()
	if m.Flush(ctx, draft.KeyNew) {
		t.Fatalf("flush of idle key must report false")
	}
	h := m.ScheduleSave(draft.KeyNew, snap("now"))
	if !m.Flush(ctx, draft.KeyNew) {
		t.Fatalf("flush should write")
	}
	if h.State() != draft.Written || clock.Pending() != 0 {
		t.Fatalf("flush left state %v, %d timers", h.State(), clock.Pending())
	}
	if got, ok := m.LoadDraft(ctx, draft.KeyNew); !ok || got.Name != "now" {
		t.Fatalf("load after flush: %+v %v", got, ok)
	}
}

func TestLoadDraft_Corrupt(t *testing.T) {
	store := draft.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, draft.KeyNew, []byte("{not json"))
	var buf bytes.Buffer
	m, _ := newManager(t, store, draft.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	if _, ok := m.LoadDraft(ctx, draft.KeyNew); ok {
		t.Fatalf("corrupt draft must load as absent")
	}
	if !strings.Contains(buf.String(), "op=decode") {
		t.Fatalf("expected decode warning, got %q", buf.String())
	}
	if _, ok := m.LoadDraft(ctx, "draft_form_missing"); ok {
		t.Fatalf("missing key must be absent")
	}
}

func TestLoadDraft_NullFields(t *testing.T) {
	store := draft.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, draft.KeyNew, []byte(`{"name":"n","fields":null}`))
	m, _ := newManager(t, store)
	got, ok := m.LoadDraft(ctx, draft.KeyNew)
	if !ok || got.Fields == nil || len(got.Fields) != 0 {
		t.Fatalf("expected empty non-nil fields, got %#v", got.Fields)
	}
}

type failingStore struct {
	*draft.MemoryStore
	err error
}

func (f failingStore) Put(context.Context, string, []byte) error { return f.err }
func (f failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func TestWriteFailure_IsSwallowed(t *testing.T) {
	boom := errors.New("quota exceeded")
	reg := prometheus.NewRegistry()
	metrics := draft.NewMetrics(reg)
	var buf bytes.Buffer
	m, clock := newManager(t, failingStore{draft.NewMemoryStore(), boom},
		draft.WithMetrics(metrics), draft.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	h := m.ScheduleSave(draft.KeyNew, snap("x"))
	clock.Advance(draft.DefaultWindow)

	if h.State() != draft.Failed {
		t.Fatalf("expected failed handle, got %v", h.State())
	}
	var ioErr *draft.IOError
	if !errors.As(h.Err(), &ioErr) || ioErr.Op != "put" || !errors.Is(h.Err(), boom) {
		t.Fatalf("unexpected handle error: %v", h.Err())
	}
	if !strings.Contains(buf.String(), "draft save failed") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
	if got := testutil.ToFloat64(metrics.Events.WithLabelValues(draft.EventFailed)); got != 1 {
		t.Fatalf("failed counter = %v", got)
	}
	if _, ok := m.LoadDraft(context.Background(), draft.KeyNew); ok {
		t.Fatalf("read error must load as absent")
	}
}

func TestMetrics_Counts(t *testing.T) {
	metrics := draft.NewMetrics(nil)
	m, clock := newManager(t, draft.NewMemoryStore(), draft.WithMetrics(metrics))
	m.ScheduleSave(draft.KeyNew, snap("a"))
	m.ScheduleSave(draft.KeyNew, snap("b"))
	clock.Advance(draft.DefaultWindow)
	m.DiscardDraft(context.Background(), draft.KeyNew)

	for event, want := range map[string]float64{
		draft.EventScheduled: 2,
		draft.EventCoalesced: 1,
		draft.EventWritten:   1,
		draft.EventDiscarded: 1,
	} {
		if got := testutil.ToFloat64(metrics.Events.WithLabelValues(event)); got != want {
			t.Fatalf("%s = %v, want %v", event, got, want)
		}
	}
}

func TestWithWindow(t *testing.T) {
	store := draft.NewMemoryStore()
	m, clock := newManager(t, store, draft.WithWindow(50*time.Millisecond))
	m.ScheduleSave(draft.KeyNew, snap("fast"))
	clock.Advance(50 * time.Millisecond)
	if _, ok := stored(t, store, draft.KeyNew); !ok {
		t.Fatalf("custom window not honoured")
	}
}

func TestSystemScheduler_Writes(t *testing.T) {
	store := draft.NewMemoryStore()
	m := draft.NewManager(store, draft.WithWindow(5*time.Millisecond))
	h := m.ScheduleSave(draft.KeyNew, snap("wall"))
	deadline := time.Now().Add(2 * time.Second)
	for h.State() == draft.Pending && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if h.State() != draft.Written {
		t.Fatalf("wall-clock save did not complete: %v", h.State())
	}
}
