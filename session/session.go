// Package session owns one schema-editing session: the in-progress schema,
// its undo history and the draft that mirrors it.
//
// A Session is not safe for concurrent use. Each editing session owns its
// schema exclusively; only the draft store is shared, by key.
package session

import (
	"context"
	"log/slog"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/draft"
)

// Loader fetches a published schema.
type Loader interface {
	GetForm(ctx context.Context, id formkit.SchemaID) (formkit.RemoteForm, error)
}

// Publisher creates or replaces a schema in the remote store.
type Publisher interface {
	CreateForm(ctx context.Context, p formkit.PublishPayload) (formkit.RemoteForm, error)
	UpdateForm(ctx context.Context, id formkit.SchemaID, p formkit.PublishPayload) (formkit.RemoteForm, error)
}

// DefaultHistory is the number of undo steps kept.
const DefaultHistory = 100

type Option func(*Session)

func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

// WithHistory limits the undo stack to n entries. Zero disables undo.
func WithHistory(n int) Option { return func(s *Session) { s.limit = max(n, 0) } }

// WithFlushOnClose makes Close write a pending draft instead of dropping it.
func WithFlushOnClose() Option { return func(s *Session) { s.flushOnClose = true } }

type Session struct {
	drafts       *draft.Manager
	log          *slog.Logger
	limit        int
	flushOnClose bool

	schema   formkit.Schema
	undo     []draft.Snapshot
	redo     []draft.Snapshot
	restored bool
	closed   bool
}

func newSession(drafts *draft.Manager, opts []Option) *Session {
	s := &Session{drafts: drafts, log: slog.Default(), limit: DefaultHistory}
	for _, o := range opts {
		o(s)
	}
	return s
}

func blankFields() []formkit.FieldDefinition {
	return []formkit.FieldDefinition{formkit.NewField()}
}

// New starts an unpublished schema with one empty field. It does not look
// at stored drafts; use Open with an empty id for that.
func New(drafts *draft.Manager, opts ...Option) *Session {
	s := newSession(drafts, opts)
	s.schema = formkit.Schema{Fields: blankFields()}
	return s
}

// FromSchema edits an existing schema as is, without consulting drafts.
// Fields are repaired the same way restored drafts are.
func FromSchema(sc formkit.Schema, drafts *draft.Manager, opts ...Option) *Session {
	s := newSession(drafts, opts)
	s.schema = sc.Clone()
	s.schema.Fields = formkit.RepairFields(sc.Fields)
	return s
}

// Open loads schema id (or starts a new one when id is empty) and
// reconciles it with a stored draft. A draft that loads wins over the remote
// copy: it holds edits the user has not published yet. Restored fields get
// their client ids repaired and orders renumbered.
//
// Remote errors are returned untouched.
func Open(ctx context.Context, loader Loader, id formkit.SchemaID, drafts *draft.Manager, opts ...Option) (*Session, error) {
	s := newSession(drafts, opts)
	if id != "" {
		rf, err := loader.GetForm(ctx, id)
		if err != nil {
			return nil, err
		}
		s.schema = rf.Schema()
		if s.schema.ID == "" {
			s.schema.ID = id
		}
	} else {
		s.schema = formkit.Schema{Fields: blankFields()}
	}
	if snap, ok := drafts.LoadDraft(ctx, s.Key()); ok {
		s.schema.Name = snap.Name
		s.schema.Fields = formkit.RepairFields(snap.Fields)
		s.restored = true
		s.log.Debug("draft restored", "key", s.Key(), "fields", len(snap.Fields))
	}
	return s, nil
}

// Key is the draft key of the session's schema.
func (s *Session) Key() string { return draft.KeyFor(s.schema.ID) }

// Schema returns a copy of the current schema.
func (s *Session) Schema() formkit.Schema { return s.schema.Clone() }

// Restored reports whether Open took the schema from a draft.
func (s *Session) Restored() bool { return s.restored }

func (s *Session) snapshot() draft.Snapshot { return draft.SnapshotOf(s.schema) }

func (s *Session) restore(snap draft.Snapshot) {
	s.schema.Name = snap.Name
	s.schema.Fields = snap.Fields
}

func (s *Session) scheduleDraft() {
	if s.closed {
		return
	}
	s.drafts.ScheduleSave(s.Key(), s.snapshot())
}

// apply records an undo step and schedules a draft when next differs from
// the current state. It reports whether anything changed.
func (s *Session) apply(name string, fields []formkit.FieldDefinition) bool {
	next := formkit.Schema{ID: s.schema.ID, Name: name, Fields: fields, CreatedAt: s.schema.CreatedAt}
	if next.Equal(s.schema) {
		return false
	}
	if s.limit > 0 {
		s.undo = append(s.undo, s.snapshot())
		if len(s.undo) > s.limit {
			s.undo = s.undo[len(s.undo)-s.limit:]
		}
	}
	s.redo = nil
	s.schema = next
	s.scheduleDraft()
	return true
}

func (s *Session) SetName(name string) bool { return s.apply(name, s.schema.Fields) }

// AddField inserts an empty field after index at (formkit.End appends) and
// returns its client id.
func (s *Session) AddField(at int) string {
	f := formkit.NewField()
	s.apply(s.schema.Name, formkit.InsertField(s.schema.Fields, at, f))
	return f.ClientID
}

// PatchField reports false when cid is unknown or the patch changes nothing.
func (s *Session) PatchField(cid string, p formkit.FieldPatch) bool {
	return s.apply(s.schema.Name, formkit.PatchField(s.schema.Fields, cid, p))
}

func (s *Session) RemoveField(cid string) bool {
	return s.apply(s.schema.Name, formkit.RemoveField(s.schema.Fields, cid))
}

// MoveField reports false for an unknown cid or a move past either end.
func (s *Session) MoveField(cid string, dir formkit.Direction) bool {
	return s.apply(s.schema.Name, formkit.MoveField(s.schema.Fields, cid, dir))
}

func (s *Session) CanUndo() bool { return len(s.undo) > 0 }
func (s *Session) CanRedo() bool { return len(s.redo) > 0 }

// Undo restores the state before the last change and schedules a draft.
func (s *Session) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.snapshot())
	s.restore(prev)
	s.scheduleDraft()
	return true
}

func (s *Session) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.snapshot())
	s.restore(next)
	s.scheduleDraft()
	return true
}

// Validate runs schema validation on the current state.
func (s *Session) Validate() (formkit.PublishPayload, error) {
	return formkit.ValidateSchema(s.schema)
}

// Save validates and publishes the schema. The draft under the pre-save key
// is discarded only after the store confirms the write; on any error the
// schema and its draft are left as they were. A newly created schema adopts
// the id the store assigned.
func (s *Session) Save(ctx context.Context, pub Publisher) (formkit.RemoteForm, error) {
	payload, err := formkit.ValidateSchema(s.schema)
	if err != nil {
		return formkit.RemoteForm{}, err
	}
	key := s.Key()
	var rf formkit.RemoteForm
	if s.schema.Published() {
		rf, err = pub.UpdateForm(ctx, s.schema.ID, payload)
	} else {
		rf, err = pub.CreateForm(ctx, payload)
	}
	if err != nil {
		s.log.Debug("schema save failed", "key", key, "err", err)
		return formkit.RemoteForm{}, err
	}
	s.drafts.DiscardDraft(ctx, key)
	if rf.ID != "" {
		s.schema.ID = rf.ID
	}
	if !rf.CreatedAt.IsZero() {
		s.schema.CreatedAt = rf.CreatedAt
	}
	return rf, nil
}

// Reset discards the draft and starts over with a blank name and one empty
// field. The schema id and the remote copy are untouched.
func (s *Session) Reset(ctx context.Context) {
	s.drafts.DiscardDraft(ctx, s.Key())
	s.schema.Name = ""
	s.schema.Fields = blankFields()
	s.undo, s.redo = nil, nil
	s.restored = false
}

// Close stops the pending draft write for the session's key, or writes it
// when the session was built WithFlushOnClose. Later edits are still
// applied in memory but no longer mirrored to the draft store.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.flushOnClose {
		s.drafts.Flush(context.Background(), s.Key())
		return
	}
	s.drafts.CancelPending(s.Key())
}
