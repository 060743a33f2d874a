package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/draft"
	"github.com/reoring/formkit/remote"
	"github.com/reoring/formkit/remote/remotetest"
	"github.com/reoring/formkit/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	store  *draft.MemoryStore
	clock  *draft.ManualScheduler
	drafts *draft.Manager
	srv    *remotetest.Server
	client *remote.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: draft.NewMemoryStore(), clock: draft.NewManualScheduler(), srv: remotetest.New()}
	e.drafts = draft.NewManager(e.store, draft.WithScheduler(e.clock))
	ts := httptest.NewServer(e.srv.Handler())
	t.Cleanup(ts.Close)
	c, err := remote.NewClient(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	e.client = c
	return e
}

func (e *env) settle() { e.clock.Advance(draft.DefaultWindow) }

func (e *env) draft(t *testing.T, key string) (draft.Snapshot, bool) {
	t.Helper()
	return e.drafts.LoadDraft(context.Background(), key)
}

func TestNew_OneEmptyField(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	sc := s.Schema()
	if sc.Published() || len(sc.Fields) != 1 || sc.Fields[0].Type != formkit.TypeText {
		t.Fatalf("unexpected initial schema: %+v", sc)
	}
	if s.Key() != draft.KeyNew {
		t.Fatalf("key: %q", s.Key())
	}
}

func TestMutations_ScheduleDraft(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	first := s.Schema().Fields[0].ClientID

	s.SetName("stock")
	s.PatchField(first, formkit.Patch().Name("qty").Type(formkit.TypeNumber).Required(true))
	second := s.AddField(formkit.End)
	s.PatchField(second, formkit.Patch().Name("color").Type(formkit.TypeSelect).Options("red", "blue"))
	if e.drafts.State(draft.KeyNew) != draft.PendingWrite {
		t.Fatalf("expected pending draft")
	}
	e.settle()

	got, ok := e.draft(t, draft.KeyNew)
	if !ok || got.Name != "stock" || len(got.Fields) != 2 || got.Fields[1].Name != "color" {
		t.Fatalf("draft: %+v %v", got, ok)
	}
}

func TestNoopMutation_NoDraft(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	if s.PatchField("missing", formkit.Patch().Name("x")) {
		t.Fatalf("unknown cid must report no change")
	}
	cid := s.Schema().Fields[0].ClientID
	if s.MoveField(cid, formkit.Up) {
		t.Fatalf("boundary move must report no change")
	}
	if e.drafts.State(draft.KeyNew) != draft.Idle || s.CanUndo() {
		t.Fatalf("no-op scheduled a draft or recorded undo")
	}
}

func TestUndoRedo(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	s.SetName("a")
	cid := s.AddField(formkit.End)
	s.RemoveField(cid)

	if !s.Undo() || len(s.Schema().Fields) != 2 {
		t.Fatalf("undo remove: %+v", s.Schema().Fields)
	}
	if !s.Undo() || len(s.Schema().Fields) != 1 {
		t.Fatalf("undo add")
	}
	if !s.Redo() || len(s.Schema().Fields) != 2 || s.Schema().Fields[1].ClientID != cid {
		t.Fatalf("redo add")
	}
	s.SetName("b")
	if s.CanRedo() {
		t.Fatalf("new change must clear redo")
	}
	e.settle()
	if got, _ := e.draft(t, draft.KeyNew); got.Name != "b" || len(got.Fields) != 2 {
		t.Fatalf("draft after undo/redo: %+v", got)
	}
}

func TestWithHistory_Limit(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts, session.WithHistory(2))
	s.SetName("1")
	s.SetName("2")
	s.SetName("3")
	if !s.Undo() || !s.Undo() || s.Undo() {
		t.Fatalf("history should hold exactly two steps")
	}
	if s.Schema().Name != "1" {
		t.Fatalf("name after undo: %q", s.Schema().Name)
	}
}

func TestSave_CreateDiscardsNewDraft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := session.New(e.drafts)
	cid := s.Schema().Fields[0].ClientID
	s.SetName(" stock ")
	s.PatchField(cid, formkit.Patch().Name(" qty ").Type(formkit.TypeNumber))
	e.settle()

	rf, err := s.Save(ctx, e.client)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rf.ID == "" || s.Schema().ID != rf.ID || s.Key() != draft.KeyFor(rf.ID) {
		t.Fatalf("session did not adopt id: %+v key=%s", rf, s.Key())
	}
	if _, ok := e.draft(t, draft.KeyNew); ok {
		t.Fatalf("new draft should be discarded after save")
	}
	stored, _ := e.srv.Form(rf.ID)
	if stored.Name != "stock" || stored.FieldsJSON[0].Name != "qty" {
		t.Fatalf("payload not normalized: %+v", stored)
	}
}

func TestSave_ValidationFailure(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	_, err := s.Save(context.Background(), e.client)
	iss, ok := formkit.AsIssues(err)
	if !ok || iss[0].Code != formkit.CodeEmptySchemaName {
		t.Fatalf("expected empty_schema_name first, got %v", err)
	}
	if e.srv.Requests() != 0 {
		t.Fatalf("invalid schema reached the store")
	}
}

func TestSave_RemoteFailureKeepsDraft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := session.New(e.drafts)
	s.SetName("stock")
	s.PatchField(s.Schema().Fields[0].ClientID, formkit.Patch().Name("qty"))
	e.settle()

	e.srv.FailNext(http.StatusInternalServerError)
	_, err := s.Save(ctx, e.client)
	var re *remote.Error
	if !errors.As(err, &re) || re.StatusCode != http.StatusInternalServerError {
		t.Fatalf("remote error should pass through untouched: %v", err)
	}
	if s.Schema().Published() {
		t.Fatalf("failed save must not assign an id")
	}
	if got, ok := e.draft(t, draft.KeyNew); !ok || got.Name != "stock" {
		t.Fatalf("draft lost after failed save")
	}
}

func TestOpen_DraftWinsOverRemote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rf, _ := e.client.CreateForm(ctx, formkit.PublishPayload{
		Name:   "remote name",
		Fields: []formkit.FieldPayload{{Name: "qty", Type: formkit.TypeNumber, Options: []string{}}},
	})
	snap := draft.Snapshot{Name: "local edits", Fields: []formkit.FieldDefinition{
		{ClientID: "dup", Name: "a", Type: formkit.TypeText, Order: 5},
		{ClientID: "dup", Name: "b", Type: "", Order: 9},
	}}
	e.drafts.ScheduleSave(draft.KeyFor(rf.ID), snap)
	e.settle()

	s, err := session.Open(ctx, e.client, rf.ID, e.drafts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sc := s.Schema()
	if !s.Restored() || sc.Name != "local edits" || sc.ID != rf.ID {
		t.Fatalf("draft did not win: %+v", sc)
	}
	if sc.Fields[0].ClientID == sc.Fields[1].ClientID || sc.Fields[1].Type != formkit.TypeText {
		t.Fatalf("fields not repaired: %+v", sc.Fields)
	}
	if !formkit.OrderDense(sc.Fields) {
		t.Fatalf("orders not renumbered")
	}
}

func TestOpen_NoDraftUsesRemote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rf, _ := e.client.CreateForm(ctx, formkit.PublishPayload{Name: "remote", Fields: []formkit.FieldPayload{}})
	s, err := session.Open(ctx, e.client, rf.ID, e.drafts)
	if err != nil || s.Restored() || s.Schema().Name != "remote" {
		t.Fatalf("open: %+v %v", s, err)
	}
	if _, err := session.Open(ctx, e.client, "404", e.drafts); remote.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("missing schema: %v", err)
	}
}

func TestOpen_NewRestoresNewDraft(t *testing.T) {
	e := newEnv(t)
	e.drafts.ScheduleSave(draft.KeyNew, draft.Snapshot{Name: "half done"})
	e.settle()
	s, err := session.Open(context.Background(), nil, "", e.drafts)
	if err != nil || s.Schema().Name != "half done" {
		t.Fatalf("open new: %v %+v", err, s.Schema())
	}
}

func TestSave_UpdateDiscardsIDDraft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rf, _ := e.client.CreateForm(ctx, formkit.PublishPayload{
		Name:   "stock",
		Fields: []formkit.FieldPayload{{Name: "qty", Type: formkit.TypeNumber, Options: []string{}}},
	})
	s, _ := session.Open(ctx, e.client, rf.ID, e.drafts)
	s.SetName("stock v2")
	e.settle()
	if _, ok := e.draft(t, draft.KeyFor(rf.ID)); !ok {
		t.Fatalf("expected id draft before save")
	}
	if _, err := s.Save(ctx, e.client); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := e.draft(t, draft.KeyFor(rf.ID)); ok {
		t.Fatalf("id draft should be discarded after update")
	}
	if got, _ := e.srv.Form(rf.ID); got.Name != "stock v2" {
		t.Fatalf("store not updated: %q", got.Name)
	}
}

func TestReset(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	s.SetName("x")
	s.AddField(formkit.End)
	e.settle()
	s.Reset(context.Background())
	if _, ok := e.draft(t, draft.KeyNew); ok {
		t.Fatalf("reset should discard the draft")
	}
	if sc := s.Schema(); sc.Name != "" || len(sc.Fields) != 1 || s.CanUndo() {
		t.Fatalf("reset state: %+v", sc)
	}
}

func TestClose_CancelsPending(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts)
	s.SetName("left behind")
	s.Close()
	e.settle()
	if _, ok := e.draft(t, draft.KeyNew); ok {
		t.Fatalf("closed session wrote a draft")
	}
	s.SetName("after close")
	if e.drafts.State(draft.KeyNew) != draft.Idle {
		t.Fatalf("closed session scheduled a draft")
	}
}

func TestClose_Flush(t *testing.T) {
	e := newEnv(t)
	s := session.New(e.drafts, session.WithFlushOnClose())
	s.SetName("kept")
	s.Close()
	if got, ok := e.draft(t, draft.KeyNew); !ok || got.Name != "kept" {
		t.Fatalf("flush on close: %+v %v", got, ok)
	}
}

func TestFromSchema_SaveCreates(t *testing.T) {
	e := newEnv(t)
	sc := formkit.Schema{Name: "from file", Fields: []formkit.FieldDefinition{
		{Name: "qty", Type: formkit.TypeNumber, Options: []string{}, Order: 3},
	}}
	s := session.FromSchema(sc, e.drafts)
	if f := s.Schema().Fields[0]; f.ClientID == "" || f.Order != 0 {
		t.Fatalf("fields not repaired: %+v", f)
	}
	rf, err := s.Save(context.Background(), e.client)
	if err != nil || rf.ID == "" {
		t.Fatalf("save: %+v %v", rf, err)
	}
}
