package formkit_test

import (
	"math/rand/v2"
	"reflect"
	"testing"

	formkit "github.com/reoring/formkit"
)

func threeFields() []formkit.FieldDefinition {
	var fs []formkit.FieldDefinition
	for _, cid := range []string{"a", "b", "c"} {
		fs = formkit.InsertField(fs, formkit.End, formkit.NewFieldWithID(cid))
	}
	return fs
}

func cids(fs []formkit.FieldDefinition) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.ClientID
	}
	return out
}

func TestNewField_Defaults(t *testing.T) {
	f := formkit.NewField()
	if f.ClientID == "" {
		t.Fatalf("expected generated client id")
	}
	if f.Name != "" || f.Type != formkit.TypeText || f.Required || f.Options == nil || len(f.Options) != 0 {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if g := formkit.NewField(); g.ClientID == f.ClientID {
		t.Fatalf("client ids must not repeat")
	}
}

func TestAddField_AppendAndInsertAfter(t *testing.T) {
	fs := threeFields()
	if got := cids(fs); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("append order: %v", got)
	}

	mid := formkit.InsertField(fs, 0, formkit.NewFieldWithID("x"))
	if got := cids(mid); !reflect.DeepEqual(got, []string{"a", "x", "b", "c"}) {
		t.Fatalf("insert after 0: %v", got)
	}
	if !formkit.OrderDense(mid) {
		t.Fatalf("orders not dense: %+v", mid)
	}
	// input untouched
	if len(fs) != 3 || fs[1].ClientID != "b" || fs[1].Order != 1 {
		t.Fatalf("input mutated: %+v", fs)
	}

	past := formkit.AddField(fs, 10)
	if len(past) != 4 || past[3].Order != 3 || past[3].ClientID == "" {
		t.Fatalf("position past end must append: %+v", past)
	}
}

func TestPatchField(t *testing.T) {
	fs := threeFields()
	got := formkit.PatchField(fs, "b", formkit.Patch().Name("color").Type(formkit.TypeSelect).Options("red", "blue").Required(true))
	b := got[1]
	if b.Name != "color" || b.Type != formkit.TypeSelect || !b.Required || !reflect.DeepEqual(b.Options, []string{"red", "blue"}) {
		t.Fatalf("patch not applied: %+v", b)
	}
	if b.ClientID != "b" || b.Order != 1 {
		t.Fatalf("patch must not alter identity or order: %+v", b)
	}
	if fs[1].Name != "" {
		t.Fatalf("input mutated: %+v", fs[1])
	}

	// type change away from select keeps options at the model layer
	back := formkit.PatchField(got, "b", formkit.Patch().Type(formkit.TypeText))
	if !reflect.DeepEqual(back[1].Options, []string{"red", "blue"}) {
		t.Fatalf("options should be kept: %+v", back[1])
	}
}

func TestPatchField_UnknownIDIsNoop(t *testing.T) {
	fs := threeFields()
	got := formkit.PatchField(fs, "zzz", formkit.Patch().Name("x"))
	if &got[0] != &fs[0] {
		t.Fatalf("expected the input slice back")
	}
}

func TestRemoveField_Renumbers(t *testing.T) {
	fs := threeFields()
	got := formkit.RemoveField(fs, "a")
	if !reflect.DeepEqual(cids(got), []string{"b", "c"}) || !formkit.OrderDense(got) {
		t.Fatalf("unexpected result: %+v", got)
	}
	if same := formkit.RemoveField(fs, "nope"); &same[0] != &fs[0] {
		t.Fatalf("unknown id should return input")
	}
}

func TestMoveField(t *testing.T) {
	fs := threeFields()

	down := formkit.MoveField(fs, "a", formkit.Down)
	if !reflect.DeepEqual(cids(down), []string{"b", "a", "c"}) || !formkit.OrderDense(down) {
		t.Fatalf("move down: %+v", down)
	}
	if !down[2].Equal(fs[2]) {
		t.Fatalf("untouched entry changed: %+v", down[2])
	}

	up := formkit.MoveField(fs, "c", formkit.Up)
	if !reflect.DeepEqual(cids(up), []string{"a", "c", "b"}) {
		t.Fatalf("move up: %+v", up)
	}
}

func TestMoveField_BoundariesAreNoop(t *testing.T) {
	fs := threeFields()
	cases := []struct {
		name string
		cid  string
		dir  formkit.Direction
	}{
		{"first up", "a", formkit.Up},
		{"last down", "c", formkit.Down},
		{"unknown", "q", formkit.Down},
		{"bad direction", "b", formkit.Direction(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formkit.MoveField(fs, tc.cid, tc.dir)
			if len(got) != len(fs) || &got[0] != &fs[0] {
				t.Fatalf("expected no-op, got %+v", got)
			}
		})
	}
}

func TestMutations_KeepOrderDense(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	var fs []formkit.FieldDefinition
	for step := 0; step < 2000; step++ {
		switch op := r.IntN(4); {
		case op == 0 || len(fs) == 0:
			fs = formkit.AddField(fs, r.IntN(len(fs)+2)-1)
		case op == 1:
			fs = formkit.RemoveField(fs, fs[r.IntN(len(fs))].ClientID)
		case op == 2:
			fs = formkit.MoveField(fs, fs[r.IntN(len(fs))].ClientID, formkit.Up)
		default:
			fs = formkit.MoveField(fs, fs[r.IntN(len(fs))].ClientID, formkit.Down)
		}
		if !formkit.OrderDense(fs) {
			t.Fatalf("step %d: orders not dense: %+v", step, fs)
		}
	}
}
