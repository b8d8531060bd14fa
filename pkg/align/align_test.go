package align

import (
	"testing"

	"github.com/matzehuels/mortar/pkg/errors"
)

type member struct {
	name     string
	realigns int
}

func (p *member) Realign() { p.realigns++ }

func TestConsensus(t *testing.T) {
	a := NewConsensus("c")
	p5, p8, p3 := &member{name: "5"}, &member{name: "8"}, &member{name: "3"}

	a.Register(p5, 5)
	a.Register(p8, 8)
	if got := a.Register(p3, 3); got != 8 {
		t.Errorf("Register() = %d, want 8", got)
	}
	if a.Value() != 8 {
		t.Errorf("Value() = %d, want 8", a.Value())
	}

	a.Unregister(p8)
	if a.Value() != 5 {
		t.Errorf("Value() after removing 8 = %d, want 5", a.Value())
	}
	if p5.realigns == 0 || p3.realigns == 0 {
		t.Errorf("realigns = %d, %d, want every participant realigned", p5.realigns, p3.realigns)
	}

	a.Unregister(p5)
	a.Unregister(p3)
	if a.Resolved() {
		t.Error("Resolved() = true after removing all participants")
	}
	if a.Value() != 0 {
		t.Errorf("Value() = %d, want 0", a.Value())
	}
}

func TestConsensusUpdate(t *testing.T) {
	tests := []struct {
		name    string
		extents []int
		update  int
		want    int
	}{
		{"grow past max", []int{5, 8}, 12, 12},
		{"shrink max", []int{8, 5}, 2, 5},
		{"unchanged", []int{5, 8}, 6, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewConsensus("c")
			ps := make([]*member, len(tt.extents))
			for i, e := range tt.extents {
				ps[i] = &member{}
				a.Register(ps[i], e)
			}
			if got := a.Update(ps[0], tt.update); got != tt.want {
				t.Errorf("Update() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsensusNotifiesOnlyOnChange(t *testing.T) {
	a := NewConsensus("c")
	p, q := &member{}, &member{}
	a.Register(p, 10)
	a.Register(q, 4)
	before := p.realigns
	a.Update(q, 6)
	if p.realigns != before {
		t.Errorf("realigns = %d, want %d (value did not change)", p.realigns, before)
	}

	f := &member{}
	a.Follow(f)
	a.Update(q, 20)
	if f.realigns != 1 {
		t.Errorf("follower realigns = %d, want 1", f.realigns)
	}
	if q.realigns != 0 {
		t.Errorf("updater realigns = %d, want 0", q.realigns)
	}
	a.Unfollow(f)
	a.Update(q, 30)
	if f.realigns != 1 {
		t.Errorf("follower realigns after Unfollow = %d, want 1", f.realigns)
	}
}

func TestRelativeCascade(t *testing.T) {
	base := NewConsensus("c")
	rel := NewRelative("r", base, 3)
	if rel.Value() != 3 {
		t.Errorf("Value() = %d, want 3", rel.Value())
	}

	user := &member{}
	rel.Register(user, 0)
	base.Register(&member{}, 10)

	if rel.Value() != 13 {
		t.Errorf("Value() = %d, want 13", rel.Value())
	}
	if user.realigns != 1 {
		t.Errorf("realigns = %d, want 1", user.realigns)
	}
}

func TestScope(t *testing.T) {
	root := NewScope(nil,
		Def{Name: "absolute", Kind: Absolute, Column: 7},
		Def{Name: "relative", Kind: Relative, Column: 3},
		Def{Name: "c", Kind: Consensus},
	)
	inner := NewScope(root, Def{Name: "relative", Kind: Relative, Column: 3})

	tests := []struct {
		scope *Scope
		name  string
		want  int
	}{
		{root, "absolute", 7},
		{root, "relative", 3},
		{inner, "absolute", 7},
		{inner, "relative", 6},
	}
	for _, tt := range tests {
		a := tt.scope.Lookup(tt.name)
		if a == nil {
			t.Fatalf("Lookup(%q) = nil", tt.name)
		}
		if a.Value() != tt.want {
			t.Errorf("Lookup(%q).Value() = %d, want %d", tt.name, a.Value(), tt.want)
		}
	}
	if inner.Lookup("missing") != nil {
		t.Error("Lookup(missing) != nil")
	}
	if got := root.Names(); len(got) != 3 || got[0] != "absolute" {
		t.Errorf("Names() = %v", got)
	}

	inner.Close()
	if len(root.Lookup("relative").dependents) != 0 {
		t.Error("Close() left relative dependents attached")
	}
}

func TestUnregisterUnknownPanics(t *testing.T) {
	var err error
	func() {
		defer errors.Recover(&err)
		NewConsensus("c").Unregister(&member{})
	}()
	if !errors.Is(err, errors.ErrCodeContract) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeContract)
	}
}
