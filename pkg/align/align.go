// Package align implements named alignment slots that make otherwise
// independent bricks share a converse column.
//
// There are three kinds:
//
//   - Absolute: a fixed column.
//   - Relative: a fixed offset from another alignment's column (or from
//     zero when there is no base).
//   - Consensus: the maximum extent required by the current participants.
//
// Participants register with the extent they would occupy if unaligned
// (their "minimum converse"). Consensus recomputes from the full current
// set on every change, never from deltas, so the value is the same no
// matter in which order a batch of siblings updates. When the resolved
// value changes every participant is told to realign, not only the one
// that triggered the change.
package align

import (
	"fmt"

	"github.com/matzehuels/mortar/pkg/errors"
)

// Kind identifies how an alignment resolves its column.
type Kind int

const (
	Absolute Kind = iota
	Relative
	Consensus
)

func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	case Consensus:
		return "consensus"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Participant is notified when the column it is aligned to moves.
type Participant interface {
	Realign()
}

// Alignment is a named column shared by its participants.
type Alignment struct {
	name   string
	kind   Kind
	column int // absolute column or relative offset
	base   *Alignment

	order     []Participant
	extents   map[Participant]int
	followers []Participant
	value     int

	// relative alignments based on this one
	dependents []*Alignment
}

// NewAbsolute returns an alignment fixed at column.
func NewAbsolute(name string, column int) *Alignment {
	return &Alignment{name: name, kind: Absolute, column: column, value: column, extents: map[Participant]int{}}
}

// NewRelative returns an alignment offset from base. A nil base is
// treated as column zero.
func NewRelative(name string, base *Alignment, offset int) *Alignment {
	a := &Alignment{name: name, kind: Relative, column: offset, base: base, extents: map[Participant]int{}}
	if base != nil {
		base.dependents = append(base.dependents, a)
	}
	a.value = a.resolve()
	return a
}

// NewConsensus returns an alignment resolved from its participants.
func NewConsensus(name string) *Alignment {
	return &Alignment{name: name, kind: Consensus, extents: map[Participant]int{}}
}

// Name returns the alignment's name.
func (a *Alignment) Name() string { return a.name }

// Kind returns the alignment's kind.
func (a *Alignment) Kind() Kind { return a.kind }

// Value returns the resolved column.
func (a *Alignment) Value() int { return a.value }

// Resolved reports whether the alignment has a value. Consensus slots have
// no value while they have no participants.
func (a *Alignment) Resolved() bool {
	return a.kind != Consensus || len(a.order) > 0
}

// Len returns the number of registered participants.
func (a *Alignment) Len() int { return len(a.order) }

// Registered reports whether p is a participant.
func (a *Alignment) Registered(p Participant) bool {
	_, ok := a.extents[p]
	return ok
}

// Register adds p with the extent it needs and returns the resolved
// column. If the column moves, every other participant is realigned.
// Registering an existing participant updates its extent.
func (a *Alignment) Register(p Participant, extent int) int {
	if _, ok := a.extents[p]; !ok {
		a.order = append(a.order, p)
	}
	a.extents[p] = extent
	a.recompute(p)
	return a.value
}

// Update changes p's required extent and returns the resolved column.
// Updating an unregistered participant panics.
func (a *Alignment) Update(p Participant, extent int) int {
	old, ok := a.extents[p]
	if !ok {
		errors.Violation("update of unregistered participant in alignment %q", a.name)
	}
	if old == extent {
		return a.value
	}
	a.extents[p] = extent
	a.recompute(p)
	return a.value
}

// Unregister removes p. Removing the last consensus participant resets the
// slot. Unregistering a participant that was never registered panics.
func (a *Alignment) Unregister(p Participant) {
	if _, ok := a.extents[p]; !ok {
		errors.Violation("unregister of unknown participant in alignment %q", a.name)
	}
	delete(a.extents, p)
	for i, o := range a.order {
		if o == p {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.recompute(nil)
}

// Follow subscribes p to column changes without counting its extent.
// Bricks that share a course with an earlier participant of the same
// alignment follow instead of participating, which keeps one line from
// pushing its own column outward indefinitely.
func (a *Alignment) Follow(p Participant) {
	for _, f := range a.followers {
		if f == p {
			return
		}
	}
	a.followers = append(a.followers, p)
}

// Unfollow removes p from the followers. Unknown followers are ignored.
func (a *Alignment) Unfollow(p Participant) {
	for i, f := range a.followers {
		if f == p {
			a.followers = append(a.followers[:i], a.followers[i+1:]...)
			return
		}
	}
}

// Detach disconnects a relative alignment from its base. Scopes call it
// when the atom defining the alignment leaves the tree.
func (a *Alignment) Detach() {
	if a.base == nil {
		return
	}
	deps := a.base.dependents
	for i, d := range deps {
		if d == a {
			a.base.dependents = append(deps[:i], deps[i+1:]...)
			break
		}
	}
	a.base = nil
}

func (a *Alignment) resolve() int {
	switch a.kind {
	case Absolute:
		return a.column
	case Relative:
		if a.base == nil {
			return a.column
		}
		return a.base.value + a.column
	}
	value := 0
	for _, p := range a.order {
		value = max(value, a.extents[p])
	}
	return value
}

// recompute refreshes the value and notifies participants other than
// skip, which already has the value from its own call.
func (a *Alignment) recompute(skip Participant) {
	value := a.resolve()
	if value == a.value {
		return
	}
	a.value = value
	a.notify(skip)
	for _, d := range a.dependents {
		d.recompute(nil)
	}
}

func (a *Alignment) notify(skip Participant) {
	// Realign may unregister participants, so iterate over a copy.
	order := append([]Participant(nil), a.order...)
	order = append(order, a.followers...)
	for _, p := range order {
		if p != skip {
			p.Realign()
		}
	}
}

func (a *Alignment) String() string {
	return fmt.Sprintf("%s %s=%d (%d participants)", a.kind, a.name, a.value, len(a.order))
}
