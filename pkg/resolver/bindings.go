package resolver

import "lox/interpreter-go/pkg/ast"

const global = -1

// Bindings maps the slot of every variable-use node in one program to the
// number of frames between the use and its declaring frame. Uses without an
// entry are globals. The table is read-only once resolution finishes.
type Bindings struct {
	distances []int
}

// NewBindings creates a table sized for a program with the given slot count.
func NewBindings(slots int) *Bindings {
	if slots < 0 {
		slots = 0
	}
	distances := make([]int, slots)
	for i := range distances {
		distances[i] = global
	}
	return &Bindings{distances: distances}
}

// Lookup returns the recorded distance for slot, or false for a global use.
func (b *Bindings) Lookup(slot int) (int, bool) {
	if b == nil || slot < 0 || slot >= len(b.distances) {
		return 0, false
	}
	d := b.distances[slot]
	if d == global {
		return 0, false
	}
	return d, true
}

// Len reports how many slots the table covers.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.distances)
}

// Locals reports how many uses resolved to a local frame.
func (b *Bindings) Locals() int {
	if b == nil {
		return 0
	}
	count := 0
	for _, d := range b.distances {
		if d != global {
			count++
		}
	}
	return count
}

func (b *Bindings) record(slot, distance int) {
	if slot == ast.Unresolved {
		return
	}
	for slot >= len(b.distances) {
		b.distances = append(b.distances, global)
	}
	b.distances[slot] = distance
}
