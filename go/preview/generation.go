package preview

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrSuperseded is returned when a newer request began before this one
// could commit its result.
var ErrSuperseded = errors.New("preview: superseded by a newer request")

// Generations hands out tickets; only the most recent ticket is current.
// Use one per independent request stream (a UI session, say).
type Generations struct {
	n atomic.Uint64
}

// Begin starts a new request, superseding every earlier ticket.
func (g *Generations) Begin() *Ticket {
	return &Ticket{g: g, gen: g.n.Add(1)}
}

type Ticket struct {
	g   *Generations
	gen uint64
}

// Current reports whether no newer ticket has been issued. A nil ticket is
// always current.
func (t *Ticket) Current() bool {
	return t == nil || t.g.n.Load() == t.gen
}

func (t *Ticket) check() error {
	if !t.Current() {
		return ErrSuperseded
	}
	return nil
}
