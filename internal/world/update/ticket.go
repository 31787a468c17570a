package update

import (
	"container/heap"
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

// Kind selects the handler a ticket is dispatched to.
type Kind uint8

const (
	KindWater Kind = iota + 1
	KindFalling
	KindSapling
	KindGrass
)

// Kinds lists every kind with a handler.
var Kinds = [...]Kind{KindWater, KindFalling, KindSapling, KindGrass}

func (k Kind) String() string {
	switch k {
	case KindWater:
		return "water"
	case KindFalling:
		return "falling"
	case KindSapling:
		return "sapling"
	case KindGrass:
		return "grass"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Priority orders tickets due on the same tick. Lower values run first.
type Priority int8

const (
	PriorityHigh   Priority = -1
	PriorityNormal Priority = 0
	PriorityLow    Priority = 1
)

// Status is the lifecycle state of a ticket.
type Status uint8

const (
	// StatusPending tickets wait in the queue.
	StatusPending Status = iota
	// StatusDue tickets are eligible for the next tick.
	StatusDue
	// StatusDispatched tickets are running their handler.
	StatusDispatched
	StatusCompleted
	// StatusDiscarded tickets were dropped: stale generation, unloaded chunk
	// or a failed handler.
	StatusDiscarded
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDue:
		return "due"
	case StatusDispatched:
		return "dispatched"
	case StatusCompleted:
		return "completed"
	case StatusDiscarded:
		return "discarded"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Request asks for a block update after Delay ticks.
type Request struct {
	Pos      chunk.BlockPos
	Kind     Kind
	Delay    int64
	Priority Priority
	Meta     uint32
}

// Ticket is a scheduled block update. It is held by value and refers to its
// chunk only through the generation counter captured when it was scheduled.
type Ticket struct {
	Pos        chunk.BlockPos
	Kind       Kind
	Delay      int64
	Priority   Priority
	Meta       uint32
	Generation uint64
	// Due is the absolute tick the ticket becomes eligible for dispatch.
	Due int64
	// Seq is the insertion order, used to break ties.
	Seq uint64
	// Status is StatusPending while queued. Pending and Report.Tickets
	// report the later states.
	Status Status
}

// less reports whether t is dispatched before o.
func (t Ticket) less(o Ticket) bool {
	if t.Due != o.Due {
		return t.Due < o.Due
	}
	if t.Priority != o.Priority {
		return t.Priority < o.Priority
	}
	return t.Seq < o.Seq
}

type ticketKey struct {
	pos  chunk.BlockPos
	kind Kind
}

// ticketHeap is a min-heap of tickets ordered by (Due, Priority, Seq).
type ticketHeap []Ticket

func (h ticketHeap) Len() int           { return len(h) }
func (h ticketHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h ticketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *ticketHeap) Push(x any)        { *h = append(*h, x.(Ticket)) }
func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// queue holds pending tickets. A ticket for (pos, kind) is only added when
// no ticket for the same pair is already pending at the same or a later tick.
type queue struct {
	tickets  ticketHeap
	furthest map[ticketKey]int64
	seq      uint64
}

func newQueue() *queue {
	return &queue{furthest: make(map[ticketKey]int64)}
}

func (q *queue) push(t Ticket) (Ticket, bool) {
	key := ticketKey{pos: t.Pos, kind: t.Kind}
	if due, ok := q.furthest[key]; ok && due >= t.Due {
		return Ticket{}, false
	}
	q.furthest[key] = t.Due
	q.seq++
	t.Seq = q.seq
	t.Status = StatusPending
	heap.Push(&q.tickets, t)
	return t, true
}

// popDue removes and returns up to limit tickets due at or before tick, in
// dispatch order. The second value is the number of due tickets left behind.
func (q *queue) popDue(tick int64, limit int) ([]Ticket, int) {
	var out []Ticket
	for len(q.tickets) > 0 && q.tickets[0].Due <= tick && len(out) < limit {
		t := heap.Pop(&q.tickets).(Ticket)
		key := ticketKey{pos: t.Pos, kind: t.Kind}
		if q.furthest[key] <= t.Due {
			delete(q.furthest, key)
		}
		out = append(out, t)
	}
	deferred := 0
	for _, t := range q.tickets {
		if t.Due <= tick {
			deferred++
		}
	}
	return out, deferred
}

func (q *queue) len() int { return len(q.tickets) }

// pending returns a copy of the queued tickets in dispatch order.
func (q *queue) pending() []Ticket {
	h := make(ticketHeap, len(q.tickets))
	copy(h, q.tickets)
	out := make([]Ticket, 0, len(h))
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(Ticket))
	}
	return out
}
