package provider

import (
	"slices"

	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/internal/observer"
)

// ID identifies a fractal in a Collection. IDs start at 1 and are never
// reused; 0 is never a valid ID.
type ID uint32

// NoID is the zero ID. Shared operations accept it as the owner.
const NoID ID = 0

// EventType identifies a collection change.
type EventType uint8

const (
	EventAdded EventType = iota
	EventRemoved
	EventHeadChanged
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventHeadChanged:
		return "head_changed"
	}
	return "unknown"
}

// Event describes a change to a Collection.
type Event struct {
	Fractal *fractal.Fractal
	ID      ID
	Type    EventType
}

// Collection owns fractals under stable IDs. One of them is the head; it
// comes first in IDs, followed by the others in the order they were added.
// Without an explicit head the oldest fractal is the head.
type Collection struct {
	entries []entry
	order   []ID
	events  observer.Registry[Event]
	head    ID
	live    int
}

type entry struct {
	fractal *fractal.Fractal
	valid   bool
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		entries: make([]entry, 0, 16),
		order:   make([]ID, 0, 16),
	}
}

// Add appends f and returns its ID.
func (c *Collection) Add(f *fractal.Fractal) ID {
	c.entries = append(c.entries, entry{fractal: f, valid: true})
	id := ID(len(c.entries))
	c.order = append(c.order, id)
	c.live++

	c.events.Notify(Event{Type: EventAdded, ID: id, Fractal: f})
	return id
}

// Get returns the fractal with the given ID.
func (c *Collection) Get(id ID) (*fractal.Fractal, bool) {
	if id == NoID || int(id) > len(c.entries) {
		return nil, false
	}
	e := c.entries[id-1]
	if !e.valid {
		return nil, false
	}
	return e.fractal, true
}

// Remove drops the fractal and returns it. Its ID is not reused.
func (c *Collection) Remove(id ID) (*fractal.Fractal, bool) {
	f, ok := c.Get(id)
	if !ok {
		return nil, false
	}

	c.entries[id-1] = entry{}
	c.order = slices.DeleteFunc(c.order, func(o ID) bool { return o == id })
	c.live--
	if c.head == id {
		c.head = NoID
	}

	c.events.Notify(Event{Type: EventRemoved, ID: id, Fractal: f})
	return f, true
}

// SetHead makes id the head. It reports whether the head changed.
func (c *Collection) SetHead(id ID) bool {
	f, ok := c.Get(id)
	if !ok {
		return false
	}
	if cur, _ := c.Head(); cur == id {
		return false
	}

	c.head = id
	c.events.Notify(Event{Type: EventHeadChanged, ID: id, Fractal: f})
	return true
}

// Head returns the ID of the head fractal.
func (c *Collection) Head() (ID, bool) {
	if c.head != NoID {
		return c.head, true
	}
	if len(c.order) == 0 {
		return NoID, false
	}
	return c.order[0], true
}

// IDs returns all IDs, head first, the rest in the order they were added.
func (c *Collection) IDs() []ID {
	head, ok := c.Head()
	if !ok {
		return nil
	}
	ids := make([]ID, 0, len(c.order))
	ids = append(ids, head)
	for _, id := range c.order {
		if id != head {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of fractals.
func (c *Collection) Len() int {
	return c.live
}

// Subscribe registers fn for collection events.
func (c *Collection) Subscribe(fn func(Event)) (cancel func()) {
	return c.events.Subscribe(fn)
}
