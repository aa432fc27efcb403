package provider

import (
	"slices"
	"strconv"

	"go.uber.org/zap"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/internal/observer"
)

// Provider manages a collection of fractals that share parameters. A key
// is shared unless it was marked exclusive; setting a shared key changes
// every fractal that accepts the value. Not safe for concurrent use.
type Provider struct {
	collection *Collection
	exclusive  map[string]bool
	table      *Table
	listeners  observer.Registry[*Provider]
	watches    map[ID]func()
}

// New creates an empty provider.
func New() *Provider {
	p := &Provider{
		collection: NewCollection(),
		exclusive:  make(map[string]bool),
		watches:    make(map[ID]func()),
	}
	p.collection.Subscribe(p.onCollectionEvent)
	return p
}

func (p *Provider) onCollectionEvent(e Event) {
	switch e.Type {
	case EventAdded:
		// Edits made directly on a fractal change its parameters too.
		p.watches[e.ID] = e.Fractal.Subscribe(func(*fractal.Fractal) { p.invalidate() })
	case EventRemoved:
		if cancel, ok := p.watches[e.ID]; ok {
			cancel()
			delete(p.watches, e.ID)
		}
	}
	Logger().Debug("collection changed",
		zap.Stringer("event", e.Type),
		zap.Uint32("id", uint32(e.ID)),
		zap.Int("fractals", p.collection.Len()))
	p.invalidate()
}

func (p *Provider) invalidate() {
	p.table = nil
}

func (p *Provider) changed() {
	p.invalidate()
	p.listeners.Notify(p)
}

// Subscribe registers fn to be called once after every change to the
// provider's fractals, their order or the set of exclusive keys.
func (p *Provider) Subscribe(fn func(*Provider)) (cancel func()) {
	return p.listeners.Subscribe(fn)
}

// Table returns the parameter table, rebuilding it if anything changed.
func (p *Provider) Table() *Table {
	if p.table == nil {
		p.table = BuildTable(p.collection, p.exclusive)
		Logger().Debug("parameter table rebuilt", zap.Int("entries", p.table.Len()))
	}
	return p.table
}

// EntryAt returns the table entry at position i.
func (p *Provider) EntryAt(i int) (Entry, bool) {
	return p.Table().At(i)
}

// Entry returns the table entry for key. The owner is only used for
// exclusive keys.
func (p *Provider) Entry(key string, owner ID) (Entry, bool) {
	return p.Table().Entry(key, owner)
}

// Parameter returns parameter key of fractal id.
func (p *Provider) Parameter(key string, id ID) (*fractal.Parameter, bool) {
	f, ok := p.collection.Get(id)
	if !ok {
		return nil, false
	}
	return f.Parameter(key)
}

// Fractal returns the fractal with the given ID.
func (p *Provider) Fractal(id ID) (*fractal.Fractal, bool) {
	return p.collection.Get(id)
}

// IDs returns the IDs of all fractals, head first.
func (p *Provider) IDs() []ID {
	return p.collection.IDs()
}

// Len returns the number of fractals.
func (p *Provider) Len() int {
	return p.collection.Len()
}

// Head returns the ID of the head fractal.
func (p *Provider) Head() (ID, bool) {
	return p.collection.Head()
}

// SetValue sets key to v, or resets it if v is nil. An exclusive key only
// changes the owner; a shared key changes every fractal that references it
// and accepts v, and owner is ignored. Fractals whose type for key rejects
// v are skipped. If any fractal fails to compile, none is changed and the
// error is returned.
func (p *Provider) SetValue(key string, owner ID, v any) (bool, error) {
	var targets []ID
	if p.exclusive[key] {
		if _, ok := p.collection.Get(owner); !ok {
			return false, notFound(owner)
		}
		targets = []ID{owner}
	} else {
		targets = p.collection.IDs()
	}

	type staged struct {
		fractal *fractal.Fractal
		stage   *fractal.Stage
	}
	var pending []staged
	for _, id := range targets {
		f, _ := p.collection.Get(id)
		s, err := f.Stage(key, v)
		if err != nil {
			Logger().Debug("set value rejected",
				zap.String("key", key),
				zap.Uint32("id", uint32(id)),
				zap.Error(err))
			return false, err
		}
		if s != nil {
			pending = append(pending, staged{f, s})
		}
	}
	if len(pending) == 0 {
		return false, nil
	}

	for _, s := range pending {
		s.fractal.Commit(s.stage)
	}
	p.changed()
	return true, nil
}

// AddFractal compiles data with implicit parameters and adds it.
func (p *Provider) AddFractal(data *fractal.Data) (ID, error) {
	f, err := fractal.FromData(data)
	if err != nil {
		return NoID, err
	}
	return p.AddDocument(f), nil
}

// AddDocument adds an already compiled fractal.
func (p *Provider) AddDocument(f *fractal.Fractal) ID {
	id := p.collection.Add(f)
	p.changed()
	return id
}

// RemoveFractal removes the fractal with the given ID.
func (p *Provider) RemoveFractal(id ID) error {
	if _, ok := p.collection.Remove(id); !ok {
		return notFound(id)
	}
	p.changed()
	return nil
}

// SetHead makes id the head fractal, whose declarations decide the table
// order first.
func (p *Provider) SetHead(id ID) error {
	if _, ok := p.collection.Get(id); !ok {
		return notFound(id)
	}
	if p.collection.SetHead(id) {
		p.changed()
	}
	return nil
}

// SetData replaces the data of fractal id as one history step.
func (p *Provider) SetData(id ID, data *fractal.Data) error {
	f, ok := p.collection.Get(id)
	if !ok {
		return notFound(id)
	}
	if err := f.SetData(data); err != nil {
		return err
	}
	p.changed()
	return nil
}

// HistoryBack moves fractal id one step back in its history.
func (p *Provider) HistoryBack(id ID) (bool, error) {
	return p.history(id, (*fractal.Fractal).HistoryBack)
}

// HistoryForward moves fractal id one step forward in its history.
func (p *Provider) HistoryForward(id ID) (bool, error) {
	return p.history(id, (*fractal.Fractal).HistoryForward)
}

func (p *Provider) history(id ID, move func(*fractal.Fractal) (bool, error)) (bool, error) {
	f, ok := p.collection.Get(id)
	if !ok {
		return false, notFound(id)
	}
	moved, err := move(f)
	if err != nil || !moved {
		return false, err
	}
	p.changed()
	return true, nil
}

// IsShared reports whether key is shared by all fractals.
func (p *Provider) IsShared(key string) bool {
	return !p.exclusive[key]
}

// AddExclusive makes key exclusive. It reports whether the set changed.
func (p *Provider) AddExclusive(key string) bool {
	if p.exclusive[key] {
		return false
	}
	p.exclusive[key] = true
	p.changed()
	return true
}

// RemoveExclusive makes key shared again. It reports whether the set
// changed.
func (p *Provider) RemoveExclusive(key string) bool {
	if !p.exclusive[key] {
		return false
	}
	delete(p.exclusive, key)
	p.changed()
	return true
}

// Exclusive returns the exclusive keys, sorted.
func (p *Provider) Exclusive() []string {
	keys := make([]string, 0, len(p.exclusive))
	for k := range p.exclusive {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func notFound(id ID) error {
	return fverrors.NotFound(fverrors.PhaseProvider, "fractal", strconv.FormatUint(uint64(id), 10))
}
