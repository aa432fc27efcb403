package provider

import (
	"slices"

	"github.com/wippyai/fractview/fractal"
)

// Entry is one row of a Table. For a shared key Owner is the first fractal
// that references it.
type Entry struct {
	Parameter *fractal.Parameter
	Key       string
	Owner     ID
}

// Table lists the parameters of all fractals in a collection. Shared keys
// appear once; exclusive keys appear once per fractal that references them.
type Table struct {
	entries   []Entry
	shared    map[string]int
	exclusive map[ownedKey]int
}

type ownedKey struct {
	key   string
	owner ID
}

// BuildTable orders the parameters of every fractal in c. Keys follow the
// merged declaration order of all fractals, head first; parameters that are
// not declared anywhere stay behind the declared parameter they follow.
func BuildTable(c *Collection, exclusive map[string]bool) *Table {
	ids := c.IDs()
	fractals := make([]*fractal.Fractal, len(ids))
	for i, id := range ids {
		fractals[i], _ = c.Get(id)
	}

	keys := keyOrder(fractals)
	canonical := make(map[string]bool, len(keys))
	for _, k := range keys {
		canonical[k] = true
	}

	var entries []Entry
	for i, f := range fractals {
		for _, p := range f.Parameters() {
			entries = append(entries, Entry{Key: p.ID, Owner: ids[i], Parameter: p})
		}
	}

	pos := 0
	for _, key := range keys {
		for _, id := range ids {
			start := pos
			for start < len(entries) && (entries[start].Key != key || entries[start].Owner != id) {
				start++
			}
			if start == len(entries) {
				continue
			}

			end := start + 1
			for end < len(entries) && !canonical[entries[end].Key] {
				end++
			}

			moveRange(entries, start, end, pos)
			pos += end - start
		}
	}

	return group(entries, exclusive)
}

// keyOrder merges the declaration lists of all fractals. Keys a later
// fractal declares before a known key are inserted ahead of it; the rest
// are appended.
func keyOrder(fractals []*fractal.Fractal) []string {
	keys := []string{fractal.SourceKey, fractal.ScaleKey}

	var pending []string
	for _, f := range fractals {
		for _, decl := range f.Externs() {
			if pos := slices.Index(keys, decl.ID); pos >= 0 {
				keys = slices.Insert(keys, pos, pending...)
				pending = pending[:0]
			} else {
				pending = append(pending, decl.ID)
			}
		}
		keys = append(keys, pending...)
		pending = pending[:0]
	}

	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// moveRange moves list[start:end] to pos, shifting list[pos:start] behind
// it. pos must not be greater than start.
//
// [a b c d e], start 2, end 4, pos 1 -> [a c d b e]
func moveRange(list []Entry, start, end, pos int) {
	if start == pos {
		return
	}
	reverse(list[pos:end])
	reverse(list[pos : pos+end-start])
	reverse(list[pos+end-start : end])
}

func reverse(s []Entry) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}

// group keeps the first entry of every shared key and every entry of an
// exclusive key.
func group(entries []Entry, exclusive map[string]bool) *Table {
	t := &Table{
		shared:    make(map[string]int),
		exclusive: make(map[ownedKey]int),
	}

	for _, e := range entries {
		if _, ok := t.shared[e.Key]; ok {
			continue
		}
		if exclusive[e.Key] {
			t.exclusive[ownedKey{e.Key, e.Owner}] = len(t.entries)
		} else {
			t.shared[e.Key] = len(t.entries)
		}
		t.entries = append(t.entries, e)
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// At returns the entry at position i.
func (t *Table) At(i int) (Entry, bool) {
	if i < 0 || i >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entry returns the entry for key. The owner is only used for exclusive
// keys.
func (t *Table) Entry(key string, owner ID) (Entry, bool) {
	if i, ok := t.shared[key]; ok {
		return t.entries[i], true
	}
	if i, ok := t.exclusive[ownedKey{key, owner}]; ok {
		return t.entries[i], true
	}
	return Entry{}, false
}

// Entries returns a copy of all entries in order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Keys returns the key of every entry in order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Key
	}
	return out
}
