package provider

import (
	"strings"
	"testing"
)

func collectionOf(t *testing.T, sources ...string) (*Collection, []ID) {
	t.Helper()
	c := NewCollection()
	ids := make([]ID, len(sources))
	for i, src := range sources {
		ids[i] = c.Add(mustFractal(t, src))
	}
	return c, ids
}

func exclusiveSet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func TestBuildTable_Order(t *testing.T) {
	tests := []struct {
		name      string
		sources   []string
		exclusive []string
		want      string
	}{
		{
			name: "merged_declarations",
			sources: []string{
				`extern a expr = "0"; extern c expr = "0"; var x = a + b + c`,
				`extern a expr = "0"; extern b expr = "0"; extern c expr = "0"; extern d expr = "0"; var x = a + b + c + d`,
			},
			want: "Source Scale a b c d",
		},
		{
			name: "exclusive_b",
			sources: []string{
				`extern a expr = "0"; extern c expr = "0"; var x = a + b + c`,
				`extern a expr = "0"; extern b expr = "0"; extern c expr = "0"; extern d expr = "0"; var x = a + b + c + d`,
			},
			exclusive: []string{"b"},
			want:      "Source Scale a b b c d",
		},
		{
			name:    "implicit_child_follows_parent",
			sources: []string{`extern a expr = "q"; extern b int = 0; var x = b + a;`},
			want:    "Source Scale a q b",
		},
		{
			name:    "unreferenced_declaration_skipped",
			sources: []string{"extern a int = 0; extern b int = 1; var x = a;"},
			want:    "Source Scale a",
		},
		{
			name: "exclusive_source",
			sources: []string{
				"var a = 1;",
				"var a = 1;",
			},
			exclusive: []string{"Source"},
			want:      "Source Source Scale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := collectionOf(t, tt.sources...)
			table := BuildTable(c, exclusiveSet(tt.exclusive...))

			got := strings.Join(table.Keys(), " ")
			if got != tt.want {
				t.Errorf("keys = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTable_IndividualParameters(t *testing.T) {
	src := "extern a int = 0; extern b int = 1; var c = a + b"
	c, ids := collectionOf(t, src, src)
	table := BuildTable(c, exclusiveSet("b"))

	if table.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", table.Len())
	}

	want := []struct {
		key   string
		owner ID
	}{
		{"Source", ids[0]},
		{"Scale", ids[0]},
		{"a", ids[0]},
		{"b", ids[0]},
		{"b", ids[1]},
	}
	for i, w := range want {
		e, ok := table.At(i)
		if !ok || e.Key != w.key || e.Owner != w.owner {
			t.Errorf("entry %d = %s/%d, want %s/%d", i, e.Key, e.Owner, w.key, w.owner)
		}
	}

	e, ok := table.Entry("b", ids[1])
	if !ok || e.Owner != ids[1] || e.Parameter.Value != 1 {
		t.Errorf("Entry(b, %d) = %+v, %v", ids[1], e, ok)
	}
	if e, ok := table.Entry("a", NoID); !ok || e.Key != "a" {
		t.Error("shared entry should ignore the owner")
	}
	if _, ok := table.Entry("b", NoID); ok {
		t.Error("exclusive entry needs its owner")
	}
	if _, ok := table.At(5); ok {
		t.Error("At past the end should fail")
	}
}

func TestBuildTable_HeadFirst(t *testing.T) {
	c, ids := collectionOf(t,
		`extern a expr = "0"; extern b expr = "0"; var d = a + b`,
		`extern b expr = "0"; extern a expr = "0"; var d = a + b`,
	)

	c.SetHead(ids[1])
	table := BuildTable(c, nil)
	if got := strings.Join(table.Keys(), " "); got != "Source Scale b a" {
		t.Fatalf("keys = %q", got)
	}
	if e, _ := table.At(3); e.Owner != ids[1] {
		t.Errorf("owner of a = %d, want %d", e.Owner, ids[1])
	}

	c.SetHead(ids[0])
	table = BuildTable(c, nil)
	if got := strings.Join(table.Keys(), " "); got != "Source Scale a b" {
		t.Fatalf("keys = %q", got)
	}
}

func TestBuildTable_Empty(t *testing.T) {
	table := BuildTable(NewCollection(), nil)
	if table.Len() != 0 {
		t.Fatalf("Len() = %d", table.Len())
	}
}

func TestMoveRange(t *testing.T) {
	tests := []struct {
		in              string
		start, end, pos int
		want            string
	}{
		{"abcde", 2, 4, 1, "acdbe"},
		{"abcde", 2, 4, 2, "abcde"},
		{"abcde", 4, 5, 0, "eabcd"},
		{"abcde", 1, 5, 0, "bcdea"},
	}

	for _, tt := range tests {
		list := make([]Entry, len(tt.in))
		for i, r := range tt.in {
			list[i] = Entry{Key: string(r)}
		}
		moveRange(list, tt.start, tt.end, tt.pos)

		var b strings.Builder
		for _, e := range list {
			b.WriteString(e.Key)
		}
		if b.String() != tt.want {
			t.Errorf("moveRange(%s, %d, %d, %d) = %s, want %s",
				tt.in, tt.start, tt.end, tt.pos, b.String(), tt.want)
		}
	}
}
