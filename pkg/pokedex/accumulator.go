package pokedex

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Variants
const (
	VariantFlat    = "flat"
	VariantGrouped = "grouped"
)

// Accumulator collects records for one pipeline variant. It is not safe for
// concurrent use; only the orchestrator goroutine touches it.
type Accumulator interface {
	Variant() string
	// Add merges r and reports false when its id was already present
	Add(r Record) bool
	Has(id int) bool
	// Len counts records, including forms
	Len() int
	// State is the value persisted under "pokedex" in a checkpoint
	State() interface{}
	// Restore replaces the contents with a previously persisted State
	Restore(raw json.RawMessage) error
	// Document is the value written to the final output file
	Document() interface{}
}

// New returns an empty accumulator for variant
func New(variant string) (Accumulator, error) {
	switch variant {
	case VariantFlat, "":
		return NewFlat(), nil
	case VariantGrouped:
		return NewGrouped(), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", variant)
	}
}

// Flat keeps records in completion order and writes them sorted by id
type Flat struct {
	records []Record
	ids     map[int]struct{}
}

func NewFlat() *Flat {
	return &Flat{records: []Record{}, ids: make(map[int]struct{})}
}

func (f *Flat) Variant() string { return VariantFlat }

func (f *Flat) Add(r Record) bool {
	if f.Has(r.ID) {
		return false
	}
	f.ids[r.ID] = struct{}{}
	f.records = append(f.records, r)
	return true
}

func (f *Flat) Has(id int) bool {
	_, ok := f.ids[id]
	return ok
}

func (f *Flat) Len() int { return len(f.records) }

func (f *Flat) State() interface{} { return f.records }

func (f *Flat) Restore(raw json.RawMessage) error {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("decode flat pokedex: %w", err)
	}
	*f = *NewFlat()
	for _, r := range records {
		f.Add(r)
	}
	return nil
}

func (f *Flat) Document() interface{} {
	out := make([]Record, len(f.records))
	copy(out, f.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Records returns the accumulated records in completion order
func (f *Flat) Records() []Record {
	return f.records
}

// Grouped files records under their canonical base name, keeping groups in
// the order their first member arrived
type Grouped struct {
	order  []string
	groups map[string]*GroupedRecord
	ids    map[int]struct{}
	count  int
}

func NewGrouped() *Grouped {
	return &Grouped{
		groups: make(map[string]*GroupedRecord),
		ids:    make(map[int]struct{}),
	}
}

func (g *Grouped) Variant() string { return VariantGrouped }

func (g *Grouped) Add(r Record) bool {
	if g.Has(r.ID) {
		return false
	}
	g.ids[r.ID] = struct{}{}
	g.count++

	group := g.group(r.BaseName)
	if r.IsBase() {
		if group.Record != nil {
			// A second base form replaces the first; keep it as a form
			group.Forms = append(group.Forms, *group.Record)
		}
		rec := r
		group.Record = &rec
		return true
	}
	group.Forms = append(group.Forms, r)
	return true
}

func (g *Grouped) group(key string) *GroupedRecord {
	group, ok := g.groups[key]
	if !ok {
		group = &GroupedRecord{Forms: []Record{}}
		g.groups[key] = group
		g.order = append(g.order, key)
	}
	return group
}

func (g *Grouped) Has(id int) bool {
	_, ok := g.ids[id]
	return ok
}

func (g *Grouped) Len() int { return g.count }

// Groups returns the number of distinct base names
func (g *Grouped) Groups() int { return len(g.order) }

// Get returns the group filed under key
func (g *Grouped) Get(key string) (*GroupedRecord, bool) {
	group, ok := g.groups[key]
	return group, ok
}

func (g *Grouped) State() interface{} {
	out := make([]GroupedRecord, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.groups[key])
	}
	return out
}

func (g *Grouped) Restore(raw json.RawMessage) error {
	var groups []GroupedRecord
	if err := json.Unmarshal(raw, &groups); err != nil {
		return fmt.Errorf("decode grouped pokedex: %w", err)
	}

	*g = *NewGrouped()
	for _, saved := range groups {
		key := saved.Key()
		if key == "" {
			continue
		}
		group := g.group(key)
		if saved.Record != nil {
			rec := *saved.Record
			group.Record = &rec
			g.ids[rec.ID] = struct{}{}
			g.count++
		}
		for _, form := range saved.Forms {
			if g.Has(form.ID) {
				continue
			}
			group.Forms = append(group.Forms, form)
			g.ids[form.ID] = struct{}{}
			g.count++
		}
	}
	return nil
}

func (g *Grouped) Document() interface{} {
	return map[string]interface{}{"entities": g.State()}
}
