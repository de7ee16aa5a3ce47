// Package typechart aggregates type effectiveness for an entity's types.
package typechart

import "sort"

// Effectiveness lists the types a type is strong and weak against
type Effectiveness struct {
	Strong []string `json:"strong" yaml:"strong"`
	Weak   []string `json:"weak" yaml:"weak"`
}

// Chart maps a capitalized type name to its effectiveness. A Chart is
// read-only once built and safe for concurrent use.
type Chart map[string]Effectiveness

// Default returns the 18-type chart used by the builder
func Default() Chart {
	return Chart{
		"Fire":     {Strong: []string{"Grass", "Bug", "Ice", "Steel"}, Weak: []string{"Water", "Rock", "Ground"}},
		"Water":    {Strong: []string{"Fire", "Ground", "Rock"}, Weak: []string{"Electric", "Grass"}},
		"Grass":    {Strong: []string{"Water", "Ground", "Rock"}, Weak: []string{"Fire", "Bug", "Ice", "Flying"}},
		"Electric": {Strong: []string{"Water", "Flying"}, Weak: []string{"Ground"}},
		"Ice":      {Strong: []string{"Dragon", "Grass", "Ground", "Flying"}, Weak: []string{"Fire", "Rock", "Steel"}},
		"Rock":     {Strong: []string{"Fire", "Flying", "Bug", "Ice"}, Weak: []string{"Water", "Grass", "Ground"}},
		"Psychic":  {Strong: []string{"Fighting", "Poison"}, Weak: []string{"Dark", "Bug", "Ghost"}},
		"Dark":     {Strong: []string{"Psychic", "Ghost"}, Weak: []string{"Fighting", "Fairy", "Bug"}},
		"Fairy":    {Strong: []string{"Dark", "Dragon", "Fighting"}, Weak: []string{"Steel", "Poison"}},
		"Dragon":   {Strong: []string{"Dragon"}, Weak: []string{"Ice", "Fairy", "Dragon"}},
		"Steel":    {Strong: []string{"Rock", "Ice", "Fairy"}, Weak: []string{"Fire", "Ground", "Fighting"}},
		"Ground":   {Strong: []string{"Fire", "Rock", "Electric", "Steel"}, Weak: []string{"Water", "Grass", "Ice"}},
		"Poison":   {Strong: []string{"Fairy", "Grass"}, Weak: []string{"Ground", "Psychic"}},
		"Bug":      {Strong: []string{"Dark", "Psychic", "Grass"}, Weak: []string{"Rock", "Flying", "Fire"}},
		"Flying":   {Strong: []string{"Bug", "Grass", "Fighting"}, Weak: []string{"Rock", "Ice", "Electric"}},
		"Fighting": {Strong: []string{"Dark", "Ice", "Rock"}, Weak: []string{"Psychic", "Flying", "Fairy"}},
		"Ghost":    {Strong: []string{"Psychic", "Ghost"}, Weak: []string{"Dark", "Ghost"}},
		"Normal":   {Strong: []string{}, Weak: []string{"Fighting", "Ghost"}},
	}
}

// Aggregate unions the strong and weak sets of every known type in types.
// Unknown types contribute nothing. Both results are sorted and contain no
// duplicates; a type may legitimately appear in both.
func (c Chart) Aggregate(types []string) (strengths, weaknesses []string) {
	strong := make(map[string]struct{})
	weak := make(map[string]struct{})

	for _, t := range types {
		eff, ok := c[t]
		if !ok {
			continue
		}
		for _, s := range eff.Strong {
			strong[s] = struct{}{}
		}
		for _, w := range eff.Weak {
			weak[w] = struct{}{}
		}
	}

	return sortedKeys(strong), sortedKeys(weak)
}

// Types returns every type the chart knows, sorted
func (c Chart) Types() []string {
	set := make(map[string]struct{}, len(c))
	for t := range c {
		set[t] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
