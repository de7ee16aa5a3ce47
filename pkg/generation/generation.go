// Package generation maps national dex identifiers to their generation.
package generation

import "fmt"

// Band is an inclusive upper bound and the generation it closes
type Band struct {
	MaxID  int    `json:"max_id" yaml:"max_id"`
	Number int    `json:"number" yaml:"number"`
	Region string `json:"region" yaml:"region"`
}

// Label renders the band as "Gen N (Region)"
func (b Band) Label() string {
	return fmt.Sprintf("Gen %d (%s)", b.Number, b.Region)
}

// Table is an ascending list of bands. Ids beyond the last band belong to
// Fallback.
type Table struct {
	Bands    []Band
	Fallback Band
}

// Default returns the national dex table through Paldea
func Default() *Table {
	return &Table{
		Bands: []Band{
			{MaxID: 151, Number: 1, Region: "Kanto"},
			{MaxID: 251, Number: 2, Region: "Johto"},
			{MaxID: 386, Number: 3, Region: "Hoenn"},
			{MaxID: 493, Number: 4, Region: "Sinnoh"},
			{MaxID: 649, Number: 5, Region: "Unova"},
			{MaxID: 721, Number: 6, Region: "Kalos"},
			{MaxID: 809, Number: 7, Region: "Alola"},
			{MaxID: 905, Number: 8, Region: "Galar"},
		},
		Fallback: Band{Number: 9, Region: "Paldea"},
	}
}

// Lookup returns the band containing id
func (t *Table) Lookup(id int) Band {
	for _, b := range t.Bands {
		if id <= b.MaxID {
			return b
		}
	}
	return t.Fallback
}

// Label returns the generation label for id, e.g. "Gen 1 (Kanto)"
func (t *Table) Label(id int) string {
	return t.Lookup(id).Label()
}
