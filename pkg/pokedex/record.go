package pokedex

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultDescription is used when a species has no English flavor text
const DefaultDescription = "No description available."

// Record is one normalized entity in the dataset
type Record struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	BaseName      string   `json:"base_name"`
	Generation    string   `json:"generation"`
	RegionName    string   `json:"region_name,omitempty"`
	Types         []string `json:"types"`
	Description   string   `json:"description"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	EvolvesFrom   *string  `json:"evolves_from"`
	EvolvesTo     []string `json:"evolves_to"`
	EvolutionLine []string `json:"evolution_line,omitempty"`
	SpriteURL     string   `json:"sprite_url"`
	ArtworkURL    string   `json:"artwork_url"`
	SilhouetteURL string   `json:"silhouette_url,omitempty"`
}

// IsBase reports whether r is the base form of its group: a single-word
// display name equal to its canonical base name
func (r *Record) IsBase() bool {
	return !strings.Contains(r.Name, " ") && strings.EqualFold(r.Name, r.BaseName)
}

// GroupedRecord is a base record plus its alternate forms. Record is nil
// until the base form has been seen.
type GroupedRecord struct {
	*Record
	Forms []Record `json:"forms"`
}

// Key returns the canonical base name the group is filed under
func (g *GroupedRecord) Key() string {
	if g.Record != nil && g.Record.BaseName != "" {
		return g.Record.BaseName
	}
	if len(g.Forms) > 0 {
		return g.Forms[0].BaseName
	}
	return ""
}

// title is built per call: a Caser keeps state and cannot be shared
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// DisplayName turns an API name like "mr-mime" into "Mr Mime"
func DisplayName(apiName string) string {
	return title(strings.ReplaceAll(apiName, "-", " "))
}

// BaseName returns the canonical base of an API name: "pikachu-gmax" gives
// "Pikachu"
func BaseName(apiName string) string {
	base, _, _ := strings.Cut(apiName, "-")
	return title(base)
}

// TypeName capitalizes an API type name: "grass" gives "Grass"
func TypeName(apiType string) string {
	return title(apiType)
}

// SanitizeName derives the artifact key from a name: lowercase, spaces and
// hyphens become underscores and anything else non-alphanumeric is dropped.
// Distinct names can collide.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
