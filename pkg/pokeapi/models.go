package pokeapi

import "strings"

// NamedResource is PokeAPI's {name, url} reference
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// APIResource is an unnamed {url} reference
type APIResource struct {
	URL string `json:"url"`
}

// Pokemon is the subset of /pokemon/{id} the builder reads
type Pokemon struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Types   []PokemonType `json:"types"`
	Sprites Sprites       `json:"sprites"`
}

// PokemonType is one slot of a pokemon's typing
type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// Sprites holds the image URLs; any of them may be null upstream
type Sprites struct {
	FrontDefault string       `json:"front_default"`
	Other        OtherSprites `json:"other"`
}

type OtherSprites struct {
	OfficialArtwork ArtworkSprites `json:"official-artwork"`
}

type ArtworkSprites struct {
	FrontDefault string `json:"front_default"`
}

// TypeNames returns the raw type names in payload order
func (p *Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		if t.Type.Name != "" {
			names = append(names, t.Type.Name)
		}
	}
	return names
}

// ArtworkURL returns the official artwork URL, if any
func (p *Pokemon) ArtworkURL() string {
	return p.Sprites.Other.OfficialArtwork.FrontDefault
}

// Species is the subset of /pokemon-species/{id} the builder reads
type Species struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	FlavorTextEntries []FlavorText `json:"flavor_text_entries"`
	Genera            []Genus      `json:"genera"`
	EvolutionChain    *APIResource `json:"evolution_chain"`
}

type FlavorText struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
}

type Genus struct {
	Genus    string        `json:"genus"`
	Language NamedResource `json:"language"`
}

// EnglishFlavorText returns the first English entry with line and page
// breaks flattened to spaces
func (s *Species) EnglishFlavorText() (string, bool) {
	for _, entry := range s.FlavorTextEntries {
		if entry.Language.Name == "en" {
			return strings.NewReplacer("\n", " ", "\f", " ").Replace(entry.FlavorText), true
		}
	}
	return "", false
}

// EnglishGenus returns the first English genus, e.g. "Seed Pokémon"
func (s *Species) EnglishGenus() (string, bool) {
	for _, g := range s.Genera {
		if g.Language.Name == "en" {
			return g.Genus, true
		}
	}
	return "", false
}

// ChainURL returns the evolution chain URL or "" when the species has none
func (s *Species) ChainURL() string {
	if s.EvolutionChain == nil {
		return ""
	}
	return s.EvolutionChain.URL
}

// EvolutionChain is the payload behind a species' evolution_chain URL
type EvolutionChain struct {
	ID    int        `json:"id"`
	Chain *ChainLink `json:"chain"`
}

// ChainLink is one node of the evolution tree
type ChainLink struct {
	Species   NamedResource `json:"species"`
	EvolvesTo []ChainLink   `json:"evolves_to"`
}
