package pokeapi

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the public PokeAPI v2 root
	BaseURL = "https://pokeapi.co/api/v2"

	// PokemonEndpoint is the path for primary entity payloads
	PokemonEndpoint = "/pokemon/"

	// SpeciesEndpoint is the path for species payloads
	SpeciesEndpoint = "/pokemon-species/"
)

// PokemonURL constructs the URL of a pokemon payload
func PokemonURL(base string, id int) string {
	return fmt.Sprintf("%s%s%d", normalizeBase(base), PokemonEndpoint, id)
}

// SpeciesURL constructs the URL of a species payload
func SpeciesURL(base string, id int) string {
	return fmt.Sprintf("%s%s%d", normalizeBase(base), SpeciesEndpoint, id)
}

func normalizeBase(base string) string {
	if base == "" {
		return BaseURL
	}
	return strings.TrimRight(base, "/")
}
