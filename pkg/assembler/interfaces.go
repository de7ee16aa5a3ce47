package assembler

import (
	"context"

	"pokedex/pkg/pokeapi"
)

// Fetcher defines the PokeAPI operations the assembler needs
type Fetcher interface {
	FetchPokemon(ctx context.Context, id int) (*pokeapi.Pokemon, error)
	FetchSpecies(ctx context.Context, id int) (*pokeapi.Species, error)
	FetchEvolutionChain(ctx context.Context, url string) (*pokeapi.EvolutionChain, error)
}

// ArtifactCache produces a silhouette reference for an artwork URL
type ArtifactCache interface {
	Get(ctx context.Context, imageURL, name string) (string, bool)
}
