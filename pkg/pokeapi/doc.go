// Package pokeapi is a small client for the public PokeAPI v2.
//
// Every request goes through a retry policy and a politeness limiter.
// Failures are returned as *errors.Error so callers can tell a missing
// resource from a broken network, although the builder treats both as
// "absent".
//
//	client := pokeapi.NewFromConfig(cfg, log)
//	p, err := client.FetchPokemon(ctx, 25)
package pokeapi
