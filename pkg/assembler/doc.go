// Package assembler turns one entity id into a normalized pokedex.Record.
//
// For each id the Assembler fetches the pokemon and species payloads (both
// are required), labels the generation, aggregates type strengths and
// weaknesses, resolves the evolution chain and derives a silhouette from the
// official artwork. Everything after the two required payloads degrades to
// an empty or absent field instead of failing the record.
//
// Usage:
//
//	client := pokeapi.NewFromConfig(cfg, log)
//	a := assembler.New(client, typechart.Default(), generation.Default(), cache, log)
//	rec, ok := a.Assemble(ctx, 25)
package assembler
