package assembler

import (
	"context"

	"pokedex/pkg/evolution"
	"pokedex/pkg/generation"
	"pokedex/pkg/logger"
	"pokedex/pkg/pokeapi"
	"pokedex/pkg/pokedex"
	"pokedex/pkg/typechart"
)

// Assembler builds one normalized record per id
type Assembler struct {
	fetcher     Fetcher
	chart       typechart.Chart
	generations *generation.Table
	silhouettes ArtifactCache
	logger      logger.Logger
}

// New creates an Assembler. A nil chart or table falls back to the defaults;
// a nil cache disables silhouettes.
func New(fetcher Fetcher, chart typechart.Chart, generations *generation.Table, silhouettes ArtifactCache, log logger.Logger) *Assembler {
	if chart == nil {
		chart = typechart.Default()
	}
	if generations == nil {
		generations = generation.Default()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Assembler{
		fetcher:     fetcher,
		chart:       chart,
		generations: generations,
		silhouettes: silhouettes,
		logger:      log.WithField("component", "assembler"),
	}
}

// Assemble fetches and normalizes the entity with the given id. It returns
// false when the pokemon or species payload is unavailable, or when ctx was
// cancelled before the record was complete.
func (a *Assembler) Assemble(ctx context.Context, id int) (*pokedex.Record, bool) {
	mon, err := a.fetcher.FetchPokemon(ctx, id)
	if err != nil || mon == nil {
		a.logger.WithError(err).WithField("id", id).Debug("Pokemon unavailable")
		return nil, false
	}
	species, err := a.fetcher.FetchSpecies(ctx, id)
	if err != nil || species == nil {
		a.logger.WithError(err).WithField("id", id).Debug("Species unavailable")
		return nil, false
	}

	types := make([]string, 0, len(mon.Types))
	for _, t := range mon.TypeNames() {
		types = append(types, pokedex.TypeName(t))
	}

	rec := &pokedex.Record{
		ID:          id,
		Name:        pokedex.DisplayName(mon.Name),
		BaseName:    pokedex.BaseName(mon.Name),
		Generation:  a.generations.Label(id),
		Types:       types,
		Description: pokedex.DefaultDescription,
		EvolvesTo:   []string{},
		SpriteURL:   mon.Sprites.FrontDefault,
		ArtworkURL:  mon.ArtworkURL(),
	}
	if text, ok := species.EnglishFlavorText(); ok {
		rec.Description = text
	}
	if genus, ok := species.EnglishGenus(); ok {
		rec.RegionName = genus
	}

	rec.Strengths, rec.Weaknesses = a.chart.Aggregate(types)
	a.resolveEvolution(ctx, rec, species)

	if a.silhouettes != nil && rec.ArtworkURL != "" {
		if ref, ok := a.silhouettes.Get(ctx, rec.ArtworkURL, rec.Name); ok {
			rec.SilhouetteURL = ref
		}
	}

	// A cancelled fetch above degrades fields; such a record must not be kept
	if ctx.Err() != nil {
		return nil, false
	}
	return rec, true
}

func (a *Assembler) resolveEvolution(ctx context.Context, rec *pokedex.Record, species *pokeapi.Species) {
	url := species.ChainURL()
	if url == "" {
		return
	}
	chain, err := a.fetcher.FetchEvolutionChain(ctx, url)
	if err != nil || chain == nil {
		a.logger.WithError(err).WithField("id", rec.ID).Debug("Evolution chain unavailable")
		return
	}

	root := toNode(chain.Chain)
	res := evolution.Resolve(root, rec.Name)
	if !res.Found && species.Name != "" {
		res = evolution.Resolve(root, pokedex.DisplayName(species.Name))
	}

	rec.EvolvesFrom = res.From
	rec.EvolvesTo = res.To
	rec.EvolutionLine = evolution.Line(root)
}

// toNode converts a chain payload into a tree of display names
func toNode(link *pokeapi.ChainLink) *evolution.Node {
	if link == nil || link.Species.Name == "" {
		return nil
	}
	node := &evolution.Node{Name: pokedex.DisplayName(link.Species.Name)}
	for i := range link.EvolvesTo {
		if child := toNode(&link.EvolvesTo[i]); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}
