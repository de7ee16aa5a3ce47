package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pokedex/pkg/assembler"
	"pokedex/pkg/checkpoint"
	errs "pokedex/pkg/errors"
	"pokedex/pkg/logger"
	"pokedex/pkg/pokeapi"
	"pokedex/pkg/pokedex"
	"pokedex/pkg/retry"
	"pokedex/pkg/ui"
)

type fakeAssembler struct {
	mu     sync.Mutex
	calls  []int
	fail   map[int]bool
	names  map[int]string
	before func(ctx context.Context, id int)
}

func (f *fakeAssembler) Assemble(ctx context.Context, id int) (*pokedex.Record, bool) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	hook := f.before
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, id)
	}
	if ctx.Err() != nil || f.fail[id] {
		return nil, false
	}
	name := fmt.Sprintf("mon-%d", id)
	if n, ok := f.names[id]; ok {
		name = n
	}
	return &pokedex.Record{
		ID:        id,
		Name:      pokedex.DisplayName(name),
		BaseName:  pokedex.BaseName(name),
		EvolvesTo: []string{},
	}, true
}

func (f *fakeAssembler) called() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.calls...)
	sort.Ints(out)
	return out
}

type recordingReporter struct {
	ui.Nop
	mu     sync.Mutex
	saves  []int
	onSave func(lastID int)
	done   *ui.Summary
}

func (r *recordingReporter) CheckpointSaved(lastID, records int) {
	r.mu.Lock()
	r.saves = append(r.saves, lastID)
	r.mu.Unlock()
	if r.onSave != nil {
		r.onSave(lastID)
	}
}

func (r *recordingReporter) Done(s ui.Summary) {
	r.done = &s
}

type fixture struct {
	dir         string
	output      string
	checkpoints *checkpoint.Manager
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	return &fixture{
		dir:         dir,
		output:      filepath.Join(dir, "pokedex.json"),
		checkpoints: checkpoint.NewManager(filepath.Join(dir, "pokedex_checkpoint.json"), nil),
	}
}

func (f *fixture) options(maxID int) Options {
	return Options{
		StartID:         1,
		MaxID:           maxID,
		Concurrency:     1,
		CheckpointEvery: 25,
		Variant:         pokedex.VariantFlat,
		OutputFile:      f.output,
	}
}

func (f *fixture) readFlat(t *testing.T) []pokedex.Record {
	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	var records []pokedex.Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func ids(records []pokedex.Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func (f *fixture) seed(t *testing.T, variant string, lastID int, records ...int) {
	acc, err := pokedex.New(variant)
	require.NoError(t, err)
	for _, id := range records {
		acc.Add(pokedex.Record{ID: id, Name: fmt.Sprintf("Mon %d", id), BaseName: "Mon", EvolvesTo: []string{}})
	}
	state, err := json.Marshal(acc.State())
	require.NoError(t, err)
	require.NoError(t, f.checkpoints.Save(&checkpoint.Checkpoint{
		Variant: variant,
		LastID:  lastID,
		Pokedex: state,
		Records: acc.Len(),
	}))
}

const speciesJSON = `{"name":%q,"flavor_text_entries":[{"flavor_text":"A test\nentry.","language":{"name":"en"}}],"genera":[]}`

func TestEndToEndSkipsFailingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokemon/1":
			fmt.Fprint(w, `{"id":1,"name":"bulbasaur","types":[{"slot":1,"type":{"name":"grass"}}],"sprites":{"front_default":"s1"}}`)
		case "/pokemon-species/1":
			fmt.Fprintf(w, speciesJSON, "bulbasaur")
		case "/pokemon/3":
			fmt.Fprint(w, `{"id":3,"name":"venusaur","types":[{"slot":1,"type":{"name":"grass"}}],"sprites":{"front_default":"s3"}}`)
		case "/pokemon-species/3":
			fmt.Fprintf(w, speciesJSON, "venusaur")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	retryCfg := retry.DefaultConfig()
	retryCfg.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	client := pokeapi.NewClient(pokeapi.Options{BaseURL: server.URL, Retry: retryCfg, Logger: log})
	asm := assembler.New(client, nil, nil, nil, log)

	f := newFixture(t)
	opts := f.options(3)
	opts.Concurrency = 2
	res, err := New(opts, asm, f.checkpoints, nil, log).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.LastID)

	records := f.readFlat(t)
	assert.Equal(t, []int{1, 3}, ids(records))
	assert.Equal(t, "Bulbasaur", records[0].Name)
	assert.Equal(t, []string{"Grass"}, records[0].Types)
	assert.Equal(t, "A test entry.", records[0].Description)

	assert.True(t, log.HasMessage("Record skipped"))
	assert.Equal(t, 2, log.CountMessages("Record added"))
	assert.False(t, f.checkpoints.Exists())
}

func TestRunWritesCheckpointsOnWatermark(t *testing.T) {
	f := newFixture(t)
	opts := f.options(5)
	opts.CheckpointEvery = 2

	rep := &recordingReporter{}
	asm := &fakeAssembler{fail: map[int]bool{3: true}}
	res, err := New(opts, asm, f.checkpoints, rep, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, rep.saves)
	assert.Equal(t, 4, res.Records)
	require.NotNil(t, rep.done)
	assert.Equal(t, 1, rep.done.Skipped)
	assert.Equal(t, []int{1, 2, 4, 5}, ids(f.readFlat(t)))
	assert.False(t, f.checkpoints.Exists())
}

func TestCheckpointNeverCoversUnfinishedIDs(t *testing.T) {
	f := newFixture(t)
	opts := f.options(6)
	opts.Concurrency = 3
	opts.CheckpointEvery = 1

	release := make(chan struct{})
	var once sync.Once
	var finished sync.WaitGroup
	finished.Add(2)

	asm := &fakeAssembler{}
	asm.before = func(ctx context.Context, id int) {
		switch id {
		case 1:
			<-release
		case 2, 3:
			finished.Done()
		}
	}
	go func() {
		finished.Wait()
		once.Do(func() { close(release) })
	}()

	rep := &recordingReporter{}
	rep.onSave = func(lastID int) {
		cp, err := f.checkpoints.Load()
		require.NoError(t, err)
		var saved []pokedex.Record
		require.NoError(t, json.Unmarshal(cp.Pokedex, &saved))
		have := map[int]bool{}
		for _, r := range saved {
			have[r.ID] = true
		}
		for id := 1; id <= lastID; id++ {
			assert.True(t, have[id], "checkpoint at %d is missing id %d", lastID, id)
		}
	}

	_, err := New(opts, asm, f.checkpoints, rep, nil).Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, rep.saves)
	assert.True(t, sort.IntsAreSorted(rep.saves))
	assert.GreaterOrEqual(t, rep.saves[0], 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(f.readFlat(t)))
}

func TestRunResumesAfterWatermark(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pokedex.VariantFlat, 2, 1, 2)

	rep := &recordingReporter{}
	asm := &fakeAssembler{}
	res, err := New(f.options(4), asm, f.checkpoints, rep, nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Resumed)
	assert.Equal(t, []int{3, 4}, asm.called())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(f.readFlat(t)))
	assert.False(t, f.checkpoints.Exists())
}

func TestRunSkipsRecordsAlreadyInCheckpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pokedex.VariantFlat, 1, 1, 3)

	asm := &fakeAssembler{}
	_, err := New(f.options(4), asm, f.checkpoints, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, asm.called())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(f.readFlat(t)))
}

func TestRunCompletedCheckpointOnlyWritesOutput(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pokedex.VariantFlat, 3, 1, 2, 3)

	asm := &fakeAssembler{}
	res, err := New(f.options(3), asm, f.checkpoints, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, asm.called())
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, []int{1, 2, 3}, ids(f.readFlat(t)))
}

func TestRunFailsFastOnCorruptCheckpoint(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.checkpoints.Path(), []byte(`{"last_id": "x"`), 0644))

	asm := &fakeAssembler{}
	_, err := New(f.options(3), asm, f.checkpoints, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force-restart")
	assert.Equal(t, errs.ErrorTypeCheckpoint, errs.TypeOf(err))
	assert.Empty(t, asm.called())
	assert.NoFileExists(t, f.output)
}

func TestRunForceRestartDiscardsCheckpoint(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.checkpoints.Path(), []byte(`garbage`), 0644))

	opts := f.options(2)
	opts.ForceRestart = true
	asm := &fakeAssembler{}
	res, err := New(opts, asm, f.checkpoints, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Resumed)
	assert.Equal(t, []int{1, 2}, asm.called())
}

func TestRunRejectsVariantMismatch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pokedex.VariantGrouped, 1, 1)

	_, err := New(f.options(3), &fakeAssembler{}, f.checkpoints, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--variant grouped")
}

func TestRunGroupedVariant(t *testing.T) {
	f := newFixture(t)
	opts := f.options(3)
	opts.Variant = pokedex.VariantGrouped

	asm := &fakeAssembler{names: map[int]string{1: "pikachu-gmax", 2: "pikachu", 3: "raichu"}}
	_, err := New(opts, asm, f.checkpoints, nil, nil).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)

	var doc struct {
		Entities []struct {
			ID    int              `json:"id"`
			Name  string           `json:"name"`
			Forms []pokedex.Record `json:"forms"`
		} `json:"entities"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Entities, 2)

	assert.Equal(t, "Pikachu", doc.Entities[0].Name)
	require.Len(t, doc.Entities[0].Forms, 1)
	assert.Equal(t, "Pikachu Gmax", doc.Entities[0].Forms[0].Name)
	assert.Equal(t, "Raichu", doc.Entities[1].Name)
}

func TestRunCancellationWritesFinalCheckpoint(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	asm := &fakeAssembler{}
	asm.before = func(_ context.Context, id int) {
		if id == 3 {
			cancel()
		}
	}

	res, err := New(f.options(10), asm, f.checkpoints, nil, nil).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, res.LastID)

	cp, err := f.checkpoints.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.LastID)
	assert.Equal(t, 2, cp.Records)
	assert.NoFileExists(t, f.output)
}

func TestRunRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	opts := f.options(0)
	opts.StartID = 5
	_, err := New(opts, &fakeAssembler{}, f.checkpoints, nil, nil).Run(context.Background())
	assert.Error(t, err)
}
