package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pokedex/internal/pool"
	"pokedex/pkg/checkpoint"
	"pokedex/pkg/config"
	errs "pokedex/pkg/errors"
	"pokedex/pkg/logger"
	"pokedex/pkg/pokedex"
	"pokedex/pkg/storage"
	"pokedex/pkg/ui"
)

// Assembler produces the record for one id, or false when it has none
type Assembler interface {
	Assemble(ctx context.Context, id int) (*pokedex.Record, bool)
}

// Options controls a single build
type Options struct {
	StartID         int
	MaxID           int
	Concurrency     int
	CheckpointEvery int
	Variant         string
	OutputFile      string
	ForceRestart    bool
	// SilhouetteDir is only reported in the summary
	SilhouetteDir string
}

// OptionsFromConfig maps the pipeline section of cfg onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		StartID:         cfg.Pipeline.StartID,
		MaxID:           cfg.Pipeline.MaxID,
		Concurrency:     cfg.Pipeline.Concurrency,
		CheckpointEvery: cfg.Pipeline.CheckpointEvery,
		Variant:         cfg.Pipeline.Variant,
		OutputFile:      cfg.Pipeline.OutputFile,
	}
	if cfg.Silhouette.Enabled {
		opts.SilhouetteDir = cfg.Silhouette.Directory
	}
	return opts
}

// Result summarizes a finished or interrupted build
type Result struct {
	Records  int
	Skipped  int
	LastID   int
	Resumed  bool
	Output   string
	Duration time.Duration
}

// Orchestrator drives the fetch-and-merge loop and owns the accumulator,
// the checkpoint and the output file
type Orchestrator struct {
	opts        Options
	assembler   Assembler
	checkpoints *checkpoint.Manager
	reporter    ui.Reporter
	logger      logger.Logger
}

type outcome struct {
	id     int
	record *pokedex.Record
	ok     bool
}

// run is the mutable state of one Run; only the Run goroutine touches it
type run struct {
	acc       pokedex.Accumulator
	cp        *checkpoint.Checkpoint
	watermark int
	done      map[int]bool
	saved     int
	skipped   int
}

// New creates an Orchestrator
func New(opts Options, asm Assembler, checkpoints *checkpoint.Manager, reporter ui.Reporter, log logger.Logger) *Orchestrator {
	if opts.StartID < 1 {
		opts.StartID = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.CheckpointEvery < 1 {
		opts.CheckpointEvery = 1
	}
	if opts.Variant == "" {
		opts.Variant = pokedex.VariantFlat
	}
	if reporter == nil {
		reporter = ui.Nop{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Orchestrator{
		opts:        opts,
		assembler:   asm,
		checkpoints: checkpoints,
		reporter:    reporter,
		logger:      log.WithField("component", "pipeline"),
	}
}

// Run builds the dataset for [StartID, MaxID]. On cancellation it writes a
// checkpoint at the current high-water mark and returns an error wrapping
// ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if o.opts.MaxID < o.opts.StartID {
		return nil, fmt.Errorf("max id %d is below start id %d", o.opts.MaxID, o.opts.StartID)
	}

	r, resumed, err := o.init()
	if err != nil {
		return nil, err
	}

	o.reporter.Started(o.opts.StartID, o.opts.MaxID)
	if resumed {
		o.reporter.Resumed(r.watermark, r.acc.Len())
	}

	var ids []int
	for id := r.watermark + 1; id <= o.opts.MaxID; id++ {
		if r.acc.Has(id) {
			r.done[id] = true
			continue
		}
		ids = append(ids, id)
	}
	r.advance()

	o.logger.InfoWithFields("Build started", map[string]interface{}{
		"first_id":    r.watermark + 1,
		"max_id":      o.opts.MaxID,
		"pending":     len(ids),
		"variant":     o.opts.Variant,
		"concurrency": o.opts.Concurrency,
		"resumed":     resumed,
	})

	o.dispatch(ctx, r, ids)

	result := &Result{
		Records:  r.acc.Len(),
		Skipped:  r.skipped,
		LastID:   r.watermark,
		Resumed:  resumed,
		Output:   o.opts.OutputFile,
		Duration: time.Since(start),
	}

	if err := ctx.Err(); err != nil {
		o.saveCheckpoint(r)
		o.logger.WarnWithFields("Build interrupted", map[string]interface{}{
			"last_id": r.watermark,
			"records": r.acc.Len(),
		})
		return result, fmt.Errorf("build interrupted after id %d: %w", r.watermark, err)
	}

	if err := o.finish(r); err != nil {
		return result, err
	}
	result.Duration = time.Since(start)

	o.reporter.Done(ui.Summary{
		Records:       result.Records,
		Skipped:       result.Skipped,
		Output:        result.Output,
		SilhouetteDir: o.opts.SilhouetteDir,
		Duration:      result.Duration,
	})
	logger.LogMetrics("build", map[string]interface{}{
		"records":     result.Records,
		"skipped":     result.Skipped,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result, nil
}

// init loads or discards the checkpoint and seeds the accumulator
func (o *Orchestrator) init() (*run, bool, error) {
	if o.opts.ForceRestart {
		if err := o.checkpoints.Delete(); err != nil {
			return nil, false, err
		}
		o.logger.Info("Force restart, checkpoint discarded")
	}

	acc, err := pokedex.New(o.opts.Variant)
	if err != nil {
		return nil, false, err
	}
	r := &run{
		acc:       acc,
		cp:        &checkpoint.Checkpoint{Variant: o.opts.Variant},
		watermark: o.opts.StartID - 1,
		done:      make(map[int]bool),
	}

	cp, err := o.checkpoints.Load()
	if err != nil {
		return nil, false, fmt.Errorf("%w; fix or delete it, or run with --force-restart", err)
	}
	if cp == nil {
		r.saved = r.watermark / o.opts.CheckpointEvery
		return r, false, nil
	}

	variant := cp.Variant
	if variant == "" {
		variant = pokedex.VariantFlat
	}
	if variant != o.opts.Variant {
		return nil, false, errs.New(errs.ErrorTypeCheckpoint, 0,
			"checkpoint %s holds a %s build; rerun with --variant %s or --force-restart",
			o.checkpoints.Path(), variant, variant)
	}
	if err := acc.Restore(cp.Pokedex); err != nil {
		return nil, false, errs.New(errs.ErrorTypeCheckpoint, 0,
			"checkpoint %s has an unreadable pokedex: %v; run with --force-restart", o.checkpoints.Path(), err)
	}

	cp.Variant = o.opts.Variant
	r.cp = cp
	if cp.LastID > r.watermark {
		r.watermark = cp.LastID
	}
	r.saved = r.watermark / o.opts.CheckpointEvery

	o.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
		"path":    o.checkpoints.Path(),
		"last_id": cp.LastID,
		"records": acc.Len(),
	})
	return r, true, nil
}

// dispatch runs ids through the worker pool and merges every outcome
func (o *Orchestrator) dispatch(ctx context.Context, r *run, ids []int) {
	if len(ids) == 0 {
		return
	}

	wp := pool.NewWorkerPool(ctx, o.opts.Concurrency, func(ctx context.Context, id int) outcome {
		rec, ok := o.assembler.Assemble(ctx, id)
		return outcome{id: id, record: rec, ok: ok}
	}, o.logger)
	wp.Start()

	go func() {
		defer wp.Stop()
		for _, id := range ids {
			if err := wp.Submit(id); err != nil {
				return
			}
		}
	}()

	for out := range wp.Results() {
		o.merge(ctx, r, out)
	}
}

func (o *Orchestrator) merge(ctx context.Context, r *run, out outcome) {
	if !out.ok || out.record == nil {
		// Unfinished work is redone on resume
		if ctx.Err() != nil {
			return
		}
		r.skipped++
		logger.LogRecord(o.logger, out.id, "", false)
		o.reporter.Skipped(out.id)
	} else {
		if r.acc.Add(*out.record) {
			logger.LogRecord(o.logger, out.id, out.record.Name, true)
			o.reporter.Added(out.id, out.record.Name)
		}
	}

	r.done[out.id] = true
	r.advance()

	if bucket := r.watermark / o.opts.CheckpointEvery; bucket > r.saved {
		o.saveCheckpoint(r)
		r.saved = bucket
	}
}

// advance moves the watermark over the contiguous run of finished ids
func (r *run) advance() {
	for r.done[r.watermark+1] {
		delete(r.done, r.watermark+1)
		r.watermark++
	}
}

func (o *Orchestrator) saveCheckpoint(r *run) {
	state, err := json.Marshal(r.acc.State())
	if err != nil {
		o.logger.WithError(err).Error("Failed to encode checkpoint")
		return
	}
	r.cp.LastID = r.watermark
	r.cp.Pokedex = state
	r.cp.Records = r.acc.Len()

	if err := o.checkpoints.Save(r.cp); err != nil {
		o.logger.WithError(err).Warn("Failed to save checkpoint")
		return
	}
	logger.LogCheckpoint(o.logger, o.checkpoints.Path(), r.watermark, r.cp.Records)
	o.reporter.CheckpointSaved(r.watermark, r.cp.Records)
}

// finish writes the output and only then removes the checkpoint
func (o *Orchestrator) finish(r *run) error {
	if err := storage.WriteJSON(o.opts.OutputFile, r.acc.Document()); err != nil {
		o.saveCheckpoint(r)
		return fmt.Errorf("failed to write output %s: %w", o.opts.OutputFile, err)
	}
	if err := o.checkpoints.Delete(); err != nil {
		o.logger.WithError(err).Warn("Failed to delete checkpoint")
	}

	o.logger.InfoWithFields("Build complete", map[string]interface{}{
		"output":  o.opts.OutputFile,
		"records": r.acc.Len(),
		"skipped": r.skipped,
	})
	return nil
}
