// Package pokedex holds the dataset model: the normalized Record, the
// form-aware GroupedRecord, the naming rules that derive display and base
// names from API names, and the accumulators that collect records for the
// flat and grouped output variants.
package pokedex
