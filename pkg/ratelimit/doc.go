// Package ratelimit keeps request volume against PokeAPI polite.
//
// The public API asks clients to cache and not hammer it, so every request
// attempt waits on a sliding-window Limiter first. A zero rate disables it.
package ratelimit
