// Package silhouette turns official artwork into solid-color silhouettes
// and caches them on disk.
//
// A file already present for an entity is a cache hit and is returned as is,
// without touching the network. Concurrent requests for the same entity are
// coalesced so only one download and write happens.
package silhouette
