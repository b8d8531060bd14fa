// Package cache stores rendered artifacts between runs.
//
// An artifact is keyed by the hash of its sketch source and every option
// that changes its bytes, so a hit can skip parsing and layout entirely.
// [FileCache] backs the CLI; [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay valid.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Select   string `json:"select,omitempty"`
	Window   string `json:"window,omitempty"`
	Color    bool   `json:"color,omitempty"`
	Margin   bool   `json:"margin,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`

	// ConfigHash is the Hash of the encoded configuration.
	ConfigHash string `json:"config"`
}

// ArtifactKey returns the key of one artifact rendered from the source
// with the given hash.
func ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sourceHash, opts)
}
