package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mortar/pkg/cache"
	"github.com/matzehuels/mortar/pkg/observability"
)

// artifactKeys returns the cache key of each requested format, or nil when
// the input cannot be read. Parse reports the read error in that case.
func (o *Options) artifactKeys() map[string]string {
	src := []byte(o.Source)
	if o.Path != "" {
		data, err := os.ReadFile(o.Path)
		if err != nil {
			return nil
		}
		src = data
	}

	var cfg bytes.Buffer
	if err := toml.NewEncoder(&cfg).Encode(o.Config); err != nil {
		return nil
	}

	sourceHash := cache.Hash(src)
	keys := make(map[string]string, len(o.Formats))
	for _, f := range o.Formats {
		keys[f] = cache.ArtifactKey(sourceHash, o.artifactKeyOpts(f, cache.Hash(cfg.Bytes())))
	}
	return keys
}

func (o *Options) artifactKeyOpts(format, configHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Width:      o.Width,
		Select:     o.Select,
		Window:     o.Window,
		Color:      o.Color,
		Margin:     o.Margin,
		Detailed:   o.Detailed,
		ConfigHash: configHash,
	}
}

// cached returns the artifacts for keys when every one of them hits.
func (r *Runner) cached(ctx context.Context, keys map[string]string) (map[string][]byte, bool) {
	if r.Cache == nil || keys == nil {
		return nil, false
	}
	hooks := observability.Cache()
	artifacts := make(map[string][]byte, len(keys))
	for format, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "error", err)
			return nil, false
		}
		if !hit {
			hooks.OnCacheMiss(ctx, format)
			return nil, false
		}
		hooks.OnCacheHit(ctx, format)
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, keys map[string]string, artifacts map[string][]byte) {
	if r.Cache == nil || keys == nil {
		return
	}
	for format, data := range artifacts {
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
}
