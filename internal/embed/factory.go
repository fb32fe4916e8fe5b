package embed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Backend selects which embedder implementation to construct.
type Backend string

const (
	BackendHTTP   Backend = "http"
	BackendNative Backend = "native"
	BackendStatic Backend = "static"
)

// ParseBackend maps a config/flag string to a Backend, defaulting to
// static when unrecognized so indexing never hard-fails for a typo.
func ParseBackend(s string) Backend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "http", "ollama":
		return BackendHTTP
	case "native":
		return BackendNative
	default:
		return BackendStatic
	}
}

// Config selects and configures the embedder to build.
type Config struct {
	Backend Backend
	HTTP    HTTPConfig
	Native  NativeConfig
}

// singleton is the process-wide, lazily constructed embedder. Multiple
// concurrent first callers dedup into a single construction via
// singleflight; every caller shares the result and its dimension.
var (
	singletonMu    sync.Mutex
	singletonGroup singleflight.Group
	singletonValue Embedder
	singletonCfg   Config
)

// Get returns the process-wide embedder for cfg, constructing it on
// first use. Subsequent calls with a different cfg still return the
// already-built embedder — callers that need an isolated instance
// should call New directly instead.
func Get(ctx context.Context, cfg Config) (Embedder, error) {
	singletonMu.Lock()
	if singletonValue != nil {
		v := singletonValue
		singletonMu.Unlock()
		return v, nil
	}
	singletonCfg = cfg
	singletonMu.Unlock()

	v, err, _ := singletonGroup.Do("embedder", func() (interface{}, error) {
		singletonMu.Lock()
		if singletonValue != nil {
			defer singletonMu.Unlock()
			return singletonValue, nil
		}
		c := singletonCfg
		singletonMu.Unlock()

		embedder, err := New(ctx, c)
		if err != nil {
			return nil, err
		}
		singletonMu.Lock()
		singletonValue = embedder
		singletonMu.Unlock()
		return embedder, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Embedder), nil
}

// Reset clears the process-wide singleton. Tests use this between
// cases that need distinct embedder configurations.
func Reset() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singletonValue = nil
	singletonCfg = Config{}
}

// New constructs a fresh embedder for cfg, independent of the
// process-wide singleton.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	switch cfg.Backend {
	case BackendHTTP:
		return NewHTTPEmbedder(ctx, cfg.HTTP)
	case BackendNative:
		return NewNativeEmbedder(cfg.Native)
	case BackendStatic, "":
		return NewStaticEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}
