package embed

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// NativeConfig points at a shared library exposing a C embedding ABI:
//
//	int embed_dimensions(void);
//	int embed_text(const char *text, float *out, int out_len);
type NativeConfig struct {
	LibraryPath string
	ModelName   string
	Dimensions  int
}

// NativeEmbedder loads a native embedding model through a dlopen'd
// shared library via purego, avoiding cgo while still calling into a
// real (non-Go) inference runtime.
type NativeEmbedder struct {
	cfg  NativeConfig
	lib  uintptr
	dims int

	embedText  func(text string, out []float32, outLen int32) int32
	dimensions func() int32

	mu     sync.Mutex
	closed bool
}

var _ Embedder = (*NativeEmbedder)(nil)

// NewNativeEmbedder dlopen's cfg.LibraryPath and binds its embedding
// entry points.
func NewNativeEmbedder(cfg NativeConfig) (*NativeEmbedder, error) {
	if cfg.LibraryPath == "" {
		return nil, fmt.Errorf("native embedder requires a library path")
	}

	lib, err := purego.Dlopen(cfg.LibraryPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("loading native embedding library %s: %w", cfg.LibraryPath, err)
	}

	e := &NativeEmbedder{cfg: cfg, lib: lib}
	purego.RegisterLibFunc(&e.embedText, lib, "embed_text")
	purego.RegisterLibFunc(&e.dimensions, lib, "embed_dimensions")

	e.dims = cfg.Dimensions
	if e.dims == 0 {
		e.dims = int(e.dimensions())
	}
	if e.dims == 0 {
		e.dims = DefaultDimensions
	}
	return e, nil
}

func (e *NativeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("embedder is closed")
	}
	out := make([]float32, e.dims)
	if rc := e.embedText(text, out, int32(e.dims)); rc != 0 {
		return nil, fmt.Errorf("native embedding call failed with code %d", rc)
	}
	return normalizeVector(out), nil
}

func (e *NativeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		results[i] = v
	}
	return results, nil
}

func (e *NativeEmbedder) Dimensions() int   { return e.dims }
func (e *NativeEmbedder) ModelName() string { return e.cfg.ModelName }

func (e *NativeEmbedder) Available(_ context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed
}

func (e *NativeEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	purego.Dlclose(e.lib)
	return nil
}
