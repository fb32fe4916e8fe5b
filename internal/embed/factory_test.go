package embed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	assert.Equal(t, BackendHTTP, ParseBackend("ollama"))
	assert.Equal(t, BackendHTTP, ParseBackend("HTTP"))
	assert.Equal(t, BackendNative, ParseBackend("native"))
	assert.Equal(t, BackendStatic, ParseBackend("static"))
	assert.Equal(t, BackendStatic, ParseBackend("typo"))
}

func TestGetReturnsSameSingletonAcrossConcurrentCalls(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	results := make([]Embedder, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			e, err := Get(context.Background(), Config{Backend: BackendStatic})
			require.NoError(t, err)
			results[idx] = e
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestResetAllowsRebuildingWithNewConfig(t *testing.T) {
	Reset()
	defer Reset()

	first, err := Get(context.Background(), Config{Backend: BackendStatic})
	require.NoError(t, err)

	Reset()

	second, err := Get(context.Background(), Config{Backend: BackendStatic})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}
