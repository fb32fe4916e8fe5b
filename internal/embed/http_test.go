package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEmbedServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req httpEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		texts := asTextSlice(req.Input)
		resp := httpEmbedResponse{Embeddings: make([][]float64, len(texts))}
		for i := range texts {
			vec := make([]float64, dims)
			vec[i%dims] = 1
			resp.Embeddings[i] = vec
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func asTextSlice(input any) []string {
	switch v := input.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, len(v))
		for i, s := range v {
			out[i], _ = s.(string)
		}
		return out
	default:
		return nil
	}
}

func TestHTTPEmbedderProbesDimensions(t *testing.T) {
	srv := fakeEmbedServer(t, 8)
	defer srv.Close()

	e, err := NewHTTPEmbedder(context.Background(), HTTPConfig{Host: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 8, e.Dimensions())
}

func TestHTTPEmbedderEmbedSingle(t *testing.T) {
	srv := fakeEmbedServer(t, 4)
	defer srv.Close()

	e, err := NewHTTPEmbedder(context.Background(), HTTPConfig{Host: srv.URL, SkipHealthCheck: true, Dimensions: 4})
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, v, 4)
}

func TestHTTPEmbedderEmptyTextIsZeroVector(t *testing.T) {
	srv := fakeEmbedServer(t, 4)
	defer srv.Close()

	e, err := NewHTTPEmbedder(context.Background(), HTTPConfig{Host: srv.URL, SkipHealthCheck: true, Dimensions: 4})
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, f := range v {
		assert.Zero(t, f)
	}
}

func TestHTTPEmbedderUnavailableServerErrors(t *testing.T) {
	_, err := NewHTTPEmbedder(context.Background(), HTTPConfig{Host: "http://127.0.0.1:1"})
	assert.Error(t, err)
}
