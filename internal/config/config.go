// Package config loads the per-project configuration spec.md §6 names:
// a `.codii.yaml` file in the repository root layered over built-in
// defaults, itself overridden by `CODII_*` environment variables.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// Config is the full set of keys spec.md §6 lists for `.codii.yaml`.
type Config struct {
	IgnorePatterns     []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
	Extensions         []string `yaml:"extensions" mapstructure:"extensions"`
	EmbeddingModel     string   `yaml:"embedding_model" mapstructure:"embedding_model"`
	EmbeddingBatchSize int      `yaml:"embedding_batch_size" mapstructure:"embedding_batch_size"`
	MaxChunkSize       int      `yaml:"max_chunk_size" mapstructure:"max_chunk_size"`
	MinChunkSize       int      `yaml:"min_chunk_size" mapstructure:"min_chunk_size"`
	ChunkOverlap       int      `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	HNSWM              int      `yaml:"hnsw_m" mapstructure:"hnsw_m"`
	HNSWEfConstruction int      `yaml:"hnsw_ef_construction" mapstructure:"hnsw_ef_construction"`
	HNSWEfSearch       int      `yaml:"hnsw_ef_search" mapstructure:"hnsw_ef_search"`
	DefaultSearchLimit int      `yaml:"default_search_limit" mapstructure:"default_search_limit"`
	MaxSearchLimit     int      `yaml:"max_search_limit" mapstructure:"max_search_limit"`
	BM25Weight         float64  `yaml:"bm25_weight" mapstructure:"bm25_weight"`
	VectorWeight       float64  `yaml:"vector_weight" mapstructure:"vector_weight"`
}

// Default returns the built-in defaults, matching the other packages'
// own DefaultOptions/DefaultConfig/DefaultWeights constants (chunk
// sizes from internal/chunk, HNSW params from internal/vectorindex,
// RRF weights from internal/search).
func Default() Config {
	return Config{
		IgnorePatterns:     nil,
		Extensions:         nil,
		EmbeddingModel:     "",
		EmbeddingBatchSize: 32,
		MaxChunkSize:       2000,
		MinChunkSize:       200,
		ChunkOverlap:       200,
		HNSWM:              16,
		HNSWEfConstruction: 200,
		HNSWEfSearch:       100,
		DefaultSearchLimit: 10,
		MaxSearchLimit:     50,
		BM25Weight:         0.5,
		VectorWeight:       0.5,
	}
}

// Load reads `.codii.yaml` from repoRoot (if present) and layers it over
// Default(), then layers CODII_* environment variables over that,
// following spec.md §6's precedence: defaults < file < env. File-level
// ignore_patterns/extensions are additive; every other key overrides.
func Load(repoRoot string) (Config, error) {
	cfg := Default()

	path := filepath.Join(repoRoot, ".codii.yaml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no project config; defaults stand
	case err != nil:
		return Config{}, codiierrors.IOError("reading .codii.yaml", err)
	default:
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, codiierrors.ConfigError("parsing .codii.yaml", err)
		}
		cfg.mergeFile(file)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile layers file's non-zero scalar fields over c, and appends
// file's slice fields to c's (additive, per spec.md §6).
func (c *Config) mergeFile(file Config) {
	c.IgnorePatterns = append(c.IgnorePatterns, file.IgnorePatterns...)
	c.Extensions = append(c.Extensions, file.Extensions...)

	if file.EmbeddingModel != "" {
		c.EmbeddingModel = file.EmbeddingModel
	}
	if file.EmbeddingBatchSize != 0 {
		c.EmbeddingBatchSize = file.EmbeddingBatchSize
	}
	if file.MaxChunkSize != 0 {
		c.MaxChunkSize = file.MaxChunkSize
	}
	if file.MinChunkSize != 0 {
		c.MinChunkSize = file.MinChunkSize
	}
	if file.ChunkOverlap != 0 {
		c.ChunkOverlap = file.ChunkOverlap
	}
	if file.HNSWM != 0 {
		c.HNSWM = file.HNSWM
	}
	if file.HNSWEfConstruction != 0 {
		c.HNSWEfConstruction = file.HNSWEfConstruction
	}
	if file.HNSWEfSearch != 0 {
		c.HNSWEfSearch = file.HNSWEfSearch
	}
	if file.DefaultSearchLimit != 0 {
		c.DefaultSearchLimit = file.DefaultSearchLimit
	}
	if file.MaxSearchLimit != 0 {
		c.MaxSearchLimit = file.MaxSearchLimit
	}
	if file.BM25Weight != 0 {
		c.BM25Weight = file.BM25Weight
	}
	if file.VectorWeight != 0 {
		c.VectorWeight = file.VectorWeight
	}
}

// applyEnvOverrides layers CODII_* environment variables over cfg using
// viper's env binding, highest precedence per spec.md §6.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("CODII")
	keys := []string{
		"embedding_model", "embedding_batch_size", "max_chunk_size",
		"min_chunk_size", "chunk_overlap", "hnsw_m", "hnsw_ef_construction",
		"hnsw_ef_search", "default_search_limit", "max_search_limit",
		"bm25_weight", "vector_weight",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if s := v.GetString("embedding_model"); s != "" {
		cfg.EmbeddingModel = s
	}
	if v.IsSet("embedding_batch_size") {
		cfg.EmbeddingBatchSize = v.GetInt("embedding_batch_size")
	}
	if v.IsSet("max_chunk_size") {
		cfg.MaxChunkSize = v.GetInt("max_chunk_size")
	}
	if v.IsSet("min_chunk_size") {
		cfg.MinChunkSize = v.GetInt("min_chunk_size")
	}
	if v.IsSet("chunk_overlap") {
		cfg.ChunkOverlap = v.GetInt("chunk_overlap")
	}
	if v.IsSet("hnsw_m") {
		cfg.HNSWM = v.GetInt("hnsw_m")
	}
	if v.IsSet("hnsw_ef_construction") {
		cfg.HNSWEfConstruction = v.GetInt("hnsw_ef_construction")
	}
	if v.IsSet("hnsw_ef_search") {
		cfg.HNSWEfSearch = v.GetInt("hnsw_ef_search")
	}
	if v.IsSet("default_search_limit") {
		cfg.DefaultSearchLimit = v.GetInt("default_search_limit")
	}
	if v.IsSet("max_search_limit") {
		cfg.MaxSearchLimit = v.GetInt("max_search_limit")
	}
	if v.IsSet("bm25_weight") {
		cfg.BM25Weight = v.GetFloat64("bm25_weight")
	}
	if v.IsSet("vector_weight") {
		cfg.VectorWeight = v.GetFloat64("vector_weight")
	}
}

// Validate rejects contradictory options, surfaced at operation start
// per spec.md §7's configuration-error kind, before any state mutates.
func (c Config) Validate() error {
	if c.MinChunkSize <= 0 || c.MaxChunkSize <= 0 {
		return codiierrors.ConfigError("min_chunk_size and max_chunk_size must be positive", nil)
	}
	if c.MinChunkSize > c.MaxChunkSize {
		return codiierrors.ConfigError("min_chunk_size must not exceed max_chunk_size", nil)
	}
	if c.EmbeddingBatchSize <= 0 {
		return codiierrors.ConfigError("embedding_batch_size must be positive", nil)
	}
	if c.DefaultSearchLimit <= 0 || c.MaxSearchLimit <= 0 {
		return codiierrors.ConfigError("default_search_limit and max_search_limit must be positive", nil)
	}
	if c.DefaultSearchLimit > c.MaxSearchLimit {
		return codiierrors.ConfigError("default_search_limit must not exceed max_search_limit", nil)
	}
	if c.BM25Weight < 0 || c.VectorWeight < 0 {
		return codiierrors.ConfigError("bm25_weight and vector_weight must be non-negative", nil)
	}
	return nil
}

// IndexWorkers reports the parallelism the orchestrator's chunking
// stage may use; not a .codii.yaml key, derived from the host like the
// teacher's own PerformanceConfig.IndexWorkers default.
func IndexWorkers() int {
	return runtime.NumCPU()
}
