package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag"
	vstore "github.com/smallnest/pitchgraph/rag/store"
	"github.com/smallnest/pitchgraph/store/backend"
	"github.com/spf13/pflag"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr            string        `json:"addr" mapstructure:"addr"`
	Mode            string        `json:"mode" mapstructure:"mode"`
	RequestTimeout  time.Duration `json:"request-timeout" mapstructure:"request-timeout"`
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
	AllowOrigins    []string      `json:"allow-origins" mapstructure:"allow-origins"`
}

// NewServerOptions returns the server defaults.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		Addr:            ":8000",
		Mode:            "release",
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowOrigins:    []string{"*"},
	}
}

// AddFlags adds flags for server options to the specified FlagSet.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "server.addr", o.Addr, "Address the HTTP server listens on.")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin mode: debug, release or test.")
	fs.DurationVar(&o.RequestTimeout, "server.request-timeout", o.RequestTimeout, "Timeout for one analysis request.")
	fs.DurationVar(&o.ShutdownTimeout, "server.shutdown-timeout", o.ShutdownTimeout, "Grace period for in-flight requests on shutdown.")
	fs.StringSliceVar(&o.AllowOrigins, "server.allow-origins", o.AllowOrigins, "CORS origins allowed to call the API.")
}

// Validate validates the server options.
func (o *ServerOptions) Validate() []error {
	var errs []error
	if o.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if !slices.Contains([]string{"debug", "release", "test"}, o.Mode) {
		errs = append(errs, fmt.Errorf("server.mode %q is not one of debug, release, test", o.Mode))
	}
	if o.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request-timeout must be positive"))
	}
	return errs
}

// LLMOptions configures the hosted model.
type LLMOptions struct {
	Provider       string  `json:"provider" mapstructure:"provider"`
	APIKey         string  `json:"-" mapstructure:"api-key"`
	BaseURL        string  `json:"base-url" mapstructure:"base-url"`
	Model          string  `json:"model" mapstructure:"model"`
	EmbeddingModel string  `json:"embedding-model" mapstructure:"embedding-model"`
	Temperature    float64 `json:"temperature" mapstructure:"temperature"`
	// MaxAttempts and CallTimeout apply to each panel analyst call.
	MaxAttempts int           `json:"max-attempts" mapstructure:"max-attempts"`
	CallTimeout time.Duration `json:"call-timeout" mapstructure:"call-timeout"`
}

// NewLLMOptions returns the model defaults.
func NewLLMOptions() *LLMOptions {
	return &LLMOptions{
		Provider:       provider.OpenAI,
		Model:          "gpt-4o",
		EmbeddingModel: "text-embedding-ada-002",
		Temperature:    analysis.DefaultTemperature,
		MaxAttempts:    1,
	}
}

// AddFlags adds flags for LLM options to the specified FlagSet.
// The API key has no flag; it comes from OPENAI_API_KEY or the config file.
func (o *LLMOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Provider, "llm.provider", o.Provider, "Model provider: openai or goopenai.")
	fs.StringVar(&o.BaseURL, "llm.base-url", o.BaseURL, "Override the OpenAI-compatible API base URL.")
	fs.StringVar(&o.Model, "llm.model", o.Model, "Chat model name.")
	fs.StringVar(&o.EmbeddingModel, "llm.embedding-model", o.EmbeddingModel, "Embedding model name.")
	fs.Float64Var(&o.Temperature, "llm.temperature", o.Temperature, "Sampling temperature.")
	fs.IntVar(&o.MaxAttempts, "llm.max-attempts", o.MaxAttempts, "Attempts per panel analyst call; 1 disables retries.")
	fs.DurationVar(&o.CallTimeout, "llm.call-timeout", o.CallTimeout, "Timeout for each panel analyst call; 0 means no limit.")
}

// Validate validates the LLM options. A missing key is not an error here.
func (o *LLMOptions) Validate() []error {
	var errs []error
	if !slices.Contains([]string{provider.OpenAI, provider.GoOpenAI}, o.Provider) {
		errs = append(errs, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, o.Provider))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, errors.New("llm.temperature must be between 0 and 2"))
	}
	if o.MaxAttempts < 1 {
		errs = append(errs, errors.New("llm.max-attempts must be at least 1"))
	}
	if o.CallTimeout < 0 {
		errs = append(errs, errors.New("llm.call-timeout must not be negative"))
	}
	return errs
}

// ProviderConfig converts the options for provider.New.
func (o *LLMOptions) ProviderConfig() provider.Config {
	return provider.Config{
		Provider:       o.Provider,
		APIKey:         o.APIKey,
		BaseURL:        o.BaseURL,
		Model:          o.Model,
		EmbeddingModel: o.EmbeddingModel,
	}
}

// RAGOptions configures chunking and retrieval.
type RAGOptions struct {
	ChunkSize      int    `json:"chunk-size" mapstructure:"chunk-size"`
	ChunkOverlap   int    `json:"chunk-overlap" mapstructure:"chunk-overlap"`
	TopK           int    `json:"top-k" mapstructure:"top-k"`
	Query          string `json:"query" mapstructure:"query"`
	CoverageTarget int    `json:"coverage-target" mapstructure:"coverage-target"`
}

// NewRAGOptions returns the retrieval defaults.
func NewRAGOptions() *RAGOptions {
	return &RAGOptions{
		ChunkSize:      rag.DefaultChunkSize,
		ChunkOverlap:   rag.DefaultChunkOverlap,
		TopK:           rag.DefaultK,
		Query:          rag.DefaultQuery,
		CoverageTarget: rag.DefaultCoverageTarget,
	}
}

// AddFlags adds flags for RAG options to the specified FlagSet.
func (o *RAGOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.ChunkSize, "rag.chunk-size", o.ChunkSize, "Size of text chunks.")
	fs.IntVar(&o.ChunkOverlap, "rag.chunk-overlap", o.ChunkOverlap, "Overlap between chunks.")
	fs.IntVar(&o.TopK, "rag.top-k", o.TopK, "Number of chunks retrieved as context.")
	fs.StringVar(&o.Query, "rag.query", o.Query, "Query used to retrieve the context.")
	fs.IntVar(&o.CoverageTarget, "rag.coverage-target", o.CoverageTarget, "Characters that count as a complete pitch.")
}

// Validate validates the RAG options.
func (o *RAGOptions) Validate() []error {
	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, errors.New("rag.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, errors.New("rag.chunk-overlap must be in [0, chunk-size)"))
	}
	if o.TopK <= 0 {
		errs = append(errs, errors.New("rag.top-k must be positive"))
	}
	if o.CoverageTarget <= 0 {
		errs = append(errs, errors.New("rag.coverage-target must be positive"))
	}
	return errs
}

// VectorStoreOptions selects the ephemeral vector store.
type VectorStoreOptions struct {
	Kind          string        `json:"kind" mapstructure:"kind"`
	RedisAddr     string        `json:"redis-addr" mapstructure:"redis-addr"`
	RedisPassword string        `json:"-" mapstructure:"redis-password"`
	RedisDB       int           `json:"redis-db" mapstructure:"redis-db"`
	RedisPrefix   string        `json:"redis-prefix" mapstructure:"redis-prefix"`
	RedisTTL      time.Duration `json:"redis-ttl" mapstructure:"redis-ttl"`
	PostgresDSN   string        `json:"-" mapstructure:"postgres-dsn"`
	PostgresTable string        `json:"postgres-table" mapstructure:"postgres-table"`
}

// NewVectorStoreOptions returns the vector store defaults.
func NewVectorStoreOptions() *VectorStoreOptions {
	return &VectorStoreOptions{
		Kind:          vstore.KindMemory,
		RedisAddr:     "127.0.0.1:6379",
		RedisPrefix:   "pitchgraph:",
		RedisTTL:      10 * time.Minute,
		PostgresTable: vstore.DefaultPgVectorTable,
	}
}

// AddFlags adds flags for vector store options to the specified FlagSet.
func (o *VectorStoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Kind, "vectorstore.kind", o.Kind, "Vector store: memory, redis or pgvector.")
	fs.StringVar(&o.RedisAddr, "vectorstore.redis-addr", o.RedisAddr, "Redis address for the redis store.")
	fs.IntVar(&o.RedisDB, "vectorstore.redis-db", o.RedisDB, "Redis database for the redis store.")
	fs.StringVar(&o.RedisPrefix, "vectorstore.redis-prefix", o.RedisPrefix, "Key prefix for the redis store.")
	fs.DurationVar(&o.RedisTTL, "vectorstore.redis-ttl", o.RedisTTL, "Expiry of abandoned redis collections.")
	fs.StringVar(&o.PostgresTable, "vectorstore.postgres-table", o.PostgresTable, "Table for the pgvector store.")
}

// Validate validates the vector store options.
func (o *VectorStoreOptions) Validate() []error {
	var errs []error
	switch o.Kind {
	case vstore.KindMemory, vstore.KindRedis:
	case vstore.KindPgVector:
		if o.PostgresDSN == "" {
			errs = append(errs, errors.New("vectorstore.postgres-dsn is required for pgvector"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", vstore.ErrUnknownStore, o.Kind))
	}
	return errs
}

// StoreConfig converts the options for the vector store factory.
func (o *VectorStoreOptions) StoreConfig() vstore.Config {
	return vstore.Config{
		Kind: o.Kind,
		Redis: vstore.RedisConfig{
			Addr:     o.RedisAddr,
			Password: o.RedisPassword,
			DB:       o.RedisDB,
			Prefix:   o.RedisPrefix,
			TTL:      o.RedisTTL,
		},
		Postgres: vstore.PostgresConfig{
			DSN:   o.PostgresDSN,
			Table: o.PostgresTable,
		},
	}
}

// ReportsOptions selects where reports are kept.
type ReportsOptions struct {
	Backend       string        `json:"backend" mapstructure:"backend"`
	SQLitePath    string        `json:"sqlite-path" mapstructure:"sqlite-path"`
	RedisAddr     string        `json:"redis-addr" mapstructure:"redis-addr"`
	RedisPassword string        `json:"-" mapstructure:"redis-password"`
	RedisDB       int           `json:"redis-db" mapstructure:"redis-db"`
	RedisPrefix   string        `json:"redis-prefix" mapstructure:"redis-prefix"`
	RedisTTL      time.Duration `json:"redis-ttl" mapstructure:"redis-ttl"`
	PostgresDSN   string        `json:"-" mapstructure:"postgres-dsn"`
	PostgresTable string        `json:"postgres-table" mapstructure:"postgres-table"`
}

// NewReportsOptions returns the report store defaults.
func NewReportsOptions() *ReportsOptions {
	return &ReportsOptions{
		Backend:       backend.KindMemory,
		SQLitePath:    "pitchgraph.db",
		RedisAddr:     "127.0.0.1:6379",
		RedisPrefix:   "pitchgraph:",
		PostgresTable: "reports",
	}
}

// AddFlags adds flags for report options to the specified FlagSet.
func (o *ReportsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Backend, "reports.backend", o.Backend, "Report store: memory, sqlite, redis or postgres.")
	fs.StringVar(&o.SQLitePath, "reports.sqlite-path", o.SQLitePath, "Database file for the sqlite backend.")
	fs.StringVar(&o.RedisAddr, "reports.redis-addr", o.RedisAddr, "Redis address for the redis backend.")
	fs.IntVar(&o.RedisDB, "reports.redis-db", o.RedisDB, "Redis database for the redis backend.")
	fs.StringVar(&o.RedisPrefix, "reports.redis-prefix", o.RedisPrefix, "Key prefix for the redis backend.")
	fs.DurationVar(&o.RedisTTL, "reports.redis-ttl", o.RedisTTL, "Report expiry for the redis backend, 0 keeps them.")
	fs.StringVar(&o.PostgresTable, "reports.postgres-table", o.PostgresTable, "Table for the postgres backend.")
}

// Validate validates the report options.
func (o *ReportsOptions) Validate() []error {
	var errs []error
	switch o.Backend {
	case backend.KindMemory, backend.KindRedis:
	case backend.KindSQLite:
		if o.SQLitePath == "" {
			errs = append(errs, errors.New("reports.sqlite-path is required for sqlite"))
		}
	case backend.KindPostgres:
		if o.PostgresDSN == "" {
			errs = append(errs, errors.New("reports.postgres-dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", backend.ErrUnknownBackend, o.Backend))
	}
	return errs
}

// BackendConfig converts the options for backend.Open.
func (o *ReportsOptions) BackendConfig() backend.Config {
	return backend.Config{
		Kind:          o.Backend,
		SQLitePath:    o.SQLitePath,
		RedisAddr:     o.RedisAddr,
		RedisPassword: o.RedisPassword,
		RedisDB:       o.RedisDB,
		RedisPrefix:   o.RedisPrefix,
		RedisTTL:      o.RedisTTL,
		PostgresDSN:   o.PostgresDSN,
		PostgresTable: o.PostgresTable,
	}
}

// LogOptions configures logging.
type LogOptions struct {
	Level string `json:"level" mapstructure:"level"`
}

// NewLogOptions returns the logging defaults.
func NewLogOptions() *LogOptions {
	return &LogOptions{Level: "info"}
}

// AddFlags adds flags for log options to the specified FlagSet.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level: debug, info, warn, error or none.")
}

// Validate validates the log options.
func (o *LogOptions) Validate() []error {
	if _, err := log.ParseLevel(o.Level); err != nil {
		return []error{err}
	}
	return nil
}
