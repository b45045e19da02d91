// Package config loads pitchgraph options from flags, environment variables,
// an optional config file and a .env file.
//
// Precedence, highest first: changed flags, PITCHGRAPH_* environment
// variables, the config file, flag defaults. OPENAI_API_KEY and
// OPENAI_BASE_URL are honored as aliases for llm.api-key and llm.base-url.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PITCHGRAPH"

// Options is the complete pitchgraph configuration.
type Options struct {
	Server      *ServerOptions      `json:"server" mapstructure:"server"`
	LLM         *LLMOptions         `json:"llm" mapstructure:"llm"`
	RAG         *RAGOptions         `json:"rag" mapstructure:"rag"`
	VectorStore *VectorStoreOptions `json:"vectorstore" mapstructure:"vectorstore"`
	Reports     *ReportsOptions     `json:"reports" mapstructure:"reports"`
	Log         *LogOptions         `json:"log" mapstructure:"log"`
}

// NewOptions returns options filled with defaults.
func NewOptions() *Options {
	return &Options{
		Server:      NewServerOptions(),
		LLM:         NewLLMOptions(),
		RAG:         NewRAGOptions(),
		VectorStore: NewVectorStoreOptions(),
		Reports:     NewReportsOptions(),
		Log:         NewLogOptions(),
	}
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Server.AddFlags(fs)
	o.LLM.AddFlags(fs)
	o.RAG.AddFlags(fs)
	o.VectorStore.AddFlags(fs)
	o.Reports.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Server.Validate()...)
	errs = append(errs, o.LLM.Validate()...)
	errs = append(errs, o.RAG.Validate()...)
	errs = append(errs, o.VectorStore.Validate()...)
	errs = append(errs, o.Reports.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// secrets have no flags and are only read from the environment or the file.
var secrets = []string{
	"vectorstore.redis-password",
	"vectorstore.postgres-dsn",
	"reports.redis-password",
	"reports.postgres-dsn",
}

// Load fills o from configFile (optional), the environment and the flags in
// flags (optional), then validates the result.
func Load(o *Options, flags *pflag.FlagSet, configFile string) error {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindings := [][]string{
		{"llm.api-key", EnvPrefix + "_LLM_API_KEY", "OPENAI_API_KEY"},
		{"llm.base-url", EnvPrefix + "_LLM_BASE_URL", "OPENAI_BASE_URL"},
	}
	for _, key := range secrets {
		bindings = append(bindings, []string{key})
	}
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", b[0], err)
		}
	}

	// Only grouped option flags ("server.addr") are bound; command flags
	// such as analyze's --server would otherwise shadow a whole group.
	var bindErr error
	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr == nil && strings.Contains(f.Name, ".") {
				bindErr = v.BindPFlag(f.Name, f)
			}
		})
	}
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	if err := v.Unmarshal(o); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return o.Validate()
}

// LoadDotEnv loads KEY=VALUE pairs from files (".env" when none are given)
// into the process environment. Missing files are ignored and variables
// already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
