// Package config loads application configuration from a YAML file with
// sensible local-first defaults. A missing config file is not an error;
// flags override file values in main.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OllamaConfig holds connection details for a local Ollama instance.
// No credential: local Ollama does not authenticate.
type OllamaConfig struct {
	BaseURL          string `yaml:"base_url"`
	EmbeddingModel   string `yaml:"embedding_model"`
	CompletionModel  string `yaml:"completion_model"`
	EmbedConcurrency int    `yaml:"embed_concurrency"`
}

// OpenAIConfig holds connection details for an OpenAI-compatible endpoint.
// The API key is read from the environment variable named by APIKeyEnv.
type OpenAIConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKeyEnv       string `yaml:"api_key_env"`
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionModel string `yaml:"completion_model"`
}

// ChunkerConfig configures how the document is split before embedding.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// ChatConfig configures retrieval and the conversation loop.
type ChatConfig struct {
	TopK          int    `yaml:"top_k"`
	EmbeddingDims int    `yaml:"embedding_dims"`
	Preamble      string `yaml:"preamble"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// Config is the root application configuration.
type Config struct {
	DocumentPath string        `yaml:"document_path"`
	Provider     string        `yaml:"provider"` // "ollama" or "openai"
	ExtractorURL string        `yaml:"extractor_url"`
	Ollama       OllamaConfig  `yaml:"ollama"`
	OpenAI       OpenAIConfig  `yaml:"openai"`
	Chunker      ChunkerConfig `yaml:"chunker"`
	Chat         ChatConfig    `yaml:"chat"`
}

// DefaultPreamble is the assistant persona sent with every prompt.
const DefaultPreamble = "You are 'Perso', a knowledgeable personal assistant. " +
	"Answer questions accurately based on the provided context. " +
	"If the context doesn't contain relevant information, say so honestly."

// Load reads the config at path. A missing file yields defaults; only a
// present-but-invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the local-first configuration: Ollama on localhost,
// knowledge.pdf in the working directory.
func Default() *Config {
	cfg := &Config{
		DocumentPath: "knowledge.pdf",
		Provider:     "ollama",
		ExtractorURL: "http://localhost:8081",
	}
	applyDefaults(cfg)
	return cfg
}

// APIKey resolves the OpenAI credential from the configured environment
// variable. Empty when unset.
func (c *OpenAIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

func applyDefaults(cfg *Config) {
	if cfg.DocumentPath == "" {
		cfg.DocumentPath = "knowledge.pdf"
	}
	if cfg.Provider == "" {
		cfg.Provider = "ollama"
	}
	if cfg.ExtractorURL == "" {
		cfg.ExtractorURL = "http://localhost:8081"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.EmbeddingModel == "" {
		cfg.Ollama.EmbeddingModel = "nomic-embed-text"
	}
	if cfg.Ollama.CompletionModel == "" {
		cfg.Ollama.CompletionModel = "llama3:latest"
	}
	if cfg.Ollama.EmbedConcurrency <= 0 {
		cfg.Ollama.EmbedConcurrency = 4
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.CompletionModel == "" {
		cfg.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if cfg.Chunker.Size <= 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Overlap < 0 || cfg.Chunker.Overlap >= cfg.Chunker.Size {
		cfg.Chunker.Overlap = 100
	}
	if cfg.Chat.TopK <= 0 {
		cfg.Chat.TopK = 3
	}
	if cfg.Chat.EmbeddingDims <= 0 {
		cfg.Chat.EmbeddingDims = 768
	}
	if cfg.Chat.Preamble == "" {
		cfg.Chat.Preamble = DefaultPreamble
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Provider {
	case "ollama":
	case "openai":
		if c.OpenAI.APIKey() == "" {
			return fmt.Errorf("provider openai requires %s to be set", c.OpenAI.APIKeyEnv)
		}
	default:
		return fmt.Errorf("unknown provider %q (want ollama or openai)", c.Provider)
	}
	return nil
}
