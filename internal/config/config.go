package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	EmbeddingDims  int    `toml:"embedding_dims"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type Neo4jConfig struct {
	URI             string `toml:"uri"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	StagingDatabase string `toml:"staging_database"`
	GraphDatabase   string `toml:"graph_database"`
}

type PipelineConfig struct {
	TopK           int   `toml:"top_k"`
	Concurrency    int   `toml:"concurrency"`
	EmbedBatchSize int   `toml:"embed_batch_size"`
	TimeoutSeconds int   `toml:"timeout_seconds"`
	RetryAttempts  int   `toml:"retry_attempts"`
	ShuffleSeed    int64 `toml:"shuffle_seed"`
}

type NobelConfig struct {
	BaseURL  string `toml:"base_url"`
	YearFrom int    `toml:"year_from"`
	YearTo   int    `toml:"year_to"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type ResolutionPrompts struct {
	Arbiter string `toml:"arbiter"`
}

type SummaryPrompts struct {
	Scholar     string `toml:"scholar"`
	LineageName string `toml:"lineage_name"`
}

type Config struct {
	LogMode    string            `toml:"log_mode"`
	LLM        LLMConfig         `toml:"llm"`
	Neo4j      Neo4jConfig       `toml:"neo4j"`
	Pipeline   PipelineConfig    `toml:"pipeline"`
	Nobel      NobelConfig       `toml:"nobel"`
	Data       DataConfig        `toml:"data"`
	Server     ServerConfig      `toml:"server"`
	Resolution ResolutionPrompts `toml:"resolution"`
	Summary    SummaryPrompts    `toml:"summary"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a usable configuration when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Neo4j.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) applyDefaults() {
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434"
		}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-oss:latest"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "nomic-embed-text"
	}
	if c.LLM.EmbeddingDims == 0 {
		c.LLM.EmbeddingDims = 768
	}
	if c.Neo4j.URI == "" {
		c.Neo4j.URI = "bolt://localhost:7687"
	}
	if c.Neo4j.User == "" {
		c.Neo4j.User = "neo4j"
	}
	if c.Neo4j.StagingDatabase == "" {
		c.Neo4j.StagingDatabase = "staging"
	}
	if c.Neo4j.GraphDatabase == "" {
		c.Neo4j.GraphDatabase = "neo4j"
	}
	if c.Pipeline.TopK == 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.Concurrency == 0 {
		c.Pipeline.Concurrency = 8
	}
	if c.Pipeline.EmbedBatchSize == 0 {
		c.Pipeline.EmbedBatchSize = 64
	}
	if c.Pipeline.TimeoutSeconds == 0 {
		c.Pipeline.TimeoutSeconds = 60
	}
	if c.Pipeline.RetryAttempts == 0 {
		c.Pipeline.RetryAttempts = 3
	}
	if c.Nobel.BaseURL == "" {
		c.Nobel.BaseURL = "https://api.nobelprize.org/2.1"
	}
	if c.Nobel.YearFrom == 0 {
		c.Nobel.YearFrom = 1901
	}
	if c.Nobel.YearTo == 0 {
		c.Nobel.YearTo = 2022
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "./data"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Resolution.Arbiter == "" {
		c.Resolution.Arbiter = DefaultArbiterPrompt
	}
	if c.Summary.Scholar == "" {
		c.Summary.Scholar = DefaultScholarSummaryPrompt
	}
	if c.Summary.LineageName == "" {
		c.Summary.LineageName = DefaultLineageNamePrompt
	}
}
