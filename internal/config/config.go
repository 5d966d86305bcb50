package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds wren's runtime configuration: defaults, then a TOML file,
// then environment variables, applied in that order (env wins).
type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Tools    ToolsConfig    `toml:"tools"`
	Research ResearchConfig `toml:"research"`
	Observer ObserverConfig `toml:"observer"`
}

// LLMConfig points at the Ollama server and model used for chat completions.
type LLMConfig struct {
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// ToolsConfig points at the external JSON-RPC tool server.
type ToolsConfig struct {
	Endpoint string        `toml:"endpoint"`
	Timeout  time.Duration `toml:"timeout"`
}

// ResearchConfig carries the default research-loop knobs.
type ResearchConfig struct {
	Mode             string `toml:"mode"`              // "quick" | "deep"
	FetchExtractMode string `toml:"fetch_extract_mode"` // "text" | "markdown"
	MaxIter          int    `toml:"max_iter"`
}

// ObserverConfig toggles OTEL tracing.
type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied: a local Ollama server
// on its standard port, quick research mode, and the orchestrator's own
// MAX_ITER default.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.1",
			Temperature: 0.3,
		},
		Tools: ToolsConfig{
			Endpoint: "http://localhost:8765/rpc",
			Timeout:  30 * time.Second,
		},
		Research: ResearchConfig{
			Mode:             "quick",
			FetchExtractMode: "text",
			MaxIter:          5,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins). path
// defaults to "wren.toml" in the working directory; a missing file is not
// an error, since Default() already applies sane values.
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "wren.toml"
	}
	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	if v := os.Getenv("WREN_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("WREN_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("WREN_TOOLS_ENDPOINT"); v != "" {
		cfg.Tools.Endpoint = v
	}
	if v := os.Getenv("WREN_RESEARCH_MODE"); v != "" {
		cfg.Research.Mode = v
	}
	if os.Getenv("WREN_OBSERVER_ENABLED") == "true" || os.Getenv("WREN_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
