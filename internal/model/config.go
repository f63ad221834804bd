package model

// Config holds all claimassist configuration.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge" mapstructure:"knowledge"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the model used by the analysis stages.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // mistral, openai, anthropic, ollama, gemini
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds, per model invocation
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ExtractionConfig configures the model-assisted field extractor.
type ExtractionConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Model       string  `yaml:"model,omitempty" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	InputLimit  int     `yaml:"input_limit" mapstructure:"input_limit"` // characters sent to the model
}

// KnowledgeConfig locates the static knowledge files.
type KnowledgeConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	CodesFile   string `yaml:"codes_file" mapstructure:"codes_file"`
	Regulations string `yaml:"regulations_file" mapstructure:"regulations_file"`
	Templates   string `yaml:"templates_file" mapstructure:"templates_file"`
}

// CacheConfig configures the extraction result cache.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir              string `yaml:"dir" mapstructure:"dir"`
	MemoryTTLMinutes int    `yaml:"memory_ttl_minutes" mapstructure:"memory_ttl_minutes"`
	DiskTTLHours     int    `yaml:"disk_ttl_hours" mapstructure:"disk_ttl_hours"`
}

// ConcurrencyConfig bounds parallel batch runs.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles model invocations per provider.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig holds proxy settings for the HTTP based providers and the
// limits used when a denial letter is fetched from a URL.
type HTTPConfig struct {
	Timeout      int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls where letters are written.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "mistral",
			Model:       "mistral-small-latest",
			Timeout:     120,
			MaxTokens:   4096,
			Temperature: 0.3,
		},
		Extraction: ExtractionConfig{
			Enabled:     true,
			MaxTokens:   1500,
			Temperature: 0.1,
			InputLimit:  4000,
		},
		Knowledge: KnowledgeConfig{
			Dir:         "./knowledge",
			CodesFile:   "denial_codes.json",
			Regulations: "regulations.md",
			Templates:   "appeal_templates.md",
		},
		Cache: CacheConfig{
			Enabled:          true,
			Dir:              ".claimassist-cache",
			MemoryTTLMinutes: 30,
			DiskTTLHours:     24,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		HTTP: HTTPConfig{
			Timeout:      30,
			UserAgent:    "claimassist/1.0",
			MaxBodyBytes: 10 << 20,
		},
		Output: OutputConfig{
			Dir: "./output",
		},
	}
}
