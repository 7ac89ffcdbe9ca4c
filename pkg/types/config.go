package types

import "time"

// HTTPConfig holds shared HTTP settings for requests to the GraphRAG API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "graphrag-console/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// APIConfig describes how to reach the remote GraphRAG service.
type APIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// URL is the API base URL, e.g. "https://apim-example.azure-api.net".
	URL string `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`

	// Headers are sent verbatim with every request. They usually carry the
	// Ocp-Apim-Subscription-Key or an Authorization bearer token.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`

	// UploadHeaders are applied on top of Headers for POST /data only, for
	// gateways that expect different credentials on uploads.
	UploadHeaders map[string]string `json:"upload_headers,omitempty" yaml:"upload_headers,omitempty" mapstructure:"upload_headers"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`

	// CacheTTL bounds how long an index listing is reused (default 5m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// PromptConfig holds settings for prompt generation and loading.
type PromptConfig struct {
	// Dir is the directory the generated prompt files are read from (default "./prompts").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`

	// ZipFile is the path the downloaded prompt archive is written to (default "prompts.zip").
	ZipFile string `json:"zip_file" yaml:"zip_file" mapstructure:"zip_file" validate:"required"`

	// ExtractDir is where archive entries are extracted (default ".").
	ExtractDir string `json:"extract_dir" yaml:"extract_dir" mapstructure:"extract_dir"`

	// Limit caps how many source documents the service samples (default 5).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit" validate:"min=1"`
}

// SessionConfig holds settings for the session store.
type SessionConfig struct {
	// DB is the SQLite file holding live session state.
	DB string `json:"db" yaml:"db" mapstructure:"db" validate:"required"`

	// ID selects the session; empty means the default session.
	ID string `json:"id" yaml:"id" mapstructure:"id"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=dev development prod production"`

	// File, when set, receives JSON logs with rotation.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// PipelineConfig groups all configuration for the console.
type PipelineConfig struct {
	API     APIConfig     `json:"api" yaml:"api" mapstructure:"api"`
	Prompts PromptConfig  `json:"prompts" yaml:"prompts" mapstructure:"prompts"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// Defaults used when configuration leaves a field empty.
const (
	DefaultPromptDir  = "./prompts"
	DefaultZipFile    = "prompts.zip"
	DefaultLimit      = 5
	DefaultCacheTTL   = 5 * time.Minute
	DefaultUserAgent  = "graphrag-console/0.1"
	DefaultSessionDB  = ".graphrag-console/sessions.db"
	DefaultSessionID  = "default"
	DefaultExtractDir = "."
)

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *PipelineConfig) ApplyDefaults() {
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.API.CacheTTL <= 0 {
		c.API.CacheTTL = DefaultCacheTTL
	}
	if c.Prompts.Dir == "" {
		c.Prompts.Dir = DefaultPromptDir
	}
	if c.Prompts.ZipFile == "" {
		c.Prompts.ZipFile = DefaultZipFile
	}
	if c.Prompts.ExtractDir == "" {
		c.Prompts.ExtractDir = DefaultExtractDir
	}
	if c.Prompts.Limit <= 0 {
		c.Prompts.Limit = DefaultLimit
	}
	if c.Session.DB == "" {
		c.Session.DB = DefaultSessionDB
	}
	if c.Session.ID == "" {
		c.Session.ID = DefaultSessionID
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
}
