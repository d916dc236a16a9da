package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the lifetime of issued access tokens.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all embedding-provider settings.
type LLMConfig struct {
	// Provider selects which embedding backend to use.
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`

	// GeminiAPIKey is required when Provider is "gemini".
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`

	// OpenAIAPIKey is required when Provider is "openai".
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`

	// EmbeddingModel is the provider-specific model identifier.
	EmbeddingModel string `mapstructure:"embedding_model" validate:"required"`

	// MaxRetries bounds retry attempts for transient provider errors.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay for exponential backoff.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// TaskConfig contains background task processing settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0,lte=32"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`

	// StuckTaskAgeMinutes is how old a processing task must be before
	// the monitor flags it as stuck.
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// AnalysisConfig contains transcript-analysis tuning settings.
type AnalysisConfig struct {
	// CompletionThreshold is the fraction of a lesson's items that must
	// be credited before the lesson is marked complete.
	CompletionThreshold float64 `mapstructure:"completion_threshold" validate:"required,gt=0,lte=1"`

	// LookbackSessions is how many recent analyses feed prior credit
	// and context continuity.
	LookbackSessions int `mapstructure:"lookback_sessions" validate:"required,gt=0,lte=50"`

	// MaxHighlights caps the highlights carried into a new session's context.
	MaxHighlights int `mapstructure:"max_highlights" validate:"required,gt=0,lte=20"`

	// MaxRecommendations caps the recommendations carried into a new
	// session's context.
	MaxRecommendations int `mapstructure:"max_recommendations" validate:"required,gt=0,lte=20"`
}
