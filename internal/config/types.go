package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level fishcatch configuration, corresponding to .fishcatch.yml.
type Config struct {
	Provider       ProviderType    `yaml:"provider" koanf:"provider"`
	Model          string          `yaml:"model" koanf:"model"`
	DataDir        string          `yaml:"data_dir" koanf:"data_dir"`
	Port           int             `yaml:"port" koanf:"port"`
	RateLimitRPM   int             `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	AgentID        string          `yaml:"agent_id" koanf:"agent_id"`
	RecontactHours int             `yaml:"recontact_hours" koanf:"recontact_hours"`
	SMTP           SMTPConfig      `yaml:"smtp" koanf:"smtp"`
	Auth           AuthConfig      `yaml:"auth" koanf:"auth"`
	Canneries      []CannerySource `yaml:"canneries" koanf:"canneries"`
}

// SMTPConfig holds the outbound mail settings used for email-to-SMS delivery.
type SMTPConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     int    `yaml:"port" koanf:"port"`
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password" koanf:"password"`
	From     string `yaml:"from" koanf:"from"`
}

// AuthConfig holds the single-operator login and JWT settings.
type AuthConfig struct {
	Username         string `yaml:"username" koanf:"username"`
	Password         string `yaml:"password" koanf:"password"`
	JWTSecret        string `yaml:"jwt_secret" koanf:"jwt_secret"`
	TokenExpiryHours int    `yaml:"token_expiry_hours" koanf:"token_expiry_hours"`
}

// CannerySource is one cannery price page to scrape.
type CannerySource struct {
	Name string `yaml:"name" koanf:"name"`
	URL  string `yaml:"url" koanf:"url"`
}
