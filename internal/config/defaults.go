package config

// defaultModels maps each provider to its default drafting model.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderOllama:    "llama3",
}

// DefaultModel returns the default model for the given provider, falling
// back to the Anthropic default for unknown providers.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderAnthropic,
		Model:          defaultModels[ProviderAnthropic],
		DataDir:        "data",
		Port:           8080,
		RateLimitRPM:   30,
		AgentID:        "fishing_agent_001",
		RecontactHours: 24,
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Auth: AuthConfig{
			Username:         "captain",
			TokenExpiryHours: 24,
		},
	}
}
