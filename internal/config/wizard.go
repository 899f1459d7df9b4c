package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .fishcatch.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to fishcatch! Let's set up your outreach assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for message drafting",
		Items: []string{"anthropic", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for the catch database",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. API port.
	portPrompt := promptui.Prompt{
		Label:    "API port",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 4. Cannery price pages.
	canneryPrompt := promptui.Prompt{
		Label:   "Cannery price page URLs (comma-separated, leave blank to add later)",
		Default: "",
	}
	canneryStr, err := canneryPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cannery urls: %w", err)
	}
	for i, url := range splitAndTrim(canneryStr) {
		cfg.Canneries = append(cfg.Canneries, CannerySource{
			Name: fmt.Sprintf("cannery_%d", i+1),
			URL:  url,
		})
	}

	// 5. SMTP account for email-to-SMS delivery.
	smtpUserPrompt := promptui.Prompt{
		Label:   "Gmail address for sending texts (leave blank to only draft)",
		Default: "",
	}
	if cfg.SMTP.Username, err = smtpUserPrompt.Run(); err != nil {
		return nil, fmt.Errorf("smtp username: %w", err)
	}
	if cfg.SMTP.Username != "" {
		cfg.SMTP.From = cfg.SMTP.Username
		smtpPassPrompt := promptui.Prompt{
			Label: "Gmail app password",
			Mask:  '*',
		}
		if cfg.SMTP.Password, err = smtpPassPrompt.Run(); err != nil {
			return nil, fmt.Errorf("smtp password: %w", err)
		}
	}

	// 6. Operator login.
	userPrompt := promptui.Prompt{
		Label:   "Operator username",
		Default: cfg.Auth.Username,
	}
	if cfg.Auth.Username, err = userPrompt.Run(); err != nil {
		return nil, fmt.Errorf("username: %w", err)
	}
	passPrompt := promptui.Prompt{
		Label: "Operator password",
		Mask:  '*',
	}
	if cfg.Auth.Password, err = passPrompt.Run(); err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	// Login only enables with a signing secret alongside the password.
	if cfg.Auth.Password != "" {
		if cfg.Auth.JWTSecret, err = randomSecret(); err != nil {
			return nil, fmt.Errorf("generating jwt secret: %w", err)
		}
	}

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running fishcatch serve.\n", envVar)
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

// randomSecret returns a fresh hex-encoded 256-bit token signing key.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
