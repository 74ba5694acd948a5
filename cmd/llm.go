package cmd

import (
	"os"

	"github.com/spf13/viper"

	"testwright/internal/llm"
)

// newLLMProvider creates an LLM provider from config/env, or returns nil if no API key is configured.
func newLLMProvider() llm.Provider {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}
	return llm.NewAnthropicProvider(apiKey, viper.GetString("anthropic.model"))
}
