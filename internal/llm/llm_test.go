package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"testwright/internal/models"
)

func TestBuildGeneratePrompt(t *testing.T) {
	t.Run("with full context", func(t *testing.T) {
		system, user := buildGeneratePrompt(GenerateRequest{
			FeatureName:  "Checkout",
			Description:  "Cart checkout flow",
			Selectors:    []string{"checkout-btn", "cart-total"},
			APIEndpoints: []string{"/api/orders"},
			RiskLevel:    models.RiskCritical,
		})

		assert.Contains(t, system, `"testName"`)
		assert.Contains(t, system, `"source"`)
		assert.Contains(t, system, "JSON")

		assert.Contains(t, user, "Feature: Checkout")
		assert.Contains(t, user, "checkout-btn, cart-total")
		assert.Contains(t, user, "/api/orders")
		assert.Contains(t, user, "Risk level: critical")
	})

	t.Run("minimal request", func(t *testing.T) {
		_, user := buildGeneratePrompt(GenerateRequest{FeatureName: "Footer"})

		assert.Contains(t, user, "Feature: Footer")
		assert.NotContains(t, user, "Selectors:")
		assert.NotContains(t, user, "API endpoints:")
	})

	t.Run("system prompt forbids known rejection patterns", func(t *testing.T) {
		system, _ := buildGeneratePrompt(GenerateRequest{FeatureName: "x"})

		assert.Contains(t, system, "edge case")
		assert.Contains(t, system, "data-testid")
		assert.Contains(t, system, "numeric waits")
	})
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}
