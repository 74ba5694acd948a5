package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedSpec = `// Tests for the checkout feature
// Covers happy path and edge cases
describe('Checkout flow end to end', () => {
  beforeEach(() => {
    cy.visit('/checkout');
  });

  // Happy path
  it('completes checkout with a valid cart', () => {
    cy.get('[data-testid=cart-total]').should('be.visible');
    expect(total).toEqual(42);
    expect(items).toHaveLength(2);
  });

  // Edge case: empty cart is rejected with an error
  it('shows an error for an empty cart submission', () => {
    cy.get('[data-testid=submit-order]').click();
    expect(message).toContain('error');
    expect(valid).toBe(false);
  });
});
`

func TestScore_WellFormedSpec(t *testing.T) {
	v := NewScorer().Score(wellFormedSpec)

	assert.Equal(t, 100, v.Syntax)
	assert.Equal(t, 100, v.Coverage)
	assert.Equal(t, 100, v.Assertions)
	assert.Equal(t, 100, v.Maintainability)
	assert.Equal(t, 100, v.BestPractices)
	assert.Equal(t, 100, v.Overall)
	assert.Empty(t, v.Issues)
}

func TestScore_MissingStructure(t *testing.T) {
	src := "const result = doSomething()\ncheck(result)\nmaybe broken\n"
	v := NewScorer().Score(src)

	assert.LessOrEqual(t, v.Syntax, 40, "missing suite and test case blocks cost 30 each")
	assert.Equal(t, 50, v.Assertions, "zero assertions is a 50 point deduction")

	errors := 0
	for _, issue := range v.Issues {
		if issue.Severity == SeverityError {
			errors++
		}
	}
	assert.Equal(t, 3, errors, "missing suite, missing test case, and zero assertions are all errors")
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer()
	first := s.Score(wellFormedSpec)
	second := s.Score(wellFormedSpec)
	assert.Equal(t, first, second, "scoring the same source twice must be identical")
}

func TestScore_OverallIsWeightedBlend(t *testing.T) {
	v := NewScorer().Score("const result = doSomething()\ncheck(result)\nmaybe broken\n")

	expected := int(weightedSum(v))
	assert.Equal(t, expected, v.Overall)
	assert.GreaterOrEqual(t, v.Overall, 0)
	assert.LessOrEqual(t, v.Overall, 100)
}

// weightedSum recomputes the blend the long way for cross-checking.
func weightedSum(v *Vector) float64 {
	sum := 0.20*float64(v.Syntax) +
		0.25*float64(v.Coverage) +
		0.25*float64(v.Assertions) +
		0.15*float64(v.Maintainability) +
		0.15*float64(v.BestPractices)
	// round half away from zero, matching math.Round
	return float64(int(sum + 0.5))
}

func TestScore_Deductions(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		check   func(t *testing.T, v *Vector)
	}{
		{
			name:   "mixed quotes",
			source: "describe('Cart page behaviors', () => {\n  it(\"adds an item to the cart\", () => {\n    expect(count).toEqual(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assertHasIssue(t, v, "syntax", "mixed single and double quote styles")
			},
		},
		{
			name:   "hardcoded wait",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    cy.wait(3000);\n    expect(count).toEqual(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assert.Equal(t, 85, v.BestPractices)
				assertHasIssue(t, v, "best-practices", "hardcoded numeric waits; prefer waiting on conditions")
			},
		},
		{
			name:   "fragile selectors without data-testid",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    cy.get('.submit-btn').click();\n    expect(count).toEqual(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assert.Equal(t, 80, v.BestPractices)
			},
		},
		{
			name:   "magic number outside wait context",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    expect(page.total).toEqual(12345);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assertHasIssue(t, v, "maintainability", "magic numbers outside timeout/wait context")
			},
		},
		{
			name:   "magic number in wait context is allowed",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    cy.visit('/cart', { timeout: 10000 });\n    expect(count).toEqual(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				for _, issue := range v.Issues {
					assert.NotEqual(t, "magic numbers outside timeout/wait context", issue.Message)
				}
			},
		},
		{
			name:   "weak assertions only",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    expect(button).toBeVisible();\n    expect(list).toExist();\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assertHasIssue(t, v, "assertions", "only existence/visibility assertions; no value checks")
			},
		},
		{
			name:   "shared mutable state outside test blocks",
			source: "describe('Cart page behaviors', () => {\n  let sharedCart = [];\n  it('adds an item to the cart list', () => {\n    expect(sharedCart).toHaveLength(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assert.Equal(t, 85, v.BestPractices)
			},
		},
		{
			name:   "hardcoded absolute URL",
			source: "describe('Cart page behaviors', () => {\n  it('adds an item to the cart list', () => {\n    cy.visit('http://localhost/cart');\n    expect(count).toEqual(1);\n  });\n});\n",
			check: func(t *testing.T, v *Vector) {
				assertHasIssue(t, v, "maintainability", "hardcoded absolute URLs; use baseUrl configuration")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewScorer().Score(tt.source)
			tt.check(t, v)
		})
	}
}

func TestScore_SubScoresWithinRange(t *testing.T) {
	sources := []string{wellFormedSpec, "", "garbage text with no structure at all", "it('x', () => {})"}
	for _, src := range sources {
		v := NewScorer().Score(src)
		for _, score := range []int{v.Syntax, v.Coverage, v.Assertions, v.Maintainability, v.BestPractices, v.Overall} {
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-10))
	assert.Equal(t, 0, clamp(0))
	assert.Equal(t, 55, clamp(55))
	assert.Equal(t, 100, clamp(150))
}

func TestRenderReport(t *testing.T) {
	v := NewScorer().Score("no structure here")
	report := RenderReport("checkout.cy.js", v)

	require.Contains(t, report, "# Test Quality Report: checkout.cy.js")
	assert.Contains(t, report, "| Syntax |")
	assert.Contains(t, report, "## Errors")
}

func assertHasIssue(t *testing.T, v *Vector, category, message string) {
	t.Helper()
	for _, issue := range v.Issues {
		if issue.Category == category && issue.Message == message {
			return
		}
	}
	t.Errorf("expected issue [%s] %q, got %+v", category, message, v.Issues)
}
