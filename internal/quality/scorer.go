package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Severity classifies how serious a quality issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single finding surfaced to the human reviewer.
type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Vector is the five-dimensional quality score of a test's source text.
// Sub-scores are clamped to [0,100]; Overall is the fixed weighted blend.
type Vector struct {
	Syntax          int     `json:"syntax"`
	Coverage        int     `json:"coverage"`
	Assertions      int     `json:"assertions"`
	Maintainability int     `json:"maintainability"`
	BestPractices   int     `json:"bestPractices"`
	Overall         int     `json:"overallScore"`
	Issues          []Issue `json:"issues"`
}

// Fixed sub-score weights for the overall blend.
const (
	weightSyntax          = 0.20
	weightCoverage        = 0.25
	weightAssertions      = 0.25
	weightMaintainability = 0.15
	weightBestPractices   = 0.15
)

// Pattern matching over raw source is deliberate: cheap, deterministic,
// and provider-agnostic. This is a heuristic, not a parser.
var (
	suiteRe    = regexp.MustCompile(`\b(?:describe|context|suite)\s*\(`)
	testCaseRe = regexp.MustCompile(`\b(?:it|test)\s*\(`)

	edgeCaseRe    = regexp.MustCompile(`(?i)edge|boundary|limit|empty|null|undefined|invalid`)
	errorHandleRe = regexp.MustCompile(`(?i)\berror\b|\bfail|\bcatch\b|\bthrow\b|\breject|\b4\d\d\b|\b5\d\d\b`)
	setupHookRe   = regexp.MustCompile(`\b(?:beforeEach|beforeAll|before|setup)\s*\(`)

	assertionRe    = regexp.MustCompile(`\bexpect\s*\(|\bassert[.(]|\.should\s*\(`)
	weakAssertRe   = regexp.MustCompile(`toBeVisible|toExist|toBeDefined|be\.visible|\bexist\b`)
	strongAssertRe = regexp.MustCompile(`toBe\s*\(|toEqual|toContain|toHaveLength|toHaveText|\beq\s*\(|contains\s*\(`)

	testDescRe = regexp.MustCompile(`\b(?:it|test)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]*)['"` + "`" + `]`)

	commentLineRe = regexp.MustCompile(`^\s*(?://|/\*|\*)`)
	magicNumberRe = regexp.MustCompile(`\b\d{3,}\b`)
	timeoutCtxRe  = regexp.MustCompile(`(?i)timeout|wait|sleep|interval|delay|port`)
	absoluteURLRe = regexp.MustCompile(`https?://`)

	fragileSelectorRe = regexp.MustCompile(`cy\.get\s*\(\s*['"` + "`" + `][.#]|querySelector|getElementsByClassName|\$\s*\(\s*['"` + "`" + `][.#]`)
	testIDRe          = regexp.MustCompile(`data-testid|getByTestId|findByTestId`)
	hardWaitRe        = regexp.MustCompile(`\bwait\s*\(\s*\d+\s*\)|\bsleep\s*\(\s*\d+|setTimeout\s*\([^)]*\d{3,}`)
	rawLookupRe       = regexp.MustCompile(`cy\.get\s*\(|page\.\$|querySelector|getBy[A-Z]\w*\s*\(`)
	customCommandRe   = regexp.MustCompile(`Cypress\.Commands\.add|\.addCommand\s*\(`)
	sharedStateRe     = regexp.MustCompile(`(?m)^\s*(?:let|var)\s+\w+`)
)

// Scorer statically scores generated test source.
// Pure and deterministic: the same source always yields the same Vector.
type Scorer struct{}

// NewScorer returns a new quality Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score analyzes source text and returns its quality vector.
// The source is treated as opaque text; it is never parsed or executed.
func (s *Scorer) Score(source string) *Vector {
	lines := strings.Split(source, "\n")

	v := &Vector{Issues: []Issue{}}
	v.Syntax = s.scoreSyntax(source, lines, v)
	v.Coverage = s.scoreCoverage(source, v)
	v.Assertions = s.scoreAssertions(source, v)
	v.Maintainability = s.scoreMaintainability(source, lines, v)
	v.BestPractices = s.scoreBestPractices(source, v)

	v.Overall = int(math.Round(
		weightSyntax*float64(v.Syntax) +
			weightCoverage*float64(v.Coverage) +
			weightAssertions*float64(v.Assertions) +
			weightMaintainability*float64(v.Maintainability) +
			weightBestPractices*float64(v.BestPractices)))

	return v
}

func (s *Scorer) scoreSyntax(source string, lines []string, v *Vector) int {
	score := 100

	if !suiteRe.MatchString(source) {
		score -= 30
		v.add(SeverityError, "syntax", "no test suite declaration (describe/context block) found")
	}
	if !testCaseRe.MatchString(source) {
		score -= 30
		v.add(SeverityError, "syntax", "no test cases (it/test blocks) found")
	}

	if strings.Contains(source, `'`) && strings.Contains(source, `"`) {
		score -= 5
		v.add(SeverityInfo, "syntax", "mixed single and double quote styles")
	}

	terminated, unterminated := 0, 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || commentLineRe.MatchString(line) {
			continue
		}
		if strings.ContainsAny(string(t[len(t)-1]), ";{}(,:") {
			terminated++
		} else {
			unterminated++
		}
	}
	if unterminated > terminated {
		score -= 5
		v.add(SeverityInfo, "syntax", "most statement lines lack terminators or braces")
	}

	return clamp(score)
}

func (s *Scorer) scoreCoverage(source string, v *Vector) int {
	score := 100

	testCount := len(testCaseRe.FindAllString(source, -1))
	if testCount < 2 {
		score -= 20
		v.add(SeverityWarning, "coverage", fmt.Sprintf("only %d test case(s); multiple cases expected per feature", testCount))
	}
	if !edgeCaseRe.MatchString(source) {
		score -= 15
		v.add(SeverityWarning, "coverage", "no edge case coverage (empty/invalid/boundary inputs)")
	}
	if !errorHandleRe.MatchString(source) {
		score -= 10
		v.add(SeverityWarning, "coverage", "no error handling coverage")
	}
	if !setupHookRe.MatchString(source) {
		score -= 5
		v.add(SeverityInfo, "coverage", "no setup hook (beforeEach) found")
	}

	return clamp(score)
}

func (s *Scorer) scoreAssertions(source string, v *Vector) int {
	score := 100

	assertions := len(assertionRe.FindAllString(source, -1))
	testCount := len(testCaseRe.FindAllString(source, -1))

	if assertions == 0 {
		score -= 50
		v.add(SeverityError, "assertions", "no assertions found; test verifies nothing")
		return clamp(score)
	}

	if assertions < testCount {
		score -= 20
		v.add(SeverityWarning, "assertions", "fewer assertions than test cases; some tests assert nothing")
	}

	if weakAssertRe.MatchString(source) && !strongAssertRe.MatchString(source) {
		score -= 15
		v.add(SeverityWarning, "assertions", "only existence/visibility assertions; no value checks")
	}

	if testCount > 0 && float64(assertions)/float64(testCount) < 2 {
		score -= 10
		v.add(SeverityInfo, "assertions", "fewer than 2 assertions per test on average")
	}

	return clamp(score)
}

func (s *Scorer) scoreMaintainability(source string, lines []string, v *Vector) int {
	score := 100

	total, comments := 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if commentLineRe.MatchString(line) {
			comments++
		}
	}
	if total > 0 && float64(comments)/float64(total) < 0.10 {
		score -= 10
		v.add(SeverityInfo, "maintainability", "under 10% comment lines")
	}

	magic := false
	for _, line := range lines {
		if magicNumberRe.MatchString(line) && !timeoutCtxRe.MatchString(line) {
			magic = true
			break
		}
	}
	if magic {
		score -= 15
		v.add(SeverityWarning, "maintainability", "magic numbers outside timeout/wait context")
	}

	if absoluteURLRe.MatchString(source) {
		score -= 15
		v.add(SeverityWarning, "maintainability", "hardcoded absolute URLs; use baseUrl configuration")
	}

	short := false
	for _, m := range testDescRe.FindAllStringSubmatch(source, -1) {
		if len(m[1]) < 20 {
			short = true
			break
		}
	}
	if short {
		score -= 5
		v.add(SeverityInfo, "maintainability", "test descriptions shorter than 20 characters")
	}

	return clamp(score)
}

func (s *Scorer) scoreBestPractices(source string, v *Vector) int {
	score := 100

	if fragileSelectorRe.MatchString(source) && !testIDRe.MatchString(source) {
		score -= 20
		v.add(SeverityWarning, "best-practices", "fragile class/id selectors without data-testid attributes")
	}

	if hardWaitRe.MatchString(source) {
		score -= 15
		v.add(SeverityWarning, "best-practices", "hardcoded numeric waits; prefer waiting on conditions")
	}

	lookups := len(rawLookupRe.FindAllString(source, -1))
	if lookups >= 10 && !customCommandRe.MatchString(source) {
		score -= 10
		v.add(SeverityInfo, "best-practices", fmt.Sprintf("%d raw element lookups; consider shared custom commands", lookups))
	}

	// let/var declared before the first test block is shared mutable state.
	if loc := testCaseRe.FindStringIndex(source); loc != nil {
		if sharedStateRe.MatchString(source[:loc[0]]) {
			score -= 15
			v.add(SeverityWarning, "best-practices", "shared mutable state declared outside test blocks")
		}
	}

	return clamp(score)
}

func (v *Vector) add(sev Severity, category, message string) {
	v.Issues = append(v.Issues, Issue{Severity: sev, Category: category, Message: message})
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
