package oracle

import (
	"encoding/json"
	"strings"

	"github.com/zhang-3000/meituan/internal/attr"
)

// Class is the oracle's subjective/objective call for a candidate.
type Class int

const (
	ClassUnknown Class = iota
	ClassSubjective
	ClassObjective
)

func (c Class) String() string {
	switch c {
	case ClassSubjective:
		return "subjective"
	case ClassObjective:
		return "objective"
	default:
		return "unknown"
	}
}

// Judgment is the decoded content of an oracle reply.
type Judgment struct {
	// Equivalent is true when the oracle found a phrase with the same
	// meaning in the comparison set.
	Equivalent bool
	Class      Class
	// Structured is false when the reply was not a JSON object and the
	// fields were recovered by keyword scanning.
	Structured bool
}

// Agrees reports whether the oracle's class matches what category c
// implies: A and B are subjective, F is objective.
func (j Judgment) Agrees(c attr.Category) bool {
	if c.Subjective() {
		return j.Class == ClassSubjective
	}
	return j.Class == ClassObjective
}

var (
	yesTokens        = []string{"是", "yes", "true"}
	subjectiveTokens = []string{"主观", "subjective"}
	objectiveTokens  = []string{"客观", "objective"}
)

type reply struct {
	Judge1 string `json:"judge_1"`
	Judge2 string `json:"judge_2"`
}

// ParseJudgment decodes {"judge_1": "是/否", "judge_2": "主观/客观"}. When
// the reply holds no decodable object, or the object carries neither
// field, it falls back to keyword presence over the whole text.
func ParseJudgment(raw string) Judgment {
	if obj, ok := extractObject(raw); ok {
		var r reply
		if err := json.Unmarshal([]byte(obj), &r); err == nil && (r.Judge1 != "" || r.Judge2 != "") {
			return Judgment{
				Equivalent: isYes(r.Judge1),
				Class:      classify(r.Judge2),
				Structured: true,
			}
		}
	}

	return Judgment{
		Equivalent: containsAny(raw, yesTokens),
		Class:      classify(raw),
	}
}

// extractObject returns the text from the first '{' to the last '}'.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, tok := range yesTokens {
		if strings.HasPrefix(s, tok) {
			return true
		}
	}
	return false
}

func classify(s string) Class {
	switch {
	case containsAny(s, subjectiveTokens):
		return ClassSubjective
	case containsAny(s, objectiveTokens):
		return ClassObjective
	default:
		return ClassUnknown
	}
}

func containsAny(s string, tokens []string) bool {
	s = strings.ToLower(s)
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
