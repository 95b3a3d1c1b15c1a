package oracle

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed prompts/judge.tmpl
var judgePromptTemplate string

// PromptData is the data the judge template is executed with.
type PromptData struct {
	Candidate  string
	Comparison []string
}

// Prompt renders the instruction sent for one consultation.
type Prompt struct {
	tmpl *template.Template
}

// DefaultPrompt returns the embedded judge prompt.
func DefaultPrompt() *Prompt {
	p, err := ParsePrompt(judgePromptTemplate)
	if err != nil {
		panic(fmt.Sprintf("embedded judge prompt: %v", err))
	}
	return p
}

// ParsePrompt parses a text/template with the sprig function map.
func ParsePrompt(text string) (*Prompt, error) {
	tmpl, err := template.New("judge").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse judge prompt: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// LoadPrompt reads a template file; an empty path yields the default.
func LoadPrompt(path string) (*Prompt, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read judge prompt: %w", err)
	}

	return ParsePrompt(string(data))
}

// Render executes the template for a candidate and its comparison set.
func (p *Prompt) Render(candidate string, comparison []string) (string, error) {
	if comparison == nil {
		comparison = []string{}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, PromptData{Candidate: candidate, Comparison: comparison}); err != nil {
		return "", fmt.Errorf("failed to render judge prompt: %w", err)
	}

	return buf.String(), nil
}
