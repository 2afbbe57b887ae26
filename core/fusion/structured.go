package fusion

import (
	"encoding/json"
	"strings"

	"github.com/askfuse/askfuse/model"
)

// fallbackStructuredQuery runs when a structured payload carries neither
// sub-requirements nor a requirement
const fallbackStructuredQuery = "internal capabilities documentation"

// Subrequirement is one focused aspect of a structured analysis request
type Subrequirement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
}

// StructuredPayload is the input of structured-analysis answering: a
// caller-supplied system prompt, an overall requirement, a free-form
// profile and the sub-requirements to analyze
type StructuredPayload struct {
	SystemPrompt    string           `json:"system_prompt"`
	Requirement     string           `json:"requirement"`
	Profile         map[string]any   `json:"profile,omitempty"`
	Subrequirements []Subrequirement `json:"subrequirements,omitempty"`
}

// Context returns the structured context rendered into the user message
func (p *StructuredPayload) Context() map[string]any {
	return map[string]any{
		"requirement":     p.Requirement,
		"profile":         p.Profile,
		"subrequirements": p.Subrequirements,
	}
}

// StructuredQueries synthesizes retrieval queries from a structured
// payload. Each sub-requirement yields one focused query built from its
// title, the first words of its description and the first words of the
// overall requirement. Without sub-requirements the requirement itself
// is the query; without either a generic fallback query keeps retrieval
// running.
func StructuredQueries(payload *StructuredPayload) []model.SubQuery {
	var queries []model.SubQuery
	for _, subreq := range payload.Subrequirements {
		var parts []string
		if subreq.Title != "" {
			parts = append(parts, subreq.Title)
		}
		if words := firstWords(subreq.Description, 10); words != "" {
			parts = append(parts, words)
		}
		if words := firstWords(payload.Requirement, 5); words != "" {
			parts = append(parts, words)
		}
		if len(parts) == 0 {
			continue
		}
		queries = append(queries, model.SubQuery{
			Text:       strings.Join(parts, " "),
			Provenance: "subrequirement",
		})
	}

	if len(queries) == 0 && strings.TrimSpace(payload.Requirement) != "" {
		queries = append(queries, model.SubQuery{Text: payload.Requirement, Provenance: "requirement"})
	}
	if len(queries) == 0 {
		queries = append(queries, model.SubQuery{Text: fallbackStructuredQuery, Provenance: "fallback"})
	}
	return queries
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// ExtractJSON pulls a JSON object out of a model answer. It tries a
// ```json fenced block first, then any fenced block, then the whole
// answer. Returns false when no block parses.
func ExtractJSON(answer string) (map[string]any, bool) {
	candidates := []string{}
	if block, ok := fencedBlock(answer, "```json"); ok {
		candidates = append(candidates, block)
	}
	if block, ok := fencedBlock(answer, "```"); ok {
		candidates = append(candidates, block)
	}
	candidates = append(candidates, strings.TrimSpace(answer))

	for _, candidate := range candidates {
		var data map[string]any
		if err := json.Unmarshal([]byte(candidate), &data); err == nil {
			return data, true
		}
	}
	return nil, false
}

func fencedBlock(text string, fence string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	start += len(fence)
	end := strings.Index(text[start:], "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+end]), true
}
