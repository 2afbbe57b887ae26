package fusion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askfuse/askfuse/model"
)

const (
	groundingRules = "Ground every statement in the provided excerpts and cite them inline " +
		"with their bracketed numbers, like [1] or [2][3]. Do not invent citations and do " +
		"not use outside knowledge. If the excerpts do not answer the question, say so."

	noGroundingNote = "No supporting excerpts were retrieved for this question. " +
		"State clearly that no grounded evidence was found; do not invent sources or citations."
)

// CustomPrompt overrides the mode-derived system prompt, used by
// structured-analysis answering. The system prompt is passed to the
// model verbatim and the context map is rendered as JSON into the user
// message.
type CustomPrompt struct {
	SystemPrompt string
	Context      map[string]any
}

// BuildGroundedMessages builds the system and user messages for answer
// synthesis. The system message carries the mode's answering style and
// the grounding rules; a non-nil custom prompt replaces it verbatim. The
// user message carries the question, the graph context when present and
// the curated excerpts labeled with their citation indices, so the
// inline markers the model emits resolve against the citation map. When
// no excerpts survive curation the user message says so explicitly
// instead of leaving the model free to improvise.
func BuildGroundedMessages(question string, graphContext string, chunks []model.Chunk, citations model.CitationMap, preset model.Preset, custom *CustomPrompt) (string, string) {
	system := modeSystemPrompt(preset.Mode)
	if custom != nil && custom.SystemPrompt != "" {
		system = custom.SystemPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)

	if custom != nil && len(custom.Context) > 0 {
		if rendered, err := json.MarshalIndent(custom.Context, "", "  "); err == nil {
			fmt.Fprintf(&b, "\nAnalysis context:\n%s\n", rendered)
		}
	}

	if graphContext != "" {
		fmt.Fprintf(&b, "\nKnowledge graph context:\n%s\n", graphContext)
	}

	if len(chunks) == 0 {
		b.WriteString("\n")
		b.WriteString(noGroundingNote)
		b.WriteString("\n")
		return system, b.String()
	}

	b.WriteString("\nExcerpts:\n")
	for _, chunk := range chunks {
		index, ok := citations.Index(chunk.SourceFile)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "[%d] (%s) %s\n\n", index, chunk.SourceFile, chunk.ContextText())
	}

	return system, strings.TrimRight(b.String(), "\n") + "\n"
}

// modeSystemPrompt returns the answering style instructions for a mode
func modeSystemPrompt(mode model.Mode) string {
	switch mode {
	case model.ModeConcise:
		return "You answer questions from document excerpts. Answer in two to four sentences, " +
			"direct and to the point. " + groundingRules
	case model.ModeDeep:
		return "You answer questions from document excerpts. Give a thorough, well structured " +
			"answer that covers relevant details, relationships and caveats found in the excerpts. " +
			groundingRules
	default:
		return "You answer questions from document excerpts. Give a clear, complete answer at " +
			"moderate length. " + groundingRules
	}
}
