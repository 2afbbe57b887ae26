package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askfuse/askfuse/model"
)

func TestBuildGroundedMessages(t *testing.T) {
	chunks := []model.Chunk{
		{Text: "settlement takes two days", SourceFile: "ops.pdf"},
		{Text: "fees apply on redemption", SourceFile: "fees.pdf"},
	}
	citations, kept := BuildCitationMap(chunks, nil)
	preset := model.DefaultPreset()

	t.Run("Excerpts carry their citation indices", func(t *testing.T) {
		_, user := BuildGroundedMessages("How do orders settle?", "", kept, citations, preset, nil)

		assert.Contains(t, user, "Question: How do orders settle?")
		assert.Contains(t, user, "[1] (ops.pdf) settlement takes two days")
		assert.Contains(t, user, "[2] (fees.pdf) fees apply on redemption")
	})

	t.Run("System message instructs grounding and citation", func(t *testing.T) {
		system, _ := BuildGroundedMessages("q", "", kept, citations, preset, nil)

		assert.Contains(t, system, "cite")
		assert.Contains(t, system, "Do not invent citations")
	})

	t.Run("Graph context is included when present", func(t *testing.T) {
		_, user := BuildGroundedMessages("q", "Entities:\n- MutualFundOrder", kept, citations, preset, nil)

		assert.Contains(t, user, "Knowledge graph context:")
		assert.Contains(t, user, "MutualFundOrder")
	})

	t.Run("Expanded text is preferred over the raw chunk", func(t *testing.T) {
		wide := []model.Chunk{{Text: "core", SourceFile: "a.pdf", ExpandedText: "before\ncore\nafter"}}
		wideCitations, wideKept := BuildCitationMap(wide, nil)

		_, user := BuildGroundedMessages("q", "", wideKept, wideCitations, preset, nil)
		assert.Contains(t, user, "before\ncore\nafter")
	})

	t.Run("No excerpts produce an explicit no-grounding note", func(t *testing.T) {
		_, user := BuildGroundedMessages("q", "", nil, model.NewCitationMap(), preset, nil)

		assert.Contains(t, user, "No supporting excerpts were retrieved")
		assert.NotContains(t, user, "Excerpts:")
	})

	t.Run("Modes change the answering style", func(t *testing.T) {
		concise, _ := BuildGroundedMessages("q", "", kept, citations, model.ModePreset(model.ModeConcise), nil)
		deep, _ := BuildGroundedMessages("q", "", kept, citations, model.ModePreset(model.ModeDeep), nil)

		assert.Contains(t, concise, "two to four sentences")
		assert.Contains(t, deep, "thorough")
		assert.NotEqual(t, concise, deep)
	})

	t.Run("Custom system prompt is used verbatim", func(t *testing.T) {
		custom := &CustomPrompt{SystemPrompt: "You are a capability analyst. Reply as JSON."}

		system, _ := BuildGroundedMessages("q", "", kept, citations, preset, custom)
		assert.Equal(t, "You are a capability analyst. Reply as JSON.", system)
	})

	t.Run("Structured context is rendered into the user message", func(t *testing.T) {
		custom := &CustomPrompt{
			SystemPrompt: "analyst",
			Context:      map[string]any{"requirement": "real-time settlement"},
		}

		_, user := BuildGroundedMessages("q", "", kept, citations, preset, custom)
		require.Contains(t, user, "Analysis context:")
		assert.Contains(t, user, "real-time settlement")
	})
}
