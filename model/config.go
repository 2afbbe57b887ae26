package model

// Mode is a named answering preset controlling retrieval breadth and
// answer verbosity
type Mode string

const (
	ModeConcise  Mode = "concise"
	ModeBalanced Mode = "balanced"
	ModeDeep     Mode = "deep"
)

// Preset holds the resolved retrieval and synthesis parameters for one
// answer. Callers usually start from a mode preset and override single
// values through ParsePreset.
type Preset struct {
	MaxChunks        int     `json:"max_chunks"`
	KEach            int     `json:"k_each"`
	LambdaDiv        float64 `json:"lambda_div"`
	Model            string  `json:"model"`
	MaxSubqueries    int     `json:"max_subqueries"`
	RetrievalWorkers int     `json:"retrieval_workers"`
	MinChunks        int     `json:"min_chunks"`
	Mode             Mode    `json:"mode"`
}

// DefaultPreset returns the balanced mode preset
func DefaultPreset() Preset {
	return ModePreset(ModeBalanced)
}

// ModePreset returns the preset for a mode. Unknown modes fall back to
// balanced.
func ModePreset(mode Mode) Preset {
	switch mode {
	case ModeConcise:
		return Preset{
			MaxChunks:        6,
			KEach:            2,
			LambdaDiv:        0.5,
			Model:            "gpt-4o-mini",
			MaxSubqueries:    5,
			RetrievalWorkers: 4,
			MinChunks:        3,
			Mode:             ModeConcise,
		}
	case ModeDeep:
		return Preset{
			MaxChunks:        20,
			KEach:            5,
			LambdaDiv:        0.3,
			Model:            "gpt-4o",
			MaxSubqueries:    12,
			RetrievalWorkers: 8,
			MinChunks:        10,
			Mode:             ModeDeep,
		}
	default:
		return Preset{
			MaxChunks:        10,
			KEach:            3,
			LambdaDiv:        0.4,
			Model:            "gpt-4o",
			MaxSubqueries:    8,
			RetrievalWorkers: 6,
			MinChunks:        6,
			Mode:             ModeBalanced,
		}
	}
}

// ParsePreset resolves a flat key-value parameter bag against the mode
// presets. The recognized keys are max_chunks, k_each, lambda_div, model,
// max_subqueries, retrieval_workers, min_chunks and mode; unknown keys are
// ignored for forward compatibility. The mode key is applied first so
// explicit values override the mode defaults regardless of map order.
func ParsePreset(params map[string]any) Preset {
	preset := DefaultPreset()
	if params == nil {
		return preset
	}

	if mode, ok := stringValue(params["mode"]); ok {
		preset = ModePreset(Mode(mode))
	}
	if v, ok := intValue(params["max_chunks"]); ok && v > 0 {
		preset.MaxChunks = v
		preset.MinChunks = max(6, v/2)
	}
	if v, ok := intValue(params["k_each"]); ok && v > 0 {
		preset.KEach = v
	}
	if v, ok := floatValue(params["lambda_div"]); ok && v >= 0 && v <= 1 {
		preset.LambdaDiv = v
	}
	if v, ok := stringValue(params["model"]); ok && v != "" {
		preset.Model = v
	}
	if v, ok := intValue(params["max_subqueries"]); ok && v > 0 {
		preset.MaxSubqueries = v
	}
	if v, ok := intValue(params["retrieval_workers"]); ok && v > 0 {
		preset.RetrievalWorkers = v
	}
	if v, ok := intValue(params["min_chunks"]); ok && v > 0 {
		preset.MinChunks = v
	}

	return preset
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// intValue accepts int and float64 because JSON-decoded parameter bags
// carry numbers as float64
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
