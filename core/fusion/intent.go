package fusion

import (
	"strings"

	"github.com/askfuse/askfuse/model"
)

// Intent is a routing decision derived from the question text
type Intent struct {
	Route model.Route
	Hops  int
	TopK  int
}

var (
	kgKeywords     = []string{"kra", "ytd", "relationship", "maker-checker", "edge", "node"}
	vectorKeywords = []string{"overview", "compare", "explain", "pros", "cons"}
)

// ClarifyIntent picks a retrieval route for a question with a keyword
// heuristic. Questions about entities and their relationships go to the
// graph route, broad descriptive questions to the vector route and
// everything else to the hybrid route with a wider neighborhood.
func ClarifyIntent(question string) Intent {
	text := strings.ToLower(question)
	for _, keyword := range kgKeywords {
		if strings.Contains(text, keyword) {
			return Intent{Route: model.RouteKG, Hops: 1, TopK: 6}
		}
	}
	for _, keyword := range vectorKeywords {
		if strings.Contains(text, keyword) {
			return Intent{Route: model.RouteVector, Hops: 1, TopK: 8}
		}
	}
	return Intent{Route: model.RouteHybrid, Hops: 2, TopK: 8}
}
