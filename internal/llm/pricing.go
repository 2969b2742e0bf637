package llm

import "strings"

// rate is USD per million tokens.
type rate struct{ in, out float64 }

// Longest prefix wins, so dated model ids match their family.
var rates = map[string]rate{
	"claude-haiku-4-5":     {1.00, 5.00},
	"claude-sonnet-4":      {3.00, 15.00},
	"gpt-4o-mini":          {0.15, 0.60},
	"gpt-4o":               {2.50, 10.00},
	"gemini-2.0-flash":     {0.10, 0.40},
	"gemini-2.5-flash":     {0.30, 2.50},
	"google/gemini-2.0":    {0.10, 0.40},
	"openai/gpt-4o-mini":   {0.15, 0.60},
	"anthropic/claude-3.5": {0.80, 4.00},
}

// EstimateCost returns the approximate USD cost of u on model, and false
// when the model has no known rate.
func EstimateCost(model string, u Usage) (float64, bool) {
	var (
		best  string
		found rate
	)
	for prefix, r := range rates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, found = prefix, r
		}
	}
	if best == "" {
		return 0, false
	}
	return (float64(u.Input)*found.in + float64(u.Output)*found.out) / 1e6, true
}
