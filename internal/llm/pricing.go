package llm

// Tariff is a linear price in USD per 1000 tokens.
type Tariff struct {
	InputPer1K  float64 `json:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k"`
}

// DefaultTariff is the gpt-4o-mini price list.
var DefaultTariff = Tariff{InputPer1K: 0.00015, OutputPer1K: 0.0006}

// Cost returns the price of one call.
func (t Tariff) Cost(u Usage) float64 {
	return float64(u.PromptTokens)/1000*t.InputPer1K +
		float64(u.CompletionTokens)/1000*t.OutputPer1K
}
