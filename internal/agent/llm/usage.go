package llm

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing defines USD cost per 1M tokens for input/output.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// hosted model prices; local Ollama models cost nothing.
var defaultPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
}

// ResolvePricing returns pricing for a model, zero when unknown.
func ResolvePricing(modelName string) Pricing {
	return defaultPricing[modelName]
}

// Usage is token accounting for one oracle call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
}

// UsageOf extracts token usage from a model reply and prices it.
func UsageOf(msg *schema.Message, modelName string) (Usage, bool) {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return Usage{}, false
	}
	u := msg.ResponseMeta.Usage
	p := ResolvePricing(modelName)
	cost := p.InputPerM*float64(u.PromptTokens)/1_000_000.0 + p.OutputPerM*float64(u.CompletionTokens)/1_000_000.0
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
		CostUSD:          cost,
	}, true
}
