package prompts

import (
	"context"
	_ "embed"
)

//go:embed template/response_prompt.txt
var responsePrompt string

// RenderResponse renders the final HR assistant prompt. The computed answer is
// embedded only when withAnswer is set.
func RenderResponse(ctx context.Context, message, answer string, withAnswer bool) (string, error) {
	return render(ctx, "response", responsePrompt, map[string]any{
		"Message":    message,
		"Answer":     answer,
		"WithAnswer": withAnswer,
	})
}
