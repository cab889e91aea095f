package prompts

import (
	"context"
	_ "embed"
)

//go:embed template/classify_prompt.txt
var classifyPrompt string

// RenderClassify renders the fixed intent classification prompt for message.
func RenderClassify(ctx context.Context, message string) (string, error) {
	return render(ctx, "classify", classifyPrompt, map[string]any{
		"Message": message,
	})
}
