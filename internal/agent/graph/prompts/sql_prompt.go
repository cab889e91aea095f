package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/hr-assistant/server/internal/agent/model"
)

//go:embed template/sql_prompt.txt
var sqlPrompt string

// allEmployeesPhrases switch off per-user filtering when found in the request.
var allEmployeesPhrases = []string{"all employees", "list of employees", "everyone"}

// RequestsAllEmployees reports whether message asks for records beyond the caller's own.
func RequestsAllEmployees(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range allEmployeesPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FilterInstruction returns the scoping rule for the SQL prompt. The email is
// interpolated verbatim.
func FilterInstruction(message, userEmail string, scoped bool) string {
	if !scoped || RequestsAllEmployees(message) {
		return "- Do NOT filter by email_address. Retrieve all records."
	}
	return fmt.Sprintf("- Ensure the WHERE clause includes email_address = '%s'", userEmail)
}

// SQLRequest carries everything the SQL prompt embeds.
type SQLRequest struct {
	Message   string
	UserEmail string
	Schema    []model.ColumnInfo
	// Scoped applies the email filter unless the message asks for all employees.
	Scoped bool
}

// RenderSQL renders the schema-aware SQL synthesis prompt.
func RenderSQL(ctx context.Context, req SQLRequest) (string, error) {
	return render(ctx, "sql", sqlPrompt, map[string]any{
		"Schema":            model.SchemaListing(req.Schema),
		"Message":           req.Message,
		"FilterInstruction": FilterInstruction(req.Message, req.UserEmail, req.Scoped),
	})
}
