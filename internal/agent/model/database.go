package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ColumnInfo is one (table, column, type) triple from the catalog.
type ColumnInfo struct {
	Table    string
	Column   string
	DataType string
}

// ResultSet holds query rows with column order preserved.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the result has no rows.
func (r *ResultSet) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// Database is the relational store the workflow introspects and queries.
type Database interface {
	// Schema returns the public-schema columns.
	Schema(ctx context.Context) ([]ColumnInfo, error)

	// Query executes generated SQL and returns its rows.
	Query(ctx context.Context, sql string) (*ResultSet, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// Oracle is the text-completion backend.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TranscriptRepository stores finished exchanges per user for audit.
// The workflow itself never reads it back.
type TranscriptRepository interface {
	// AddMessage appends a message to the user's transcript
	AddMessage(ctx context.Context, userEmail string, message *schema.Message) error

	// LoadHistory retrieves the transcript for a user
	LoadHistory(ctx context.Context, userEmail string) (*Transcript, error)

	// ClearHistory removes the transcript for a user
	ClearHistory(ctx context.Context, userEmail string) error
}

// Transcript is a loaded transcript with its owner.
type Transcript struct {
	UserEmail string
	Messages  []*schema.Message
}

// SchemaListing renders columns one per line for prompts.
func SchemaListing(cols []ColumnInfo) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Table: %s, Column: %s (%s)", c.Table, c.Column, c.DataType)
	}
	return b.String()
}
