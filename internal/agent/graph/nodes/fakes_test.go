package nodes

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hr-assistant/server/internal/agent/model"
)

// scriptedOracle answers by the first prompt substring that matches.
type scriptedOracle struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	prompts []string
}

func (o *scriptedOracle) Complete(_ context.Context, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prompts = append(o.prompts, prompt)
	if o.err != nil {
		return "", o.err
	}
	for marker, reply := range o.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func (o *scriptedOracle) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.prompts)
}

type fakeDB struct {
	mu        sync.Mutex
	cols      []model.ColumnInfo
	schemaErr error
	result    *model.ResultSet
	queryErr  error
	queries   []string
}

func (d *fakeDB) Schema(context.Context) ([]model.ColumnInfo, error) {
	return d.cols, d.schemaErr
}

func (d *fakeDB) Query(_ context.Context, sql string) (*model.ResultSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, sql)
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return d.result, nil
}

func (d *fakeDB) Ping(context.Context) error { return nil }

func (d *fakeDB) queryCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queries)
}

var employeeSchema = []model.ColumnInfo{
	{Table: "employees", Column: "email_address", DataType: "varchar"},
	{Table: "leave_balances", Column: "remaining_days", DataType: "int4"},
}

func stateFor(message string) model.ConversationState {
	return model.NewConversationState(model.ChatRequest{Message: message, UserEmail: "jane@acme.io"})
}
