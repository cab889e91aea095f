package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr-assistant/server/internal/agent/graph/nodes"
	"github.com/hr-assistant/server/internal/agent/model"
)

type cannedOracle struct {
	reply   string
	err     error
	prompts []string
}

func (o *cannedOracle) Complete(_ context.Context, prompt string) (string, error) {
	o.prompts = append(o.prompts, prompt)
	return o.reply, o.err
}

type cannedDB struct {
	result  *model.ResultSet
	err     error
	queries []string
}

func (d *cannedDB) Schema(context.Context) ([]model.ColumnInfo, error) {
	return []model.ColumnInfo{
		{Table: "employees", Column: "name", DataType: "varchar"},
		{Table: "employees", Column: "email", DataType: "varchar"},
	}, nil
}

func (d *cannedDB) Query(_ context.Context, sql string) (*model.ResultSet, error) {
	d.queries = append(d.queries, sql)
	return d.result, d.err
}

func (d *cannedDB) Ping(context.Context) error { return nil }

func TestAnswer(t *testing.T) {
	oracle := &cannedOracle{reply: "```sql\nSELECT name FROM employees\n```"}
	db := &cannedDB{result: &model.ResultSet{Columns: []string{"name"}, Rows: [][]any{{"Alice"}, {"Bob"}}}}

	answer, sql := Answer(context.Background(), &nodes.Stages{Oracle: oracle, DB: db}, "list all employees")

	assert.Equal(t, "The names are: Alice, Bob.", answer)
	assert.Equal(t, "SELECT name FROM employees", sql)
	assert.Equal(t, []string{"SELECT name FROM employees"}, db.queries)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Do NOT filter by email_address")
}

func TestAnswerFailures(t *testing.T) {
	t.Run("oracle down", func(t *testing.T) {
		db := &cannedDB{}
		answer, sql := Answer(context.Background(),
			&nodes.Stages{Oracle: &cannedOracle{err: errors.New("refused")}, DB: db}, "who is on leave")

		assert.Equal(t, nodes.SQLGenerationFailed, answer)
		assert.Empty(t, sql)
		assert.Empty(t, db.queries)
	})

	t.Run("query error", func(t *testing.T) {
		db := &cannedDB{err: errors.New("syntax error")}
		answer, _ := Answer(context.Background(),
			&nodes.Stages{Oracle: &cannedOracle{reply: "SELECT nope"}, DB: db}, "who is on leave")

		assert.Equal(t, nodes.DatabaseQueryFailed, answer)
	})
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("  show attendance  \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "show attendance", line)

	line, err = readLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", line)
}
