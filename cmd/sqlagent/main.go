// Command sqlagent turns one natural-language request into SQL, runs it
// against the HR database and prints the formatted rows.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/hr-assistant/server/internal/agent/graph/nodes"
	"github.com/hr-assistant/server/internal/agent/llm"
	"github.com/hr-assistant/server/internal/agent/model"
	"github.com/hr-assistant/server/internal/agent/repo"
	"github.com/hr-assistant/server/internal/config"
	logx "github.com/hr-assistant/server/pkg/logger"
)

// Options are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	EnvFile string `short:"e" long:"env" description:"dotenv file loaded before the environment" default:".env"`
	ShowSQL bool   `short:"s" long:"show-sql" description:"print the generated SQL before the result"`
	Args    struct {
		Query []string `positional-arg-name:"query" description:"request text (stdin if empty)"`
	} `positional-args:"yes"`
}

func main() {
	opts := &Options{}
	if _, err := flags.Parse(opts); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sqlagent: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env(), Service: "hr-sqlagent"})

	query := strings.TrimSpace(strings.Join(opts.Args.Query, " "))
	if query == "" {
		fmt.Fprint(stdout, "Enter your query: ")
		if query, err = readLine(stdin); err != nil {
			return err
		}
	}
	if query == "" {
		return errors.New("empty query")
	}

	dbConfig, err := cfg.Database.ParseConfig()
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	store, err := repo.NewPostgresStore(dbConfig, cfg.Database.ReadOnly)
	if err != nil {
		return fmt.Errorf("database store: %w", err)
	}

	chatModel, err := llm.NewChatModel(ctx, cfg.Oracle)
	if err != nil {
		return fmt.Errorf("chat model: %w", err)
	}
	oracle, err := llm.NewChatOracle(chatModel)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}

	stages := &nodes.Stages{Oracle: oracle, DB: store}
	answer, sql := Answer(ctx, stages, query)
	if opts.ShowSQL && sql != "" {
		fmt.Fprintf(stdout, "SQL: %s\n", sql)
	}
	fmt.Fprintln(stdout, answer)
	return nil
}

// Answer runs SQL generation and execution for query without email scoping.
// It returns the formatted answer and the SQL that was executed, if any.
func Answer(ctx context.Context, stages *nodes.Stages, query string) (string, string) {
	state := model.NewConversationState(model.ChatRequest{Message: query})
	state = stages.GenerateSQL(ctx, state)
	state = stages.ExecuteSQL(ctx, state)
	return state.AnswerText, state.PendingQuery
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read query: %w", err)
	}
	return strings.TrimSpace(line), nil
}
