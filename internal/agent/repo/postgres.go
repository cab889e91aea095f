package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const schemaQuery = `
SELECT
    c.relname AS table_name,
    a.attname AS column_name,
    t.typname AS data_type
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid
JOIN pg_catalog.pg_type t ON a.atttypid = t.oid
WHERE n.nspname = 'public'
  AND a.attnum > 0
  AND NOT a.attisdropped`

// PostgresStore opens one connection per call and closes it before returning.
type PostgresStore struct {
	config   *pgx.ConnConfig
	readOnly bool
	tracer   trace.Tracer
}

// NewPostgresStore creates a store. When readOnly is set, generated SQL runs
// inside a READ ONLY transaction that is always rolled back.
func NewPostgresStore(config *pgx.ConnConfig, readOnly bool) (*PostgresStore, error) {
	if config == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	return &PostgresStore{
		config:   config,
		readOnly: readOnly,
		tracer:   otel.Tracer("hr-assistant/postgres"),
	}, nil
}

func (s *PostgresStore) withConn(ctx context.Context, fn func(conn *pgx.Conn) error) error {
	conn, err := pgx.ConnectConfig(ctx, s.config.Copy())
	if err != nil {
		return errx.WrapDatabase(fmt.Errorf("connect: %w", err))
	}
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			logx.Warn().Err(cerr).Msg("failed to close database connection")
		}
	}()
	return fn(conn)
}

// Schema returns every user column of the public schema.
func (s *PostgresStore) Schema(ctx context.Context) ([]model.ColumnInfo, error) {
	ctx, span := s.tracer.Start(ctx, "db.schema")
	defer span.End()

	var cols []model.ColumnInfo
	err := s.withConn(ctx, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, schemaQuery)
		if err != nil {
			return errx.WrapDatabase(err)
		}
		cols, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ColumnInfo, error) {
			var c model.ColumnInfo
			err := row.Scan(&c.Table, &c.Column, &c.DataType)
			return c, err
		})
		return errx.WrapDatabase(err)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema introspection failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("db.columns", len(cols)))
	return cols, nil
}

// Query executes sql and returns the rows with column order preserved.
func (s *PostgresStore) Query(ctx context.Context, sql string) (*model.ResultSet, error) {
	ctx, span := s.tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.Bool("db.read_only", s.readOnly),
	))
	defer span.End()

	var result *model.ResultSet
	err := s.withConn(ctx, func(conn *pgx.Conn) error {
		if !s.readOnly {
			var err error
			result, err = collect(ctx, conn, sql)
			return err
		}

		tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
		if err != nil {
			return errx.WrapDatabase(fmt.Errorf("begin read-only transaction: %w", err))
		}
		defer tx.Rollback(context.WithoutCancel(ctx))

		result, err = collect(ctx, tx, sql)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("db.rows", len(result.Rows)))
	return result, nil
}

// Ping opens and closes a connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *pgx.Conn) error {
		return errx.WrapDatabase(conn.Ping(ctx))
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collect(ctx context.Context, q querier, sql string) (*model.ResultSet, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, errx.WrapDatabase(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &model.ResultSet{Columns: make([]string, len(fields))}
	for i, f := range fields {
		result.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errx.WrapDatabase(err)
		}
		for i, v := range values {
			values[i] = NormalizeValue(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapDatabase(err)
	}
	return result, nil
}

var _ model.Database = (*PostgresStore)(nil)
