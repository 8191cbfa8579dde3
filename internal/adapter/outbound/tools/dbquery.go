package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agentstudio/toolbridge/internal/domain"
)

const (
	// dbConfigDSN is the PostgreSQL connection string.
	dbConfigDSN = "dsn"
	// dbConfigTimeout is the per-query timeout in seconds, default 30.
	dbConfigTimeout = "timeout_seconds"
	// dbConfigMaxRows caps the number of returned rows, default 100.
	dbConfigMaxRows = "max_rows"
)

const (
	dbDefaultTimeout = 30 * time.Second
	dbDefaultMaxRows = 100
)

// DBQuery runs a SQL query against a PostgreSQL database and returns the
// rows as JSON-friendly maps. The DSN carries the credentials and is usually
// supplied per agent through runtime config rather than at registration.
type DBQuery struct {
	domain.Base

	dsn     string
	timeout time.Duration
	maxRows int

	// connect is swappable for tests.
	connect func(ctx context.Context, dsn string) (*pgx.Conn, error)
}

// NewDBQuery constructs the database query tool.
func NewDBQuery(config map[string]any) (*DBQuery, error) {
	dsn := ""
	if raw, ok := config[dbConfigDSN]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("db_query config: %s must be a string", dbConfigDSN)
		}
		dsn = s
	}
	timeout := dbDefaultTimeout
	if raw, ok := config[dbConfigTimeout]; ok {
		seconds, ok := asSeconds(raw)
		if !ok || seconds <= 0 {
			return nil, fmt.Errorf("db_query config: %s must be a positive number of seconds", dbConfigTimeout)
		}
		timeout = seconds
	}
	maxRows := dbDefaultMaxRows
	if raw, ok := config[dbConfigMaxRows]; ok {
		n, ok := asInt64(raw)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("db_query config: %s must be a positive integer", dbConfigMaxRows)
		}
		maxRows = int(n)
	}
	return &DBQuery{
		Base: domain.NewBase(domain.Descriptor{
			ID:           "db_query",
			Name:         "Database Query",
			Description:  "Runs a SQL query against the configured PostgreSQL database and returns the resulting rows.",
			Version:      "1.0.0",
			Category:     "data",
			Tags:         []string{"sql", "postgres"},
			RequiresAuth: true,
			AuthType:     "connection_string",
			Parameters: []domain.Parameter{
				{
					Name:        "query",
					Type:        domain.TypeString,
					Description: "The SQL query to execute. Use $1, $2, ... placeholders for arguments.",
					Required:    true,
				},
				{
					Name:        "args",
					Type:        domain.TypeArray,
					Description: "Positional arguments substituted into the query placeholders.",
				},
			},
			Enabled: true,
		}, config),
		dsn:     dsn,
		timeout: timeout,
		maxRows: maxRows,
		connect: pgx.Connect,
	}, nil
}

// WithConfig implements domain.Reconfigurable so the DSN can be bound at
// agent-configuration time.
func (t *DBQuery) WithConfig(overrides map[string]any) (domain.Contract, error) {
	merged := t.MergeConfig(overrides)
	derived, err := NewDBQuery(merged)
	if err != nil {
		return nil, err
	}
	derived.Base = domain.NewBase(t.Describe(), merged)
	derived.connect = t.connect
	return derived, nil
}

// Invoke implements domain.Contract. Connections are opened per invocation:
// the tool is stateless and the DSN may differ between calls.
func (t *DBQuery) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if err := t.Validate(args); err != nil {
		return domain.Fail(err.Error()), nil
	}
	if t.dsn == "" {
		return domain.Fail("dsn not configured"), nil
	}

	query := args["query"].(string)
	var queryArgs []any
	if raw, ok := args["args"].([]any); ok {
		queryArgs = raw
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.connect(ctx, t.dsn)
	if err != nil {
		return domain.Result{}, fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return domain.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, string(fd.Name))
	}

	var out []map[string]any
	truncated := false
	for rows.Next() {
		if len(out) >= t.maxRows {
			truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return domain.Result{}, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return domain.Ok(map[string]any{
		"columns":   columns,
		"rows":      out,
		"row_count": len(out),
		"truncated": truncated,
	}), nil
}
