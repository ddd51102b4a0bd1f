package nlq

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultQueryTimeout = 3 * time.Second
	defaultRowCap       = 100
)

// Executor runs a vetted statement inside a read-only transaction with a
// statement timeout and a hard row cap. The generated SQL is instructed to
// LIMIT itself, but that is advisory only; the cap here is the enforced
// resource boundary. Callers must not invoke Execute before both validators
// accepted the statement.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	rowCap  int
}

func NewExecutor(db *sql.DB, timeout time.Duration, rowCap int) *Executor {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	if rowCap <= 0 {
		rowCap = defaultRowCap
	}
	return &Executor{db: db, timeout: timeout, rowCap: rowCap}
}

func (e *Executor) Execute(ctx context.Context, statement string) (ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return ResultSet{}, e.failure(statement, fmt.Errorf("begin read-only tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, statement)
	if err != nil {
		return ResultSet{}, e.failure(statement, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return ResultSet{}, e.failure(statement, fmt.Errorf("read result columns: %w", err))
	}

	result := ResultSet{Columns: columns, Rows: make([]Row, 0)}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= e.rowCap {
			break
		}
		if err := rows.Scan(pointers...); err != nil {
			return ResultSet{}, e.failure(statement, fmt.Errorf("scan result row: %w", err))
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, e.failure(statement, err)
	}

	return result, nil
}

func (e *Executor) failure(statement string, err error) *PipelineError {
	return &PipelineError{Kind: FailureExecution, SQL: statement, Err: err}
}

// normalizeValue converts driver byte slices to strings so result rows are
// JSON-friendly scalars.
func normalizeValue(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}
	return value
}
