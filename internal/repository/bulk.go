package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
)

// Table names of the relational schema.
const (
	TableUsers    = "users"
	TableContent  = "content"
	TableSessions = "viewing_sessions"
)

// ProgressFunc is called after every committed-to-statement batch with the
// number of rows inserted so far and the table's total.
type ProgressFunc func(table string, done, total int)

// TableResult describes one table load. Rows is the number of rows
// committed, zero when the load was rolled back.
type TableResult struct {
	Table    string
	Rows     int
	Batches  int
	Duration time.Duration
	Err      error
}

// buildInsert renders one multi-row INSERT for the given rows.
func buildInsert(d database.Dialect, table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(rows)*len(columns))
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	n := 1
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
		args = append(args, r...)
	}
	return b.String(), args
}

// batchRows clamps the requested batch size to what one statement can bind.
// A size of zero or less means "as large as possible".
func batchRows(d database.Dialect, columns, requested int) int {
	limit := d.MaxParams() / columns
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

// replaceTable empties table and inserts rows in batches, all inside one
// transaction. Any failure rolls the whole table back.
func replaceTable(ctx context.Context, db *sql.DB, d database.Dialect, table string, columns []string,
	rows [][]any, batchSize int, progress ProgressFunc) TableResult {
	start := time.Now()
	res := TableResult{Table: table}
	fail := func(err error) TableResult {
		res.Err = &PartialLoadError{Table: table, Err: err}
		res.Batches = 0
		res.Duration = time.Since(start)
		return res
	}
	if len(columns) == 0 {
		return fail(ErrEmptyColumns)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, d.TruncateSQL(table)); err != nil {
		return fail(fmt.Errorf("truncate: %w", err))
	}

	size := batchRows(d, len(columns), batchSize)
	for lo := 0; lo < len(rows); lo += size {
		hi := min(lo+size, len(rows))
		q, args := buildInsert(d, table, columns, rows[lo:hi])
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fail(fmt.Errorf("insert rows %d-%d: %w", lo+1, hi, err))
		}
		res.Batches++
		if progress != nil {
			progress(table, hi, len(rows))
		}
	}

	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}
	res.Rows = len(rows)
	res.Duration = time.Since(start)
	return res
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}
