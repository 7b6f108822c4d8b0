package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qms/core-api/internal/logger"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTicketAttempts = 5

type Store struct {
	pool           *pgxpool.Pool
	ticketAttempts int
	log            *slog.Logger
}

type Options struct {
	// TicketAttempts bounds how many ticket numbers are tried when an insert
	// collides with an existing ticket number.
	TicketAttempts int
	Logger         *slog.Logger
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	attempts := options.TicketAttempts
	if attempts <= 0 {
		attempts = defaultTicketAttempts
	}
	log := options.Logger
	if log == nil {
		log = logger.WithComponent("store.postgres")
	}
	return &Store{
		pool:           pool,
		ticketAttempts: attempts,
		log:            log,
	}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn in a transaction that is committed only when fn succeeds.
// Every other exit path, panics included, rolls back before returning.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.runTx(ctx, pgx.TxOptions{}, fn)
}

// readTx runs fn in a read-only snapshot so a record and the rows it embeds
// are loaded consistently.
func (s *Store) readTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) runTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return classify(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify turns driver errors into store sentinels. Errors that already are
// sentinels pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", store.ErrInvalidReference, pgErr.ConstraintName)
		case "23502", "23514", "22001":
			return fmt.Errorf("%w: %s", store.ErrInvalidValue, pgErr.ColumnName)
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// columns collects column/value pairs for INSERT and UPDATE statements.
type columns struct {
	names []string
	args  []any
}

func (c *columns) set(name string, value any) {
	c.names = append(c.names, name)
	c.args = append(c.args, value)
}

func setOpt[T any](c *columns, name string, value *T) {
	if value != nil {
		c.set(name, *value)
	}
}

func (c columns) clone() columns {
	return columns{
		names: append([]string(nil), c.names...),
		args:  append([]any(nil), c.args...),
	}
}

func (c columns) insertSQL(table string) string {
	placeholders := make([]string, len(c.names))
	for i := range c.names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(c.names, ", "), strings.Join(placeholders, ", "))
}

func insertRow(ctx context.Context, q querier, table string, c columns) (int64, error) {
	var id int64
	if err := q.QueryRow(ctx, c.insertSQL(table), c.args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// updateRow applies c to the row with the given id. An empty column set still
// checks that the row exists, so PATCH {} on a missing id is a NotFound.
func updateRow(ctx context.Context, q querier, table string, id int64, c columns) error {
	if len(c.names) == 0 {
		return rowExists(ctx, q, table, id)
	}
	sets := make([]string, len(c.names))
	for i, name := range c.names {
		sets[i] = fmt.Sprintf("%s = $%d", name, i+1)
	}
	args := append(c.args, id)
	tag, err := q.Exec(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		table, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %d", store.ErrNotFound, table, id)
	}
	return nil
}

func rowExists(ctx context.Context, q querier, table string, id int64) error {
	var found bool
	row := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id)
	if err := row.Scan(&found); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s %d", store.ErrNotFound, table, id)
	}
	return nil
}

func (s *Store) deleteRow(ctx context.Context, table string, id int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s %d", store.ErrInUse, table, id)
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s %d", store.ErrNotFound, table, id)
		}
		return nil
	})
}

// stamp sets the audit columns for a write made by actor.
func stamp(c *columns, actor string, creating bool) {
	now := time.Now().UTC()
	if creating {
		c.set("created", now)
		c.set("created_by", nullIfEmpty(actor))
	}
	c.set("last_modified", now)
	c.set("last_modified_by", nullIfEmpty(actor))
}

// filters accumulates WHERE clauses with positional arguments.
type filters struct {
	clauses []string
	args    []any
}

func (f *filters) add(clause string, value any) {
	f.args = append(f.args, value)
	f.clauses = append(f.clauses, fmt.Sprintf(clause, len(f.args)))
}

func (f *filters) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page appends ORDER BY and LIMIT/OFFSET to a filtered query.
func (f *filters) page(query, order string, opts store.ListOptions) (string, []any) {
	opts = opts.Normalize()
	args := append(append([]any(nil), f.args...), opts.Limit, opts.Offset)
	return fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		query, f.where(), order, len(args)-1, len(args)), args
}

func activeFilter(f *filters, column string, opts store.ListOptions) {
	if opts.Active != nil {
		f.add(column+" = $%d", *opts.Active)
	}
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// collectRows scans every row with scan and closes rows.
func collectRows[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// fetchOne loads the row with the given id, mapping a miss to ErrNotFound.
func fetchOne[T any](ctx context.Context, q querier, table, cols string, id int64, scan func(pgx.Row) (T, error)) (T, error) {
	item, err := scan(q.QueryRow(ctx, "SELECT "+cols+" FROM "+table+" WHERE id = $1", id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, fmt.Errorf("%w: %s %d", store.ErrNotFound, table, id)
		}
		return zero, err
	}
	return item, nil
}

// listHydrated runs a list query and the hydration of its results in one
// read snapshot.
func listHydrated[T any](ctx context.Context, s *Store, query string, args []any, scan func(pgx.Row) (T, error), hydrate func(context.Context, querier, []T) error) ([]T, error) {
	var items []T
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		if items, err = collectRows(rows, scan); err != nil {
			return err
		}
		return hydrate(ctx, tx, items)
	})
	return items, err
}

// getHydrated is listHydrated for a single row addressed by id.
func getHydrated[T any](ctx context.Context, s *Store, table, cols string, id int64, scan func(pgx.Row) (T, error), hydrate func(context.Context, querier, []T) error) (T, error) {
	var item T
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		found, err := fetchOne(ctx, tx, table, cols, id, scan)
		if err != nil {
			return err
		}
		items := []T{found}
		if err := hydrate(ctx, tx, items); err != nil {
			return err
		}
		item = items[0]
		return nil
	})
	return item, err
}
