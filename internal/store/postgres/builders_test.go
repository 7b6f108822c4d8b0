package postgres

import (
	"errors"
	"fmt"
	"testing"

	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestColumnsInsertSQL(t *testing.T) {
	var c columns
	name := "Payments"
	var missing *string
	c.set("code", "PAY")
	setOpt(&c, "name", &name)
	setOpt(&c, "description", missing)

	assert.Equal(t, "INSERT INTO categories (code, name) VALUES ($1, $2) RETURNING id", c.insertSQL("categories"))
	assert.Equal(t, []any{"PAY", "Payments"}, c.args)
}

func TestColumnsCloneIsIndependent(t *testing.T) {
	var base columns
	base.set("customer_name", "Ana")

	first := base.clone()
	first.set("ticket_number", "PS-1")
	second := base.clone()
	second.set("ticket_number", "PS-2")

	assert.Equal(t, []string{"customer_name"}, base.names)
	assert.Equal(t, []any{"Ana", "PS-1"}, first.args)
	assert.Equal(t, []any{"Ana", "PS-2"}, second.args)
}

func TestFiltersPage(t *testing.T) {
	var f filters
	active := true
	f.add("service_id = $%d", int64(3))
	activeFilter(&f, "is_active", store.ListOptions{Active: &active})

	query, args := f.page("SELECT id FROM services", "id ASC", store.ListOptions{Offset: 20, Limit: 500})

	assert.Equal(t, "SELECT id FROM services WHERE service_id = $1 AND is_active = $2 ORDER BY id ASC LIMIT $3 OFFSET $4", query)
	assert.Equal(t, []any{int64(3), true, store.MaxLimit, 20}, args)
}

func TestFiltersPageWithoutClauses(t *testing.T) {
	var f filters
	query, args := f.page("SELECT id FROM statuses", "id ASC", store.ListOptions{})

	assert.Equal(t, "SELECT id FROM statuses ORDER BY id ASC LIMIT $1 OFFSET $2", query)
	assert.Equal(t, []any{store.DefaultLimit, 0}, args)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "category_code_unique"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, store.ErrInvalidReference},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, store.ErrInvalidValue},
		{"check", &pgconn.PgError{Code: "23514"}, store.ErrInvalidValue},
		{"sentinel", fmt.Errorf("wrapped: %w", store.ErrInvalidStatusType), store.ErrInvalidStatusType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}

	other := errors.New("connection refused")
	assert.Equal(t, other, classify(other))
	assert.NoError(t, classify(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: ticketNumberConstraint})

	assert.True(t, isUniqueViolation(err, ticketNumberConstraint))
	assert.True(t, isUniqueViolation(err, ""))
	assert.False(t, isUniqueViolation(err, "service_prefix_unique"))
	assert.False(t, isUniqueViolation(errors.New("boom"), ""))
}
