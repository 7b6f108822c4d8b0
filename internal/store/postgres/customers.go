package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const auditColumns = `created, created_by, last_modified, last_modified_by`

const customerColumns = `id, first_name, last_name, email, gender, year_of_birth, status_id, ` + auditColumns

func scanCustomer(row pgx.Row) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Gender, &c.YearOfBirth, &c.StatusID,
		&c.Created, &c.CreatedBy, &c.LastModified, &c.LastModifiedBy)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, opts store.ListOptions) ([]models.Customer, error) {
	var f filters
	query, args := f.page("SELECT "+customerColumns+" FROM customers", "id ASC", opts)
	return listHydrated(ctx, s, query, args, scanCustomer, hydrateCustomers)
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (models.Customer, error) {
	return getHydrated(ctx, s, "customers", customerColumns, id, scanCustomer, hydrateCustomers)
}

func customerColumnsFor(fields store.CustomerFields) columns {
	var c columns
	setOpt(&c, "first_name", fields.FirstName)
	setOpt(&c, "last_name", fields.LastName)
	setOpt(&c, "email", fields.Email)
	setOpt(&c, "gender", fields.Gender)
	setOpt(&c, "year_of_birth", fields.YearOfBirth)
	setOpt(&c, "status_id", fields.StatusID)
	return c
}

func (s *Store) CreateCustomer(ctx context.Context, fields store.CustomerFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeCustomer); err != nil {
			return err
		}
		c := customerColumnsFor(fields)
		stamp(&c, fields.Actor, true)
		var err error
		id, err = insertRow(ctx, tx, "customers", c)
		return err
	})
	return id, err
}

func (s *Store) UpdateCustomer(ctx context.Context, id int64, fields store.CustomerFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeCustomer); err != nil {
			return err
		}
		c := customerColumnsFor(fields)
		stamp(&c, fields.Actor, false)
		return updateRow(ctx, tx, "customers", id, c)
	})
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "customers", id)
}
