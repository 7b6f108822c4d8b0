package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const appointmentColumns = `id, customer_id, service_id, status_id, location_id,
	service_started, service_ending_expected, service_ended, ` + auditColumns

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.CustomerID, &a.ServiceID, &a.StatusID, &a.LocationID,
		&a.ServiceStarted, &a.ServiceEndingExpected, &a.ServiceEnded,
		&a.Created, &a.CreatedBy, &a.LastModified, &a.LastModifiedBy)
	return a, err
}

func (s *Store) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	var f filters
	if filter.CustomerID != 0 {
		f.add("customer_id = $%d", filter.CustomerID)
	}
	query, args := f.page("SELECT "+appointmentColumns+" FROM appointments", "id ASC", filter.ListOptions)
	return listHydrated(ctx, s, query, args, scanAppointment, hydrateAppointments)
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (models.Appointment, error) {
	return getHydrated(ctx, s, "appointments", appointmentColumns, id, scanAppointment, hydrateAppointments)
}

func appointmentColumnsFor(fields store.AppointmentFields) columns {
	var c columns
	setOpt(&c, "customer_id", fields.CustomerID)
	setOpt(&c, "service_id", fields.ServiceID)
	setOpt(&c, "status_id", fields.StatusID)
	setOpt(&c, "location_id", fields.LocationID)
	setOpt(&c, "service_started", fields.ServiceStarted)
	setOpt(&c, "service_ending_expected", fields.ServiceEndingExpected)
	setOpt(&c, "service_ended", fields.ServiceEnded)
	return c
}

func (s *Store) CreateAppointment(ctx context.Context, fields store.AppointmentFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeAppointment); err != nil {
			return err
		}
		c := appointmentColumnsFor(fields)
		stamp(&c, fields.Actor, true)
		var err error
		id, err = insertRow(ctx, tx, "appointments", c)
		return err
	})
	return id, err
}

func (s *Store) UpdateAppointment(ctx context.Context, id int64, fields store.AppointmentFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeAppointment); err != nil {
			return err
		}
		c := appointmentColumnsFor(fields)
		stamp(&c, fields.Actor, false)
		return updateRow(ctx, tx, "appointments", id, c)
	})
}

func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "appointments", id)
}
