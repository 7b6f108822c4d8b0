package postgres

import (
	"context"

	"qms/core-api/internal/models"

	"github.com/jackc/pgx/v5"
)

// Related rows are loaded in one batch per table instead of one query per row.

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func loadByID[T any](ctx context.Context, q querier, table, cols string, ids []int64, scan func(pgx.Row) (T, error), key func(T) int64) (map[int64]T, error) {
	ids = uniqueIDs(ids)
	out := make(map[int64]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, "SELECT "+cols+" FROM "+table+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	items, err := collectRows(rows, scan)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[key(item)] = item
	}
	return out, nil
}

func loadStatuses(ctx context.Context, q querier, ids []int64) (map[int64]models.Status, error) {
	return loadByID(ctx, q, "statuses", statusColumns, ids, scanStatus, func(s models.Status) int64 { return s.ID })
}

func loadPriorities(ctx context.Context, q querier, ids []int64) (map[int64]models.Priority, error) {
	return loadByID(ctx, q, "priorities", priorityColumns, ids, scanPriority, func(p models.Priority) int64 { return p.ID })
}

func loadLocations(ctx context.Context, q querier, ids []int64) (map[int64]models.Location, error) {
	return loadByID(ctx, q, "locations", locationColumns, ids, scanLocation, func(l models.Location) int64 { return l.ID })
}

func loadCategories(ctx context.Context, q querier, ids []int64) (map[int64]models.Category, error) {
	byID, err := loadByID(ctx, q, "categories", categoryColumns, ids, scanCategory, func(c models.Category) int64 { return c.ID })
	if err != nil {
		return nil, err
	}
	items := valuesOf(byID)
	if err := hydrateCategories(ctx, q, items); err != nil {
		return nil, err
	}
	return indexBy(items, func(c models.Category) int64 { return c.ID }), nil
}

func loadServices(ctx context.Context, q querier, ids []int64) (map[int64]models.Service, error) {
	byID, err := loadByID(ctx, q, "services", serviceColumns, ids, scanService, func(s models.Service) int64 { return s.ID })
	if err != nil {
		return nil, err
	}
	items := valuesOf(byID)
	if err := hydrateServices(ctx, q, items); err != nil {
		return nil, err
	}
	return indexBy(items, func(s models.Service) int64 { return s.ID }), nil
}

func loadCustomers(ctx context.Context, q querier, ids []int64) (map[int64]models.Customer, error) {
	byID, err := loadByID(ctx, q, "customers", customerColumns, ids, scanCustomer, func(c models.Customer) int64 { return c.ID })
	if err != nil {
		return nil, err
	}
	items := valuesOf(byID)
	if err := hydrateCustomers(ctx, q, items); err != nil {
		return nil, err
	}
	return indexBy(items, func(c models.Customer) int64 { return c.ID }), nil
}

func loadAppointments(ctx context.Context, q querier, ids []int64) (map[int64]models.Appointment, error) {
	byID, err := loadByID(ctx, q, "appointments", appointmentColumns, ids, scanAppointment, func(a models.Appointment) int64 { return a.ID })
	if err != nil {
		return nil, err
	}
	items := valuesOf(byID)
	if err := hydrateAppointments(ctx, q, items); err != nil {
		return nil, err
	}
	return indexBy(items, func(a models.Appointment) int64 { return a.ID }), nil
}

func valuesOf[T any](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func indexBy[T any](items []T, key func(T) int64) map[int64]T {
	out := make(map[int64]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

func hydrateCategories(ctx context.Context, q querier, items []models.Category) error {
	ids := make([]int64, len(items))
	for i, c := range items {
		ids[i] = c.StatusID
	}
	statuses, err := loadStatuses(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Status = statuses[items[i].StatusID]
	}
	return nil
}

func hydrateServices(ctx context.Context, q querier, items []models.Service) error {
	statusIDs := make([]int64, len(items))
	categoryIDs := make([]int64, len(items))
	for i, s := range items {
		statusIDs[i] = s.StatusID
		categoryIDs[i] = s.CategoryID
	}
	statuses, err := loadStatuses(ctx, q, statusIDs)
	if err != nil {
		return err
	}
	categories, err := loadCategories(ctx, q, categoryIDs)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Status = statuses[items[i].StatusID]
		items[i].Category = categories[items[i].CategoryID]
	}
	return nil
}

func hydrateQueues(ctx context.Context, q querier, items []models.Queue) error {
	statusIDs := make([]int64, len(items))
	priorityIDs := make([]int64, len(items))
	for i, item := range items {
		statusIDs[i] = item.StatusID
		priorityIDs[i] = item.PriorityID
	}
	statuses, err := loadStatuses(ctx, q, statusIDs)
	if err != nil {
		return err
	}
	priorities, err := loadPriorities(ctx, q, priorityIDs)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Status = statuses[items[i].StatusID]
		items[i].Priority = priorities[items[i].PriorityID]
	}
	return nil
}

func hydrateCustomers(ctx context.Context, q querier, items []models.Customer) error {
	ids := make([]int64, len(items))
	for i, c := range items {
		ids[i] = c.StatusID
	}
	statuses, err := loadStatuses(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Status = statuses[items[i].StatusID]
	}
	return nil
}

func hydrateAppointments(ctx context.Context, q querier, items []models.Appointment) error {
	var customerIDs, serviceIDs, statusIDs, locationIDs []int64
	for _, a := range items {
		customerIDs = append(customerIDs, a.CustomerID)
		serviceIDs = append(serviceIDs, a.ServiceID)
		statusIDs = append(statusIDs, a.StatusID)
		if a.LocationID.Valid {
			locationIDs = append(locationIDs, a.LocationID.Int64)
		}
	}
	customers, err := loadCustomers(ctx, q, customerIDs)
	if err != nil {
		return err
	}
	services, err := loadServices(ctx, q, serviceIDs)
	if err != nil {
		return err
	}
	statuses, err := loadStatuses(ctx, q, statusIDs)
	if err != nil {
		return err
	}
	locations, err := loadLocations(ctx, q, locationIDs)
	if err != nil {
		return err
	}
	for i := range items {
		a := &items[i]
		a.Customer = customers[a.CustomerID]
		a.Service = services[a.ServiceID]
		a.Status = statuses[a.StatusID]
		if a.LocationID.Valid {
			if loc, ok := locations[a.LocationID.Int64]; ok {
				a.Location = &loc
			}
		}
	}
	return nil
}

func hydrateServiceTurns(ctx context.Context, q querier, items []models.ServiceTurn) error {
	var serviceIDs, statusIDs, priorityIDs, appointmentIDs, customerIDs []int64
	for _, t := range items {
		serviceIDs = append(serviceIDs, t.ServiceID)
		statusIDs = append(statusIDs, t.StatusID)
		priorityIDs = append(priorityIDs, t.PriorityID)
		if t.AppointmentID.Valid {
			appointmentIDs = append(appointmentIDs, t.AppointmentID.Int64)
		}
		if t.CustomerID.Valid {
			customerIDs = append(customerIDs, t.CustomerID.Int64)
		}
	}
	services, err := loadServices(ctx, q, serviceIDs)
	if err != nil {
		return err
	}
	statuses, err := loadStatuses(ctx, q, statusIDs)
	if err != nil {
		return err
	}
	priorities, err := loadPriorities(ctx, q, priorityIDs)
	if err != nil {
		return err
	}
	appointments, err := loadAppointments(ctx, q, appointmentIDs)
	if err != nil {
		return err
	}
	customers, err := loadCustomers(ctx, q, customerIDs)
	if err != nil {
		return err
	}
	for i := range items {
		t := &items[i]
		t.Service = services[t.ServiceID]
		t.Status = statuses[t.StatusID]
		t.Priority = priorities[t.PriorityID]
		if t.AppointmentID.Valid {
			if a, ok := appointments[t.AppointmentID.Int64]; ok {
				t.Appointment = &a
			}
		}
		if t.CustomerID.Valid {
			if c, ok := customers[t.CustomerID.Int64]; ok {
				t.Customer = &c
			}
		}
	}
	return nil
}
