// Package mapper turns stored records into API shapes. Every function is pure;
// an enum code the API does not know fails with store.ErrUnknownEnumValue.
package mapper

import (
	"fmt"
	"time"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/guregu/null/v5"
)

func Status(s models.Status) (apimodel.Status, error) {
	statusType, ok := models.ParseStatusType(s.Type)
	if !ok {
		return apimodel.Status{}, fmt.Errorf("%w: status type %q", store.ErrUnknownEnumValue, s.Type)
	}
	return apimodel.Status{
		ID:          s.ID,
		Name:        s.Name,
		Code:        s.Code,
		Description: s.Description,
		Type:        string(statusType),
		IsActive:    s.IsActive,
	}, nil
}

func Priority(p models.Priority) apimodel.Priority {
	return apimodel.Priority{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Weight:      p.Weight,
		IsActive:    p.IsActive,
	}
}

func Location(l models.Location) apimodel.Location {
	return apimodel.Location{
		ID:          l.ID,
		Name:        l.Name,
		Code:        l.Code,
		Address:     l.Address,
		Description: l.Description,
		IsActive:    l.IsActive,
	}
}

func Category(c models.Category) (apimodel.Category, error) {
	status, err := Status(c.Status)
	if err != nil {
		return apimodel.Category{}, err
	}
	return apimodel.Category{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		IconURL:     c.IconURL,
		IsActive:    c.IsActive,
		Status:      status,
	}, nil
}

func Service(s models.Service) (apimodel.Service, error) {
	status, err := Status(s.Status)
	if err != nil {
		return apimodel.Service{}, err
	}
	category, err := Category(s.Category)
	if err != nil {
		return apimodel.Service{}, err
	}
	return apimodel.Service{
		ID:          s.ID,
		Name:        s.Name,
		Code:        s.Code,
		Prefix:      s.Prefix,
		Description: s.Description,
		IconURL:     s.IconURL,
		IsActive:    s.IsActive,
		Status:      status,
		Category:    category,
	}, nil
}

func Queue(q models.Queue) (apimodel.Queue, error) {
	status, err := Status(q.Status)
	if err != nil {
		return apimodel.Queue{}, err
	}
	return apimodel.Queue{
		ID:          q.ID,
		Name:        q.Name,
		Code:        q.Code,
		Description: q.Description,
		IsActive:    q.IsActive,
		Status:      status,
		Priority:    Priority(q.Priority),
	}, nil
}

func Customer(c models.Customer) (apimodel.Customer, error) {
	gender, ok := models.ParseGender(c.Gender)
	if !ok {
		return apimodel.Customer{}, fmt.Errorf("%w: gender %q", store.ErrUnknownEnumValue, c.Gender)
	}
	status, err := Status(c.Status)
	if err != nil {
		return apimodel.Customer{}, err
	}
	return apimodel.Customer{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Gender:      string(gender),
		YearOfBirth: c.YearOfBirth,
		Status:      status,
		Audit:       audit(c.Audit),
	}, nil
}

func Appointment(a models.Appointment) (apimodel.Appointment, error) {
	customer, err := Customer(a.Customer)
	if err != nil {
		return apimodel.Appointment{}, err
	}
	service, err := Service(a.Service)
	if err != nil {
		return apimodel.Appointment{}, err
	}
	status, err := Status(a.Status)
	if err != nil {
		return apimodel.Appointment{}, err
	}
	out := apimodel.Appointment{
		ID:                    a.ID,
		Customer:              customer,
		Service:               service,
		Status:                status,
		ServiceStarted:        timestamp(a.ServiceStarted),
		ServiceEndingExpected: timestamp(a.ServiceEndingExpected),
		ServiceEnded:          timestamp(a.ServiceEnded),
		Audit:                 audit(a.Audit),
	}
	if a.Location != nil {
		loc := Location(*a.Location)
		out.Location = &loc
	}
	return out, nil
}

func ServiceTurn(t models.ServiceTurn) (apimodel.ServiceTurn, error) {
	service, err := Service(t.Service)
	if err != nil {
		return apimodel.ServiceTurn{}, err
	}
	status, err := Status(t.Status)
	if err != nil {
		return apimodel.ServiceTurn{}, err
	}
	out := apimodel.ServiceTurn{
		ID:                    t.ID,
		TicketNumber:          t.TicketNumber,
		CustomerName:          t.CustomerName,
		Service:               service,
		Status:                status,
		Priority:              Priority(t.Priority),
		ServiceStarted:        timestamp(t.ServiceStarted),
		ServiceEndingExpected: timestamp(t.ServiceEndingExpected),
		ServiceEnded:          timestamp(t.ServiceEnded),
		Audit:                 audit(t.Audit),
	}
	if t.Appointment != nil {
		appointment, err := Appointment(*t.Appointment)
		if err != nil {
			return apimodel.ServiceTurn{}, err
		}
		out.Appointment = &appointment
	}
	if t.Customer != nil {
		customer, err := Customer(*t.Customer)
		if err != nil {
			return apimodel.ServiceTurn{}, err
		}
		out.Customer = &customer
	}
	return out, nil
}

func CreatedTurn(t models.IssuedTurn) apimodel.CreatedTurn {
	return apimodel.CreatedTurn{
		ID:            t.ID,
		CustomerName:  t.CustomerName,
		TicketNumber:  t.TicketNumber,
		PeopleInQueue: t.PeopleInQueue,
	}
}

func TurnStatusRow(t models.TurnStatus) apimodel.TurnStatusRow {
	return apimodel.TurnStatusRow{
		TicketNumber: t.TicketNumber,
		QueueName:    t.ServiceName,
		StatusName:   t.StatusName,
		StatusCode:   t.StatusCode,
	}
}

// TurnStatusTable maps the aggregated table, keeping its order. Empty tables
// encode as [].
func TurnStatusTable(rows []models.TurnStatus) []apimodel.TurnStatusRow {
	out := make([]apimodel.TurnStatusRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, TurnStatusRow(row))
	}
	return out
}

// List maps every item with fn. The result is never nil so empty lists
// encode as [].
func List[T, R any](items []T, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, 0, len(items))
	for _, item := range items {
		mapped, err := fn(item)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

// Infallible adapts a mapper that cannot fail to List.
func Infallible[T, R any](fn func(T) R) func(T) (R, error) {
	return func(item T) (R, error) { return fn(item), nil }
}

func audit(a models.Audit) apimodel.Audit {
	return apimodel.Audit{
		Created:        formatTime(a.Created),
		CreatedBy:      orNotAvailable(a.CreatedBy),
		LastModified:   formatTime(a.LastModified),
		LastModifiedBy: orNotAvailable(a.LastModifiedBy),
	}
}

func orNotAvailable(s null.String) string {
	if !s.Valid || s.String == "" {
		return apimodel.NotAvailable
	}
	return s.String
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func timestamp(t null.Time) null.String {
	if !t.Valid {
		return null.String{}
	}
	return null.StringFrom(formatTime(t.Time))
}
