package store

import (
	"context"
	"time"

	"qms/core-api/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListOptions carries offset pagination plus the optional is_active filter.
type ListOptions struct {
	Offset int
	Limit  int
	Active *bool
}

// Normalize clamps pagination to sane bounds.
func (o ListOptions) Normalize() ListOptions {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

type StatusFilter struct {
	ListOptions
	Type string
}

type TurnFilter struct {
	ListOptions
	ServiceID  int64
	StatusID   int64
	CustomerID int64
}

type AppointmentFilter struct {
	ListOptions
	CustomerID int64
}

type ServiceFilter struct {
	ListOptions
	CategoryID int64
}

// Field sets below are shared by create, update and patch. A nil pointer
// means "not supplied": create requires the mandatory ones, patch leaves the
// column untouched.

type StatusFields struct {
	Name        *string
	Code        *string
	Description *string
	Type        *string
	IsActive    *bool
}

type PriorityFields struct {
	Name        *string
	Code        *string
	Weight      *int
	Description *string
	IsActive    *bool
}

type LocationFields struct {
	Name        *string
	Code        *string
	Address     *string
	Description *string
	IsActive    *bool
}

type CategoryFields struct {
	Name        *string
	Code        *string
	Description *string
	IconURL     *string
	IsActive    *bool
	StatusID    *int64
}

type ServiceFields struct {
	Name        *string
	Code        *string
	Prefix      *string
	Description *string
	IconURL     *string
	IsActive    *bool
	StatusID    *int64
	CategoryID  *int64
}

type QueueFields struct {
	Name        *string
	Code        *string
	Description *string
	IsActive    *bool
	StatusID    *int64
	PriorityID  *int64
}

type CustomerFields struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Gender      *string
	YearOfBirth *int
	StatusID    *int64
	Actor       string
}

type AppointmentFields struct {
	CustomerID            *int64
	ServiceID             *int64
	StatusID              *int64
	LocationID            *int64
	ServiceStarted        *time.Time
	ServiceEndingExpected *time.Time
	ServiceEnded          *time.Time
	Actor                 string
}

type ServiceTurnFields struct {
	CustomerName          *string
	ServiceID             *int64
	StatusID              *int64
	PriorityID            *int64
	AppointmentID         *int64
	CustomerID            *int64
	ServiceStarted        *time.Time
	ServiceEndingExpected *time.Time
	ServiceEnded          *time.Time
	Actor                 string
}

type StatusStore interface {
	ListStatuses(ctx context.Context, filter StatusFilter) ([]models.Status, error)
	GetStatus(ctx context.Context, id int64) (models.Status, error)
	CreateStatus(ctx context.Context, fields StatusFields) (int64, error)
	UpdateStatus(ctx context.Context, id int64, fields StatusFields) error
	DeleteStatus(ctx context.Context, id int64) error
	ValidateStatusType(ctx context.Context, statusID int64, expected models.StatusType) error
}

type PriorityStore interface {
	ListPriorities(ctx context.Context, opts ListOptions) ([]models.Priority, error)
	GetPriority(ctx context.Context, id int64) (models.Priority, error)
	CreatePriority(ctx context.Context, fields PriorityFields) (int64, error)
	UpdatePriority(ctx context.Context, id int64, fields PriorityFields) error
	DeletePriority(ctx context.Context, id int64) error
}

type LocationStore interface {
	ListLocations(ctx context.Context, opts ListOptions) ([]models.Location, error)
	GetLocation(ctx context.Context, id int64) (models.Location, error)
	CreateLocation(ctx context.Context, fields LocationFields) (int64, error)
	UpdateLocation(ctx context.Context, id int64, fields LocationFields) error
	DeleteLocation(ctx context.Context, id int64) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context, opts ListOptions) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, fields CategoryFields) (int64, error)
	UpdateCategory(ctx context.Context, id int64, fields CategoryFields) error
	DeleteCategory(ctx context.Context, id int64) error
}

type ServiceStore interface {
	ListServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error)
	GetService(ctx context.Context, id int64) (models.Service, error)
	CreateService(ctx context.Context, fields ServiceFields) (int64, error)
	UpdateService(ctx context.Context, id int64, fields ServiceFields) error
	DeleteService(ctx context.Context, id int64) error
}

type QueueStore interface {
	ListQueues(ctx context.Context, opts ListOptions) ([]models.Queue, error)
	GetQueue(ctx context.Context, id int64) (models.Queue, error)
	CreateQueue(ctx context.Context, fields QueueFields) (int64, error)
	UpdateQueue(ctx context.Context, id int64, fields QueueFields) error
	DeleteQueue(ctx context.Context, id int64) error
}

type CustomerStore interface {
	ListCustomers(ctx context.Context, opts ListOptions) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (models.Customer, error)
	CreateCustomer(ctx context.Context, fields CustomerFields) (int64, error)
	UpdateCustomer(ctx context.Context, id int64, fields CustomerFields) error
	DeleteCustomer(ctx context.Context, id int64) error
}

type AppointmentStore interface {
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (models.Appointment, error)
	CreateAppointment(ctx context.Context, fields AppointmentFields) (int64, error)
	UpdateAppointment(ctx context.Context, id int64, fields AppointmentFields) error
	DeleteAppointment(ctx context.Context, id int64) error
}

type ServiceTurnStore interface {
	ListServiceTurns(ctx context.Context, filter TurnFilter) ([]models.ServiceTurn, error)
	GetServiceTurn(ctx context.Context, id int64) (models.ServiceTurn, error)
	CreateServiceTurn(ctx context.Context, fields ServiceTurnFields) (int64, error)
	UpdateServiceTurn(ctx context.Context, id int64, fields ServiceTurnFields) error
	DeleteServiceTurn(ctx context.Context, id int64) error
	IssueTicket(ctx context.Context, serviceID int64, customerName string) (models.IssuedTurn, error)
	TurnStatusTable(ctx context.Context) ([]models.TurnStatus, error)
}

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	StatusStore
	PriorityStore
	LocationStore
	CategoryStore
	ServiceStore
	QueueStore
	CustomerStore
	AppointmentStore
	ServiceTurnStore
}
