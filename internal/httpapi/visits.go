package httpapi

import (
	"net/http"
	"time"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/mapper"
	"qms/core-api/internal/models"
	"qms/core-api/internal/store"
)

type customerPayload struct {
	ID          *int64  `json:"id"`
	FirstName   *string `json:"firstName" validate:"required,min=1,max=50"`
	LastName    *string `json:"lastName" validate:"required,min=1,max=50"`
	Email       *string `json:"email" validate:"required,email,max=100"`
	Gender      *string `json:"gender" validate:"required,oneof=M F N/S"`
	YearOfBirth *int    `json:"yearOfBirth" validate:"required,gte=1900,lte=2100"`
	StatusID    *int64  `json:"statusId" validate:"required,gt=0"`
}

func (h *Handler) customerResource() resource[customerPayload, store.CustomerFields, models.Customer, apimodel.Customer] {
	return resource[customerPayload, store.CustomerFields, models.Customer, apimodel.Customer]{
		h:    h,
		name: "customers",
		list: func(r *http.Request) ([]models.Customer, error) {
			opts, err := listOptions(r, false)
			if err != nil {
				return nil, err
			}
			return h.store.ListCustomers(r.Context(), opts)
		},
		get:    h.store.GetCustomer,
		create: h.store.CreateCustomer,
		update: h.store.UpdateCustomer,
		remove: h.store.DeleteCustomer,
		toFields: func(p customerPayload, actor string) store.CustomerFields {
			return store.CustomerFields{
				FirstName:   p.FirstName,
				LastName:    p.LastName,
				Email:       p.Email,
				Gender:      p.Gender,
				YearOfBirth: p.YearOfBirth,
				StatusID:    p.StatusID,
				Actor:       actor,
			}
		},
		toAPI: mapper.Customer,
	}
}

// handleCustomers adds the read-only GET /customers/{id}/appointments and
// GET /customers/{id}/serviceturns views to the standard routes.
func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	segments := resourcePath(r.URL.Path, "customers")
	if len(segments) != 2 {
		h.customerResource().route(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	customerID, err := parseID(segments[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	switch segments[1] {
	case "appointments":
		h.handleCustomerAppointments(w, r, customerID)
	case "serviceturns":
		h.handleCustomerTurns(w, r, customerID)
	default:
		writeError(w, http.StatusNotFound, typeNotFound, "Item not found")
	}
}

func (h *Handler) handleCustomerAppointments(w http.ResponseWriter, r *http.Request, customerID int64) {
	opts, err := listOptions(r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store.GetCustomer(r.Context(), customerID); err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.store.ListAppointments(r.Context(), store.AppointmentFilter{ListOptions: opts, CustomerID: customerID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.appointmentResource().writeList(w, r, items)
}

func (h *Handler) handleCustomerTurns(w http.ResponseWriter, r *http.Request, customerID int64) {
	opts, err := listOptions(r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store.GetCustomer(r.Context(), customerID); err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.store.ListServiceTurns(r.Context(), store.TurnFilter{ListOptions: opts, CustomerID: customerID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.serviceTurnResource().writeList(w, r, items)
}

type appointmentPayload struct {
	ID                    *int64     `json:"id"`
	CustomerID            *int64     `json:"customerId" validate:"required,gt=0"`
	ServiceID             *int64     `json:"serviceId" validate:"required,gt=0"`
	StatusID              *int64     `json:"statusId" validate:"required,gt=0"`
	LocationID            *int64     `json:"locationId" validate:"omitempty,gt=0"`
	ServiceStarted        *time.Time `json:"serviceStarted"`
	ServiceEndingExpected *time.Time `json:"serviceEndingExpected"`
	ServiceEnded          *time.Time `json:"serviceEnded"`
}

func (h *Handler) appointmentResource() resource[appointmentPayload, store.AppointmentFields, models.Appointment, apimodel.Appointment] {
	return resource[appointmentPayload, store.AppointmentFields, models.Appointment, apimodel.Appointment]{
		h:    h,
		name: "appointments",
		list: func(r *http.Request) ([]models.Appointment, error) {
			opts, err := listOptions(r, false)
			if err != nil {
				return nil, err
			}
			customerID, err := parseOptionalID(r, "customerId")
			if err != nil {
				return nil, err
			}
			return h.store.ListAppointments(r.Context(), store.AppointmentFilter{ListOptions: opts, CustomerID: customerID})
		},
		get:    h.store.GetAppointment,
		create: h.store.CreateAppointment,
		update: h.store.UpdateAppointment,
		remove: h.store.DeleteAppointment,
		toFields: func(p appointmentPayload, actor string) store.AppointmentFields {
			return store.AppointmentFields{
				CustomerID:            p.CustomerID,
				ServiceID:             p.ServiceID,
				StatusID:              p.StatusID,
				LocationID:            p.LocationID,
				ServiceStarted:        p.ServiceStarted,
				ServiceEndingExpected: p.ServiceEndingExpected,
				ServiceEnded:          p.ServiceEnded,
				Actor:                 actor,
			}
		},
		toAPI: mapper.Appointment,
	}
}

type serviceTurnPayload struct {
	ID                    *int64     `json:"id"`
	CustomerName          *string    `json:"customerName" validate:"required,min=1,max=100"`
	ServiceID             *int64     `json:"serviceId" validate:"required,gt=0"`
	StatusID              *int64     `json:"statusId" validate:"omitempty,gt=0"`
	PriorityID            *int64     `json:"priorityId" validate:"omitempty,gt=0"`
	AppointmentID         *int64     `json:"appointmentId" validate:"omitempty,gt=0"`
	CustomerID            *int64     `json:"customerId" validate:"omitempty,gt=0"`
	ServiceStarted        *time.Time `json:"serviceStarted"`
	ServiceEndingExpected *time.Time `json:"serviceEndingExpected"`
	ServiceEnded          *time.Time `json:"serviceEnded"`
}

func (h *Handler) serviceTurnResource() resource[serviceTurnPayload, store.ServiceTurnFields, models.ServiceTurn, apimodel.ServiceTurn] {
	return resource[serviceTurnPayload, store.ServiceTurnFields, models.ServiceTurn, apimodel.ServiceTurn]{
		h:    h,
		name: "serviceturns",
		list: func(r *http.Request) ([]models.ServiceTurn, error) {
			opts, err := listOptions(r, false)
			if err != nil {
				return nil, err
			}
			filter := store.TurnFilter{ListOptions: opts}
			if filter.ServiceID, err = parseOptionalID(r, "serviceId"); err != nil {
				return nil, err
			}
			if filter.StatusID, err = parseOptionalID(r, "statusId"); err != nil {
				return nil, err
			}
			if filter.CustomerID, err = parseOptionalID(r, "customerId"); err != nil {
				return nil, err
			}
			return h.store.ListServiceTurns(r.Context(), filter)
		},
		get:    h.store.GetServiceTurn,
		create: h.store.CreateServiceTurn,
		update: h.store.UpdateServiceTurn,
		remove: h.store.DeleteServiceTurn,
		toFields: func(p serviceTurnPayload, actor string) store.ServiceTurnFields {
			return store.ServiceTurnFields{
				CustomerName:          p.CustomerName,
				ServiceID:             p.ServiceID,
				StatusID:              p.StatusID,
				PriorityID:            p.PriorityID,
				AppointmentID:         p.AppointmentID,
				CustomerID:            p.CustomerID,
				ServiceStarted:        p.ServiceStarted,
				ServiceEndingExpected: p.ServiceEndingExpected,
				ServiceEnded:          p.ServiceEnded,
				Actor:                 actor,
			}
		},
		toAPI:   mapper.ServiceTurn,
		changed: h.board.Notify,
	}
}

// handleServiceTurns adds GET /serviceturns/status-table to the standard routes.
func (h *Handler) handleServiceTurns(w http.ResponseWriter, r *http.Request) {
	segments := resourcePath(r.URL.Path, "serviceturns")
	if len(segments) == 1 && segments[0] == "status-table" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleStatusTable(w, r)
		return
	}
	h.serviceTurnResource().route(w, r)
}

func (h *Handler) handleStatusTable(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.TurnStatusTable(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.TurnStatusTable(rows))
}
