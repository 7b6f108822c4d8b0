package httpapi

import (
	"net/http"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/mapper"
	"qms/core-api/internal/models"
	"qms/core-api/internal/store"
)

type categoryPayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"required,max=250"`
	IconURL     *string `json:"iconUrl" validate:"required,max=250"`
	IsActive    *bool   `json:"isActive" validate:"required"`
	StatusID    *int64  `json:"statusId" validate:"required,gt=0"`
}

func (h *Handler) categoryResource() resource[categoryPayload, store.CategoryFields, models.Category, apimodel.Category] {
	return resource[categoryPayload, store.CategoryFields, models.Category, apimodel.Category]{
		h:    h,
		name: "categories",
		list: func(r *http.Request) ([]models.Category, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			return h.store.ListCategories(r.Context(), opts)
		},
		get:    h.store.GetCategory,
		create: h.store.CreateCategory,
		update: h.store.UpdateCategory,
		remove: h.store.DeleteCategory,
		toFields: func(p categoryPayload, _ string) store.CategoryFields {
			return store.CategoryFields{
				Name:        p.Name,
				Code:        p.Code,
				Description: p.Description,
				IconURL:     p.IconURL,
				IsActive:    p.IsActive,
				StatusID:    p.StatusID,
			}
		},
		toAPI: mapper.Category,
	}
}

// handleCategories adds GET /categories/{id}/services to the standard routes.
func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	segments := resourcePath(r.URL.Path, "categories")
	if len(segments) == 2 && segments[1] == "services" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		categoryID, err := parseID(segments[0])
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.handleCategoryServices(w, r, categoryID)
		return
	}
	h.categoryResource().route(w, r)
}

func (h *Handler) handleCategoryServices(w http.ResponseWriter, r *http.Request, categoryID int64) {
	opts, err := listOptions(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.fail(w, r, err)
		return
	}
	services, err := h.store.ListServices(r.Context(), store.ServiceFilter{ListOptions: opts, CategoryID: categoryID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.serviceResource().writeList(w, r, services)
}

type servicePayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Prefix      *string `json:"prefix" validate:"required,min=1,max=10"`
	Description *string `json:"description" validate:"required,max=250"`
	IconURL     *string `json:"iconUrl" validate:"required,max=250"`
	IsActive    *bool   `json:"isActive" validate:"required"`
	StatusID    *int64  `json:"statusId" validate:"required,gt=0"`
	CategoryID  *int64  `json:"categoryId" validate:"required,gt=0"`
}

func (h *Handler) serviceResource() resource[servicePayload, store.ServiceFields, models.Service, apimodel.Service] {
	return resource[servicePayload, store.ServiceFields, models.Service, apimodel.Service]{
		h:    h,
		name: "services",
		list: func(r *http.Request) ([]models.Service, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			categoryID, err := parseOptionalID(r, "categoryId")
			if err != nil {
				return nil, err
			}
			return h.store.ListServices(r.Context(), store.ServiceFilter{ListOptions: opts, CategoryID: categoryID})
		},
		get:    h.store.GetService,
		create: h.store.CreateService,
		update: h.store.UpdateService,
		remove: h.store.DeleteService,
		toFields: func(p servicePayload, _ string) store.ServiceFields {
			return store.ServiceFields{
				Name:        p.Name,
				Code:        p.Code,
				Prefix:      p.Prefix,
				Description: p.Description,
				IconURL:     p.IconURL,
				IsActive:    p.IsActive,
				StatusID:    p.StatusID,
				CategoryID:  p.CategoryID,
			}
		},
		toAPI: mapper.Service,
		// The board shows service names.
		changed: h.board.Notify,
	}
}

type issueTicketRequest struct {
	CustomerName *string `json:"customerName" validate:"required,min=1,max=100"`
}

// handleServices adds POST /services/{id}/serviceturns, the ticket issuance
// workflow, to the standard routes.
func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	segments := resourcePath(r.URL.Path, "services")
	if len(segments) == 2 && segments[1] == "serviceturns" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		serviceID, err := parseID(segments[0])
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.handleIssueTicket(w, r, serviceID)
		return
	}
	h.serviceResource().route(w, r)
}

func (h *Handler) handleIssueTicket(w http.ResponseWriter, r *http.Request, serviceID int64) {
	var req issueTicketRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := validatePayload(&req, false); err != nil {
		h.fail(w, r, err)
		return
	}
	issued, err := h.store.IssueTicket(r.Context(), serviceID, *req.CustomerName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ticketsIssued.Add(1)
	h.board.Notify()
	writeJSON(w, http.StatusCreated, mapper.CreatedTurn(issued))
}

type queuePayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"required,max=250"`
	IsActive    *bool   `json:"isActive" validate:"required"`
	StatusID    *int64  `json:"statusId" validate:"required,gt=0"`
	PriorityID  *int64  `json:"priorityId" validate:"required,gt=0"`
}

func (h *Handler) queueResource() resource[queuePayload, store.QueueFields, models.Queue, apimodel.Queue] {
	return resource[queuePayload, store.QueueFields, models.Queue, apimodel.Queue]{
		h:    h,
		name: "queues",
		list: func(r *http.Request) ([]models.Queue, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			return h.store.ListQueues(r.Context(), opts)
		},
		get:    h.store.GetQueue,
		create: h.store.CreateQueue,
		update: h.store.UpdateQueue,
		remove: h.store.DeleteQueue,
		toFields: func(p queuePayload, _ string) store.QueueFields {
			return store.QueueFields{
				Name:        p.Name,
				Code:        p.Code,
				Description: p.Description,
				IsActive:    p.IsActive,
				StatusID:    p.StatusID,
				PriorityID:  p.PriorityID,
			}
		},
		toAPI: mapper.Queue,
	}
}
