package httpapi

import (
	"net/http"
	"strings"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/mapper"
	"qms/core-api/internal/models"
	"qms/core-api/internal/store"
)

type statusPayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"required,max=250"`
	Type        *string `json:"type" validate:"required,oneof=CATEGORY SERVICE CUSTOMER TURN QUEUE APPOINTMENT"`
	IsActive    *bool   `json:"isActive" validate:"required"`
}

func (h *Handler) statusResource() resource[statusPayload, store.StatusFields, models.Status, apimodel.Status] {
	return resource[statusPayload, store.StatusFields, models.Status, apimodel.Status]{
		h:    h,
		name: "statuses",
		list: func(r *http.Request) ([]models.Status, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			filter := store.StatusFilter{ListOptions: opts}
			if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
				statusType, ok := models.ParseStatusType(strings.ToUpper(raw))
				if !ok {
					return nil, badRequest("type must be one of [CATEGORY SERVICE CUSTOMER TURN QUEUE APPOINTMENT]")
				}
				filter.Type = string(statusType)
			}
			return h.store.ListStatuses(r.Context(), filter)
		},
		get:    h.store.GetStatus,
		create: h.store.CreateStatus,
		update: h.store.UpdateStatus,
		remove: h.store.DeleteStatus,
		toFields: func(p statusPayload, _ string) store.StatusFields {
			return store.StatusFields{
				Name:        p.Name,
				Code:        p.Code,
				Description: p.Description,
				Type:        p.Type,
				IsActive:    p.IsActive,
			}
		},
		toAPI: mapper.Status,
	}
}

type priorityPayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"required,max=250"`
	Weight      *int    `json:"weight" validate:"required,gte=0"`
	IsActive    *bool   `json:"isActive" validate:"required"`
}

func (h *Handler) priorityResource() resource[priorityPayload, store.PriorityFields, models.Priority, apimodel.Priority] {
	return resource[priorityPayload, store.PriorityFields, models.Priority, apimodel.Priority]{
		h:    h,
		name: "priorities",
		list: func(r *http.Request) ([]models.Priority, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			return h.store.ListPriorities(r.Context(), opts)
		},
		get:    h.store.GetPriority,
		create: h.store.CreatePriority,
		update: h.store.UpdatePriority,
		remove: h.store.DeletePriority,
		toFields: func(p priorityPayload, _ string) store.PriorityFields {
			return store.PriorityFields{
				Name:        p.Name,
				Code:        p.Code,
				Weight:      p.Weight,
				Description: p.Description,
				IsActive:    p.IsActive,
			}
		},
		toAPI: mapper.Infallible(mapper.Priority),
	}
}

type locationPayload struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"required,min=1,max=50"`
	Code        *string `json:"code" validate:"required,min=1,max=50"`
	Address     *string `json:"address" validate:"required,max=250"`
	Description *string `json:"description" validate:"required,max=250"`
	IsActive    *bool   `json:"isActive" validate:"required"`
}

func (h *Handler) locationResource() resource[locationPayload, store.LocationFields, models.Location, apimodel.Location] {
	return resource[locationPayload, store.LocationFields, models.Location, apimodel.Location]{
		h:    h,
		name: "locations",
		list: func(r *http.Request) ([]models.Location, error) {
			opts, err := listOptions(r, true)
			if err != nil {
				return nil, err
			}
			return h.store.ListLocations(r.Context(), opts)
		},
		get:    h.store.GetLocation,
		create: h.store.CreateLocation,
		update: h.store.UpdateLocation,
		remove: h.store.DeleteLocation,
		toFields: func(p locationPayload, _ string) store.LocationFields {
			return store.LocationFields{
				Name:        p.Name,
				Code:        p.Code,
				Address:     p.Address,
				Description: p.Description,
				IsActive:    p.IsActive,
			}
		},
		toAPI: mapper.Infallible(mapper.Location),
	}
}
