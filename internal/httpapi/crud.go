package httpapi

import (
	"context"
	"net/http"

	"qms/core-api/internal/apimodel"
)

const (
	messageAdded   = "Item added successfully"
	messageUpdated = "Item updated successfully"
	messageDeleted = "Item deleted successfully"
)

// resource wires the six standard operations of one entity. P is the request
// payload, F the store field set, M the stored record and R its API shape.
type resource[P, F, M, R any] struct {
	h        *Handler
	name     string
	list     func(r *http.Request) ([]M, error)
	get      func(ctx context.Context, id int64) (M, error)
	create   func(ctx context.Context, fields F) (int64, error)
	update   func(ctx context.Context, id int64, fields F) error
	remove   func(ctx context.Context, id int64) error
	toFields func(payload P, actor string) F
	toAPI    func(M) (R, error)
	// changed runs after every successful write.
	changed func()
}

func (res resource[P, F, M, R]) route(w http.ResponseWriter, r *http.Request) {
	segments := resourcePath(r.URL.Path, res.name)
	switch len(segments) {
	case 0:
		res.handleCollection(w, r)
	case 1:
		id, err := parseID(segments[0])
		if err != nil {
			res.h.fail(w, r, err)
			return
		}
		res.handleItem(w, r, id)
	default:
		writeError(w, http.StatusNotFound, typeNotFound, "Item not found")
	}
}

func (res resource[P, F, M, R]) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		res.handleList(w, r)
	case http.MethodPost:
		res.handleCreate(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (res resource[P, F, M, R]) handleItem(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		res.handleGet(w, r, id)
	case http.MethodPut:
		res.handleUpdate(w, r, id, false)
	case http.MethodPatch:
		res.handleUpdate(w, r, id, true)
	case http.MethodDelete:
		res.handleDelete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (res resource[P, F, M, R]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := res.list(r)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	res.writeList(w, r, items)
}

func (res resource[P, F, M, R]) writeList(w http.ResponseWriter, r *http.Request, items []M) {
	out := make([]R, 0, len(items))
	for _, item := range items {
		mapped, err := res.toAPI(item)
		if err != nil {
			res.h.fail(w, r, err)
			return
		}
		out = append(out, mapped)
	}
	writeJSON(w, http.StatusOK, out)
}

func (res resource[P, F, M, R]) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := res.get(r.Context(), id)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	out, err := res.toAPI(item)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (res resource[P, F, M, R]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload P
	if !decodeRequest(w, r, &payload) {
		return
	}
	if err := validatePayload(&payload, false); err != nil {
		res.h.fail(w, r, err)
		return
	}
	if _, err := res.create(r.Context(), res.toFields(payload, actorFromContext(r.Context()))); err != nil {
		res.h.fail(w, r, err)
		return
	}
	res.notify()
	writeResult(w, http.StatusCreated, apimodel.OperationAdd, messageAdded)
}

// handleUpdate serves PUT (every mandatory field required) and PATCH (only
// supplied fields are written).
func (res resource[P, F, M, R]) handleUpdate(w http.ResponseWriter, r *http.Request, id int64, partial bool) {
	var payload P
	if !decodeRequest(w, r, &payload) {
		return
	}
	if err := validatePayload(&payload, partial); err != nil {
		res.h.fail(w, r, err)
		return
	}
	if err := res.update(r.Context(), id, res.toFields(payload, actorFromContext(r.Context()))); err != nil {
		res.h.fail(w, r, err)
		return
	}
	res.notify()
	writeResult(w, http.StatusOK, apimodel.OperationUpdate, messageUpdated)
}

func (res resource[P, F, M, R]) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := res.remove(r.Context(), id); err != nil {
		res.h.fail(w, r, err)
		return
	}
	res.notify()
	writeResult(w, http.StatusOK, apimodel.OperationDelete, messageDeleted)
}

func (res resource[P, F, M, R]) notify() {
	if res.changed != nil {
		res.changed()
	}
}
