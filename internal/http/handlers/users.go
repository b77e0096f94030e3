package handlers

import (
	"net/http"

	"github.com/Mutombe/silver-carbon/internal/models"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.UsersFilter{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}

	out, err := h.Clients.Users.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	active, err := h.Clients.Users.ToggleActive(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ToggleActiveResponse{IsActive: active})
}

func (h *Handlers) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in models.ChangeRoleRequest
	if err := decodeStrict(r, &in); err != nil {
		h.writeError(w, r, invalidBody(err))
		return
	}

	role, err := h.Clients.Users.ChangeRole(r.Context(), id, in.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChangeRoleResponse{Role: role})
}
