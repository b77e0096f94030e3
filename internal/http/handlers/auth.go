package handlers

import (
	"net/http"

	"github.com/Mutombe/silver-carbon/internal/models"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		h.writeError(w, r, invalidBody(err))
		return
	}

	out, err := h.Clients.Auth.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		h.writeError(w, r, invalidBody(err))
		return
	}

	out, err := h.Clients.Auth.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var in models.VerifyEmailRequest
	if err := decodeStrict(r, &in); err != nil {
		h.writeError(w, r, invalidBody(err))
		return
	}

	out, err := h.Clients.Auth.VerifyEmail(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Clients.Auth.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session — состояние сессии для UI; без сессии authenticated=false, не 401.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Auth.Session(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
