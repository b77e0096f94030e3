package handlers

import (
	"net/http"
	"strings"

	"github.com/Mutombe/silver-carbon/internal/models"
)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Profile.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, r, invalidBody(err))
		return
	}

	picture, err := formFile(r, "profile_picture")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	in := models.ProfileForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Picture:   picture,
	}

	out, err := h.Clients.Profile.Update(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
