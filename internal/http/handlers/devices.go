package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// maxUploadBytes — предел multipart-формы устройства в памяти.
const maxUploadBytes = 32 << 20

func (h *Handlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Devices.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) MyDevices(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Devices.Mine(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.Clients.Devices.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	in, err := parseDeviceForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.Clients.Devices.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	in, err := parseDeviceForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.Clients.Devices.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Clients.Devices.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) FuelTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Devices.FuelTypes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) TechnologyTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Clients.Devices.TechnologyTypes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// parseDeviceForm читает multipart-форму UI. Числа и даты разбираются здесь,
// остальные правила проверяет клиент devices.
func parseDeviceForm(r *http.Request) (models.DeviceForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return models.DeviceForm{}, invalidBody(err)
	}

	v := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }

	in := models.DeviceForm{
		DeviceName:           v("device_name"),
		DefaultAccountCode:   v("default_account_code"),
		IssuerOrganisation:   v("issuer_organisation"),
		DeviceFuel:           v("device_fuel"),
		DeviceTechnology:     v("device_technology"),
		OtherLabellingScheme: v("other_labelling_scheme"),
		Address:              v("address"),
		StateProvince:        v("state_province"),
		Postcode:             v("postcode"),
		Country:              v("country"),
		AdditionalNotes:      v("additional_notes"),
		Files:                map[string]*models.File{},
	}

	var err error
	if in.Capacity, err = parseFloat("capacity", v("capacity")); err != nil {
		return models.DeviceForm{}, err
	}
	if in.CommissioningDate, err = parseDate("commissioning_date", v("commissioning_date")); err != nil {
		return models.DeviceForm{}, err
	}
	if in.RequestedEffectiveRegistrationDate, err = parseDate("requested_effective_registration_date", v("requested_effective_registration_date")); err != nil {
		return models.DeviceForm{}, err
	}
	if s := v("latitude"); s != "" {
		lat, err := parseFloat("latitude", s)
		if err != nil {
			return models.DeviceForm{}, err
		}
		in.Latitude = &lat
	}
	if s := v("longitude"); s != "" {
		lon, err := parseFloat("longitude", s)
		if err != nil {
			return models.DeviceForm{}, err
		}
		in.Longitude = &lon
	}

	for _, name := range models.DeviceFileFields {
		f, err := formFile(r, name)
		if err != nil {
			return models.DeviceForm{}, err
		}
		if f != nil {
			in.Files[name] = f
		}
	}

	return in, nil
}

func parseFloat(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apierrors.Invalid(fmt.Errorf("%s: not a number", field))
	}

	return f, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, apierrors.Invalid(fmt.Errorf("%s: expected YYYY-MM-DD", field))
	}

	return t, nil
}

// formFile — nil, если поле не передано.
func formFile(r *http.Request, name string) (*models.File, error) {
	file, hdr, err := r.FormFile(name)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, invalidBody(err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, invalidBody(err)
	}

	return &models.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
