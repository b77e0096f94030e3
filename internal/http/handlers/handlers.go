package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mutombe/silver-carbon/internal/clients"
	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
)

// Handlers агрегирует зависимости (REST-клиенты backend'а).
type Handlers struct {
	Clients *clients.Clients
	// LoginPath — куда UI уводит пользователя после завершения сессии.
	LoginPath string
}

func New(c *clients.Clients, loginPath string) *Handlers {
	return &Handlers{Clients: c, LoginPath: loginPath}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через h.writeError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError — apierrors.WriteError плюс Location на страницу входа,
// когда сессия закончилась. Отказ при самом входе (KindUnauthenticated) без Location.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch apierrors.KindOf(err) {
	case apierrors.KindRefreshInvalid, apierrors.KindAuthExpired:
		if h.LoginPath != "" {
			w.Header().Set("Location", h.LoginPath)
		}
	}

	apierrors.WriteError(w, r, err)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

var errInvalidID = errors.New("invalid id")

// pathID — положительный целый {id} из пути.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.Invalid(errInvalidID)
	}

	return id, nil
}

func invalidBody(err error) error {
	return apierrors.Invalid(fmt.Errorf("invalid request body: %w", err))
}
