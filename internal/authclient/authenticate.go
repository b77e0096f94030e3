package authclient

import (
	"net/http"

	"github.com/Mutombe/silver-carbon/internal/models"
)

// authenticate возвращает копию запроса с Authorization от текущей пары.
// Без пары запрос уходит как есть: защищённые эндпойнты backend отклонит сам.
// Тело без Content-Type помечается как JSON.
func authenticate(req *http.Request, pair models.TokenPair, ok bool) *http.Request {
	out := req.Clone(req.Context())

	if ok && pair.Access != "" {
		out.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	if hasBody(req) && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", "application/json")
	}

	return out
}

func hasBody(req *http.Request) bool {
	return req.Body != nil && req.Body != http.NoBody
}

// replayable — тело можно отправить повторно.
func replayable(req *http.Request) bool {
	return !hasBody(req) || req.GetBody != nil
}

// rewind готовит копию запроса со свежим телом для повтора.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if !hasBody(req) {
		return out, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	out.Body = body

	return out, nil
}
