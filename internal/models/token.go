package models

// TokenPair — пара токенов, выдаваемая backend'ом при входе и обновлении.
//
// Описание:
//   - Access — короткоживущий bearer-токен для доступа к API;
//   - Refresh — долгоживущий секрет, используется только для выпуска новой пары.
//
// Пара хранится и заменяется целиком: access от одной пары никогда не
// соседствует с refresh от другой.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Valid — обе части пары заполнены.
func (p TokenPair) Valid() bool {
	return p.Access != "" && p.Refresh != ""
}
