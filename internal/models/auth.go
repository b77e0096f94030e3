// Входные/выходные модели REST API backend'а.
package models

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse — ответ /login/: пара токенов плюс сведения о пользователе.
type LoginResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	UserID    int64  `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	PatientID *int64 `json:"patient_id,omitempty"`
	DoctorID  *int64 `json:"doctor_id,omitempty"`
}

func (r LoginResponse) Pair() TokenPair {
	return TokenPair{Access: r.Access, Refresh: r.Refresh}
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse — подтверждение регистрации; дальше пользователь
// подтверждает email по ссылке из письма.
type RegisterResponse struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type VerifyEmailRequest struct {
	UID   string `json:"uid"   validate:"required"`
	Token string `json:"token" validate:"required"`
}

type VerifyEmailResponse struct {
	Message string `json:"message,omitempty"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse — refresh может отсутствовать, если backend не ротирует токены.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// SessionInfo — производное состояние сессии для UI.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Role          string `json:"role,omitempty"`
	ExpiresAt     int64  `json:"expires_at,omitempty"` // Unix UTC
}

// AuthResult — то, что UI получает после входа; токены остаются в хранилище.
type AuthResult struct {
	UserID int64  `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}
