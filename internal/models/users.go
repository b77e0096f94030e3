package models

// Роли пользователей backend'а.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User — пользователь в админском списке.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	DateJoined  string `json:"date_joined,omitempty"`
}

// UsersFilter — фильтры списка; пустые поля в запрос не попадают.
type UsersFilter struct {
	Search string `json:"search,omitempty"`
	Role   string `json:"role,omitempty"   validate:"omitempty,oneof=ADMIN USER"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN USER"`
}

type ToggleActiveResponse struct {
	IsActive bool `json:"is_active"`
}

type ChangeRoleResponse struct {
	Role string `json:"role"`
}

// Profile — профиль текущего пользователя.
type Profile struct {
	ID             int64  `json:"id,omitempty"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// ProfileForm — изменение профиля; Picture опционален.
type ProfileForm struct {
	Username  string `validate:"required"`
	FirstName string
	LastName  string
	Picture   *File
}
