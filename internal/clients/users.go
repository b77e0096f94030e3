package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// UsersClient — администрирование пользователей (только для ADMIN).
type UsersClient struct {
	rest *rest
}

// List — список с фильтрами search/role/status; пустые фильтры не передаются.
func (c *UsersClient) List(ctx context.Context, filter models.UsersFilter) ([]models.User, error) {
	const op = "clients.Users.List"

	if err := validate.Struct(filter); err != nil {
		return nil, apierrors.Invalid(err)
	}

	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	var out []models.User
	if err := c.rest.doJSON(ctx, http.MethodGet, "/users/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ToggleActive переключает активность и возвращает новое значение.
func (c *UsersClient) ToggleActive(ctx context.Context, id int64) (bool, error) {
	var out models.ToggleActiveResponse
	if err := c.rest.doJSON(ctx, http.MethodPatch, userPath(id, "toggle_active"), nil, nil, &out); err != nil {
		return false, fmt.Errorf("clients.Users.ToggleActive: %w", err)
	}

	return out.IsActive, nil
}

func (c *UsersClient) ChangeRole(ctx context.Context, id int64, role string) (string, error) {
	const op = "clients.Users.ChangeRole"

	in := models.ChangeRoleRequest{Role: role}
	if err := validate.Struct(in); err != nil {
		return "", apierrors.Invalid(err)
	}

	var out models.ChangeRoleResponse
	if err := c.rest.doJSON(ctx, http.MethodPatch, userPath(id, "change_role"), nil, in, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return out.Role, nil
}

func userPath(id int64, action string) string {
	return "/users/" + strconv.FormatInt(id, 10) + "/" + action + "/"
}
