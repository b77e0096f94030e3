package clients

import (
	"context"
	"fmt"
	"net/http"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// ProfileClient — профиль текущего пользователя.
type ProfileClient struct {
	rest *rest
}

func (c *ProfileClient) Get(ctx context.Context) (models.Profile, error) {
	var out models.Profile
	if err := c.rest.doJSON(ctx, http.MethodGet, "/profile/", nil, nil, &out); err != nil {
		return models.Profile{}, fmt.Errorf("clients.Profile.Get: %w", err)
	}

	return out, nil
}

// Update — multipart PATCH; картинка отправляется, только если передана.
func (c *ProfileClient) Update(ctx context.Context, in models.ProfileForm) (models.Profile, error) {
	const op = "clients.Profile.Update"

	if err := validate.Struct(in); err != nil {
		return models.Profile{}, apierrors.Invalid(err)
	}

	f := newForm()
	f.field("username", in.Username, true)
	f.field("first_name", in.FirstName, true)
	f.field("last_name", in.LastName, true)
	f.file("profile_picture", in.Picture)

	var out models.Profile
	if err := c.rest.doMultipart(ctx, http.MethodPatch, "/profile/", f, &out); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
