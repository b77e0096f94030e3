package clients

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// DevicesClient — реестр генерирующих устройств.
type DevicesClient struct {
	rest *rest
}

func (c *DevicesClient) List(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	if err := c.rest.doJSON(ctx, http.MethodGet, "/devices/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("clients.Devices.List: %w", err)
	}

	return out, nil
}

// Mine — устройства текущего пользователя.
func (c *DevicesClient) Mine(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	if err := c.rest.doJSON(ctx, http.MethodGet, "/devices/my_devices/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("clients.Devices.Mine: %w", err)
	}

	return out, nil
}

func (c *DevicesClient) Get(ctx context.Context, id int64) (models.Device, error) {
	var out models.Device
	if err := c.rest.doJSON(ctx, http.MethodGet, devicePath(id), nil, nil, &out); err != nil {
		return models.Device{}, fmt.Errorf("clients.Devices.Get: %w", err)
	}

	return out, nil
}

func (c *DevicesClient) Create(ctx context.Context, in models.DeviceForm) (models.Device, error) {
	const op = "clients.Devices.Create"

	f, err := deviceForm(in)
	if err != nil {
		return models.Device{}, err
	}

	var out models.Device
	if err := c.rest.doMultipart(ctx, http.MethodPost, "/devices/", f, &out); err != nil {
		return models.Device{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Update — PATCH всей формы; файлы отправляются только переданные.
func (c *DevicesClient) Update(ctx context.Context, id int64, in models.DeviceForm) (models.Device, error) {
	const op = "clients.Devices.Update"

	f, err := deviceForm(in)
	if err != nil {
		return models.Device{}, err
	}

	var out models.Device
	if err := c.rest.doMultipart(ctx, http.MethodPatch, devicePath(id), f, &out); err != nil {
		return models.Device{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *DevicesClient) Delete(ctx context.Context, id int64) error {
	if err := c.rest.doJSON(ctx, http.MethodDelete, devicePath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("clients.Devices.Delete: %w", err)
	}

	return nil
}

func (c *DevicesClient) FuelTypes(ctx context.Context) (models.ChoiceMap, error) {
	out := models.ChoiceMap{}
	if err := c.rest.doJSON(ctx, http.MethodGet, "/devices/fuel_types/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("clients.Devices.FuelTypes: %w", err)
	}

	return out, nil
}

func (c *DevicesClient) TechnologyTypes(ctx context.Context) (models.ChoiceMap, error) {
	out := models.ChoiceMap{}
	if err := c.rest.doJSON(ctx, http.MethodGet, "/devices/technology_types/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("clients.Devices.TechnologyTypes: %w", err)
	}

	return out, nil
}

func devicePath(id int64) string {
	return "/devices/" + strconv.FormatInt(id, 10) + "/"
}

// deviceForm проверяет форму и кодирует её в multipart.
func deviceForm(in models.DeviceForm) (*form, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apierrors.Invalid(err)
	}
	for name := range in.Files {
		if !slices.Contains(models.DeviceFileFields, name) {
			return nil, apierrors.Invalid(fmt.Errorf("unknown file field %q", name))
		}
	}

	f := newForm()
	f.field("device_name", in.DeviceName, true)
	f.field("default_account_code", in.DefaultAccountCode, false)
	f.field("issuer_organisation", in.IssuerOrganisation, true)
	f.field("device_fuel", in.DeviceFuel, true)
	f.field("device_technology", in.DeviceTechnology, true)
	f.field("capacity", strconv.FormatFloat(in.Capacity, 'f', -1, 64), true)
	f.field("commissioning_date", in.CommissioningDate.Format(models.DateLayout), true)
	f.field("requested_effective_registration_date", in.RequestedEffectiveRegistrationDate.Format(models.DateLayout), true)
	f.field("other_labelling_scheme", in.OtherLabellingScheme, false)
	f.field("address", in.Address, true)
	f.field("state_province", in.StateProvince, true)
	f.field("postcode", in.Postcode, true)
	f.field("country", in.Country, true)
	f.field("latitude", strconv.FormatFloat(*in.Latitude, 'f', -1, 64), true)
	f.field("longitude", strconv.FormatFloat(*in.Longitude, 'f', -1, 64), true)
	f.field("additional_notes", in.AdditionalNotes, false)

	for _, name := range models.DeviceFileFields {
		f.file(name, in.Files[name])
	}

	return f, nil
}
