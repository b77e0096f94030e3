package models

import (
	"encoding/json"
	"time"
)

// DateLayout — формат дат в формах и ответах backend'а.
const DateLayout = "2006-01-02"

// Имена файловых полей формы регистрации устройства.
const (
	FileProductionFacilityRegistration = "production_facility_registration"
	FileDeclarationOfOwnership         = "declaration_of_ownership"
	FileMeteringEvidence               = "metering_evidence"
	FileSingleLineDiagram              = "single_line_diagram"
	FileProjectPhotos                  = "project_photos"
)

// DeviceFileFields — все файловые поля в порядке формы.
var DeviceFileFields = []string{
	FileProductionFacilityRegistration,
	FileDeclarationOfOwnership,
	FileMeteringEvidence,
	FileSingleLineDiagram,
	FileProjectPhotos,
}

// Device — зарегистрированное устройство (генерирующий объект).
// Числовые поля backend отдаёт то числом, то строкой (decimal), поэтому json.Number.
type Device struct {
	ID                                 int64       `json:"id"`
	DeviceName                         string      `json:"device_name"`
	DefaultAccountCode                 string      `json:"default_account_code,omitempty"`
	IssuerOrganisation                 string      `json:"issuer_organisation"`
	DeviceFuel                         string      `json:"device_fuel"`
	DeviceTechnology                   string      `json:"device_technology"`
	Capacity                           json.Number `json:"capacity"`
	CommissioningDate                  string      `json:"commissioning_date"`
	RequestedEffectiveRegistrationDate string      `json:"requested_effective_registration_date"`
	OtherLabellingScheme               string      `json:"other_labelling_scheme,omitempty"`
	Address                            string      `json:"address"`
	StateProvince                      string      `json:"state_province"`
	Postcode                           string      `json:"postcode"`
	Country                            string      `json:"country"`
	Latitude                           json.Number `json:"latitude"`
	Longitude                          json.Number `json:"longitude"`
	AdditionalNotes                    string      `json:"additional_notes,omitempty"`

	ProductionFacilityRegistration string `json:"production_facility_registration,omitempty"`
	DeclarationOfOwnership         string `json:"declaration_of_ownership,omitempty"`
	MeteringEvidence               string `json:"metering_evidence,omitempty"`
	SingleLineDiagram              string `json:"single_line_diagram,omitempty"`
	ProjectPhotos                  string `json:"project_photos,omitempty"`

	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// File — загружаемый файл. Содержимое держим в памяти, чтобы запрос
// можно было переотправить после обновления токенов.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// DeviceForm — форма создания/изменения устройства.
type DeviceForm struct {
	DeviceName                         string    `validate:"required"`
	DefaultAccountCode                 string
	IssuerOrganisation                 string    `validate:"required"`
	DeviceFuel                         string    `validate:"required"`
	DeviceTechnology                   string    `validate:"required"`
	Capacity                           float64   `validate:"gt=0"`
	CommissioningDate                  time.Time `validate:"required"`
	RequestedEffectiveRegistrationDate time.Time `validate:"required,gtefield=CommissioningDate"`
	OtherLabellingScheme               string
	Address                            string   `validate:"required"`
	StateProvince                      string   `validate:"required"`
	Postcode                           string   `validate:"required"`
	Country                            string   `validate:"required"`
	Latitude                           *float64 `validate:"required,gte=-90,lte=90"`
	Longitude                          *float64 `validate:"required,gte=-180,lte=180"`
	AdditionalNotes                    string

	// Files — файлы по именам полей из DeviceFileFields; отсутствующие не отправляются.
	Files map[string]*File
}

// ChoiceMap — справочник код -> подпись (типы топлива, технологии).
type ChoiceMap map[string]string
