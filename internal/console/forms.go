package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidJSONField = errors.New("invalid JSON field")
	ErrInvalidNumber    = errors.New("invalid number")
)

// Forms mirror the console's input fields. Every value is text, as typed;
// conversion to the API's shapes happens when a form is submitted.

type PatientForm struct {
	MRN          string `json:"mrn" yaml:"mrn"`
	Demographics string `json:"demographics" yaml:"demographics"`
}

type DeviceConfigurationForm struct {
	DeviceID        string `json:"device_id" yaml:"device_id"`
	FirmwareVersion string `json:"firmware_version" yaml:"firmware_version"`
	GatewayVersion  string `json:"gateway_version" yaml:"gateway_version"`
	ConfigPayload   string `json:"config_payload" yaml:"config_payload"`
}

type SessionForm struct {
	PatientID              string `json:"patient_id" yaml:"patient_id"`
	DeviceConfigurationID  string `json:"device_configuration_id" yaml:"device_configuration_id"`
	ClinicianTargetMapMmHg string `json:"clinician_target_map_mmhg" yaml:"clinician_target_map_mmhg"`
}

type DrugEntryForm struct {
	DrugName              string `json:"drug_name" yaml:"drug_name"`
	ConcentrationMcgPerMl string `json:"concentration_mcg_per_ml" yaml:"concentration_mcg_per_ml"`
	MinRateMcgPerKgMin    string `json:"min_rate_mcg_per_kg_min" yaml:"min_rate_mcg_per_kg_min"`
	MaxRateMcgPerKgMin    string `json:"max_rate_mcg_per_kg_min" yaml:"max_rate_mcg_per_kg_min"`
	MaxDeltaMcgPerKgMin   string `json:"max_delta_mcg_per_kg_min" yaml:"max_delta_mcg_per_kg_min"`
	SafetyNotes           string `json:"safety_notes" yaml:"safety_notes"`
}

type ModelForm struct {
	RegistryID           string `json:"registry_id" yaml:"registry_id"`
	Version              string `json:"version" yaml:"version"`
	DatasetHash          string `json:"dataset_hash" yaml:"dataset_hash"`
	ValidationReportPath string `json:"validation_report_path" yaml:"validation_report_path"`
	AcceptanceSummary    string `json:"acceptance_summary" yaml:"acceptance_summary"`
}

// Forms is the full set of prefilled form values.
type Forms struct {
	Patient             PatientForm             `json:"patient" yaml:"patient"`
	DeviceConfiguration DeviceConfigurationForm `json:"device_configuration" yaml:"device_configuration"`
	Session             SessionForm             `json:"session" yaml:"session"`
	DrugEntry           DrugEntryForm           `json:"drug_entry" yaml:"drug_entry"`
	Model               ModelForm               `json:"model" yaml:"model"`
	AuditLimit          string                  `json:"audit_limit" yaml:"audit_limit"`
}

func DefaultForms() Forms {
	return Forms{
		Patient: PatientForm{
			MRN:          "MRN-001",
			Demographics: `{"age": 64, "sex": "F"}`,
		},
		DeviceConfiguration: DeviceConfigurationForm{
			DeviceID:        "pump-00",
			FirmwareVersion: "0.1.0",
			GatewayVersion:  "0.1.0",
			ConfigPayload:   `{"ward":"ICU-1"}`,
		},
		Session: SessionForm{
			PatientID:              "1",
			DeviceConfigurationID:  "1",
			ClinicianTargetMapMmHg: "65",
		},
		DrugEntry: DrugEntryForm{
			DrugName:              "Norepinephrine",
			ConcentrationMcgPerMl: "16",
			MinRateMcgPerKgMin:    "0.02",
			MaxRateMcgPerKgMin:    "3.3",
			MaxDeltaMcgPerKgMin:   "0.2",
			SafetyNotes:           "Unit test/demo profile",
		},
		Model: ModelForm{
			RegistryID:           "map-predictor",
			Version:              "v0.1.0",
			DatasetHash:          "abc123",
			ValidationReportPath: "validation/reports/dev.json",
			AcceptanceSummary:    `{"auroc":0.91,"status":"pass"}`,
		},
		AuditLimit: "50",
	}
}

// ParseJSONField decodes a free-text JSON field. Blank text is an empty object.
func ParseJSONField(name, text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidJSONField)
	}
	return json.RawMessage(text), nil
}

func parseFloat(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q", name, ErrInvalidNumber, text)
	}
	return v, nil
}

func parseID(name, text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q", name, ErrInvalidNumber, text)
	}
	return v, nil
}

// Request bodies as the API expects them.

type patientCreate struct {
	MRN          string          `json:"mrn"`
	Demographics json.RawMessage `json:"demographics"`
}

type deviceConfigurationCreate struct {
	DeviceID        string          `json:"device_id"`
	FirmwareVersion string          `json:"firmware_version"`
	GatewayVersion  string          `json:"gateway_version"`
	ConfigPayload   json.RawMessage `json:"config_payload"`
}

type sessionCreate struct {
	PatientID              int64   `json:"patient_id"`
	DeviceConfigurationID  int64   `json:"device_configuration_id"`
	ClinicianTargetMapMmHg float64 `json:"clinician_target_map_mmhg"`
}

type drugEntryCreate struct {
	DrugName              string  `json:"drug_name"`
	ConcentrationMcgPerMl float64 `json:"concentration_mcg_per_ml"`
	MinRateMcgPerKgMin    float64 `json:"min_rate_mcg_per_kg_min"`
	MaxRateMcgPerKgMin    float64 `json:"max_rate_mcg_per_kg_min"`
	MaxDeltaMcgPerKgMin   float64 `json:"max_delta_mcg_per_kg_min"`
	SafetyNotes           *string `json:"safety_notes"`
}

type modelCreate struct {
	RegistryID           string          `json:"registry_id"`
	Version              string          `json:"version"`
	DatasetHash          string          `json:"dataset_hash"`
	ValidationReportPath string          `json:"validation_report_path"`
	AcceptanceSummary    json.RawMessage `json:"acceptance_summary"`
}

func (f PatientForm) body() (patientCreate, error) {
	demo, err := ParseJSONField("demographics", f.Demographics)
	if err != nil {
		return patientCreate{}, err
	}
	return patientCreate{MRN: f.MRN, Demographics: demo}, nil
}

func (f DeviceConfigurationForm) body() (deviceConfigurationCreate, error) {
	payload, err := ParseJSONField("config_payload", f.ConfigPayload)
	if err != nil {
		return deviceConfigurationCreate{}, err
	}
	return deviceConfigurationCreate{
		DeviceID:        f.DeviceID,
		FirmwareVersion: f.FirmwareVersion,
		GatewayVersion:  f.GatewayVersion,
		ConfigPayload:   payload,
	}, nil
}

func (f SessionForm) body() (sessionCreate, error) {
	var (
		b   sessionCreate
		err error
	)
	if b.PatientID, err = parseID("patient_id", f.PatientID); err != nil {
		return sessionCreate{}, err
	}
	if b.DeviceConfigurationID, err = parseID("device_configuration_id", f.DeviceConfigurationID); err != nil {
		return sessionCreate{}, err
	}
	if b.ClinicianTargetMapMmHg, err = parseFloat("clinician_target_map_mmhg", f.ClinicianTargetMapMmHg); err != nil {
		return sessionCreate{}, err
	}
	return b, nil
}

func (f DrugEntryForm) body() (drugEntryCreate, error) {
	b := drugEntryCreate{DrugName: f.DrugName}
	fields := []struct {
		name string
		text string
		dst  *float64
	}{
		{"concentration_mcg_per_ml", f.ConcentrationMcgPerMl, &b.ConcentrationMcgPerMl},
		{"min_rate_mcg_per_kg_min", f.MinRateMcgPerKgMin, &b.MinRateMcgPerKgMin},
		{"max_rate_mcg_per_kg_min", f.MaxRateMcgPerKgMin, &b.MaxRateMcgPerKgMin},
		{"max_delta_mcg_per_kg_min", f.MaxDeltaMcgPerKgMin, &b.MaxDeltaMcgPerKgMin},
	}
	for _, fld := range fields {
		v, err := parseFloat(fld.name, fld.text)
		if err != nil {
			return drugEntryCreate{}, err
		}
		*fld.dst = v
	}
	if f.SafetyNotes != "" {
		notes := f.SafetyNotes
		b.SafetyNotes = &notes
	}
	return b, nil
}

func (f ModelForm) body() (modelCreate, error) {
	summary, err := ParseJSONField("acceptance_summary", f.AcceptanceSummary)
	if err != nil {
		return modelCreate{}, err
	}
	return modelCreate{
		RegistryID:           f.RegistryID,
		Version:              f.Version,
		DatasetHash:          f.DatasetHash,
		ValidationReportPath: f.ValidationReportPath,
		AcceptanceSummary:    summary,
	}, nil
}
