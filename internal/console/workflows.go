package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"infusionconsole/internal/apiclient"
)

func (c *Console) CreatePatient(ctx context.Context, f PatientForm) (json.RawMessage, error) {
	return runAction(c, "patients", func() (json.RawMessage, error) {
		body, err := f.body()
		if err != nil {
			return nil, err
		}
		return call[json.RawMessage](ctx, c, apiclient.MethodPost, "/patients/", body)
	})
}

func (c *Console) GetPatient(ctx context.Context, id string) (json.RawMessage, error) {
	return runAction(c, "patients", func() (json.RawMessage, error) {
		return call[json.RawMessage](ctx, c, apiclient.MethodGet, idPath("/patients/", id), nil)
	})
}

func (c *Console) CreateDeviceConfiguration(ctx context.Context, f DeviceConfigurationForm) (json.RawMessage, error) {
	return runAction(c, "devices", func() (json.RawMessage, error) {
		body, err := f.body()
		if err != nil {
			return nil, err
		}
		return call[json.RawMessage](ctx, c, apiclient.MethodPost, "/devices/configurations", body)
	})
}

func (c *Console) GetDeviceConfiguration(ctx context.Context, id string) (json.RawMessage, error) {
	return runAction(c, "devices", func() (json.RawMessage, error) {
		return call[json.RawMessage](ctx, c, apiclient.MethodGet, idPath("/devices/configurations/", id), nil)
	})
}

// SessionStarted pairs a new pump session with the drug selected at the
// time. ChosenInfusionDrug is a *SelectedDrug or the text "No drug selected".
type SessionStarted struct {
	Session            json.RawMessage `json:"session"`
	ChosenInfusionDrug any             `json:"chosen_infusion_drug"`
}

func (c *Console) StartSession(ctx context.Context, f SessionForm) (*SessionStarted, error) {
	return runAction(c, "sessions", func() (*SessionStarted, error) {
		body, err := f.body()
		if err != nil {
			return nil, err
		}
		session, err := call[json.RawMessage](ctx, c, apiclient.MethodPost, "/sessions/", body)
		if err != nil {
			return nil, err
		}
		out := &SessionStarted{Session: session, ChosenInfusionDrug: "No drug selected"}
		if d := c.state.SelectedDrug(); d != nil {
			out.ChosenInfusionDrug = d
		}
		return out, nil
	})
}

func (c *Console) CloseSession(ctx context.Context, id string) (json.RawMessage, error) {
	return runAction(c, "sessions", func() (json.RawMessage, error) {
		return call[json.RawMessage](ctx, c, apiclient.MethodPost, idPath("/sessions/", id, "/close"), nil)
	})
}

type drugEntry struct {
	ID       int64  `json:"id"`
	DrugName string `json:"drug_name"`
}

// DrugSelection is the outcome of creating or fetching a drug-library
// entry. Exactly one of CreatedEntry and FetchedEntry is set.
type DrugSelection struct {
	SelectedInfusionDrug SelectedDrug    `json:"selected_infusion_drug"`
	CreatedEntry         json.RawMessage `json:"created_entry,omitempty"`
	FetchedEntry         json.RawMessage `json:"fetched_entry,omitempty"`
}

// CreateDrugEntry adds a drug-library entry and selects it.
func (c *Console) CreateDrugEntry(ctx context.Context, f DrugEntryForm) (*DrugSelection, error) {
	return runAction(c, "drugs", func() (*DrugSelection, error) {
		body, err := f.body()
		if err != nil {
			return nil, err
		}
		raw, err := call[json.RawMessage](ctx, c, apiclient.MethodPost, "/drug-library/", body)
		if err != nil {
			return nil, err
		}
		sel, err := c.selectDrug(raw)
		if err != nil {
			return nil, err
		}
		return &DrugSelection{SelectedInfusionDrug: sel, CreatedEntry: raw}, nil
	})
}

// FetchDrugEntry loads a drug-library entry and selects it.
func (c *Console) FetchDrugEntry(ctx context.Context, id string) (*DrugSelection, error) {
	return runAction(c, "drugs", func() (*DrugSelection, error) {
		raw, err := call[json.RawMessage](ctx, c, apiclient.MethodGet, idPath("/drug-library/", id), nil)
		if err != nil {
			return nil, err
		}
		sel, err := c.selectDrug(raw)
		if err != nil {
			return nil, err
		}
		return &DrugSelection{SelectedInfusionDrug: sel, FetchedEntry: raw}, nil
	})
}

func (c *Console) selectDrug(raw json.RawMessage) (SelectedDrug, error) {
	var e drugEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return SelectedDrug{}, fmt.Errorf("decode drug entry: %w", err)
	}
	sel := SelectedDrug{ID: e.ID, Name: e.DrugName}
	c.state.selectDrug(sel, strconv.FormatInt(e.ID, 10))
	return sel, nil
}

// RegisterModel registers an ML model version and remembers its id.
func (c *Console) RegisterModel(ctx context.Context, f ModelForm) (json.RawMessage, error) {
	return runAction(c, "models", func() (json.RawMessage, error) {
		body, err := f.body()
		if err != nil {
			return nil, err
		}
		raw, err := call[json.RawMessage](ctx, c, apiclient.MethodPost, "/ml-models/", body)
		if err != nil {
			return nil, err
		}
		var created struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &created); err == nil && created.ID != 0 {
			c.state.setModelID(strconv.FormatInt(created.ID, 10))
		}
		return raw, nil
	})
}

func (c *Console) GetModel(ctx context.Context, id string) (json.RawMessage, error) {
	return runAction(c, "models", func() (json.RawMessage, error) {
		return call[json.RawMessage](ctx, c, apiclient.MethodGet, idPath("/ml-models/", id), nil)
	})
}

// ListAuditEvents loads the most recent audit events. A limit of zero or
// less means the default of 50.
func (c *Console) ListAuditEvents(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return runAction(c, "audit", func() (json.RawMessage, error) {
		return call[json.RawMessage](ctx, c, apiclient.MethodGet, "/audit/events?limit="+strconv.Itoa(limit), nil)
	})
}
