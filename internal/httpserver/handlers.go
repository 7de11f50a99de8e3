package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"infusionconsole/internal/console"
)

type consoleHandlers struct {
	console *console.Console
	forms   console.Forms
}

func (h *consoleHandlers) state(r *http.Request) (any, error) {
	return h.console.Snapshot(), nil
}

func (h *consoleHandlers) updateState(r *http.Request) (any, error) {
	var s console.Settings
	if err := decodeBody(r, &s); err != nil {
		return nil, err
	}
	h.console.Apply(s)
	return h.console.Snapshot(), nil
}

type tabsView struct {
	Tabs   []console.TabInfo `json:"tabs"`
	Active console.Tab       `json:"active"`
	Query  string            `json:"query"`
}

// tabs reports the tab list. A ?tab= query selects the active tab; the
// returned query string is what a client keeps in its URL.
func (h *consoleHandlers) tabs(r *http.Request) (any, error) {
	q := r.URL.Query()
	if q.Has("tab") {
		h.console.State().SetActiveTab(console.ParseTab(q))
	}
	active := h.console.State().ActiveTab()
	return tabsView{
		Tabs:   console.Tabs,
		Active: active,
		Query:  console.TabQuery(q, active).Encode(),
	}, nil
}

func (h *consoleHandlers) defaultForms(r *http.Request) (any, error) {
	return h.forms, nil
}

func (h *consoleHandlers) generateToken(r *http.Request) (any, error) {
	return h.console.GenerateToken(r.Context())
}

func (h *consoleHandlers) inspectToken(r *http.Request) (any, error) {
	return h.console.InspectToken()
}

func (h *consoleHandlers) checkHealth(r *http.Request) (any, error) {
	return h.console.CheckHealth(r.Context())
}

func (h *consoleHandlers) createPatient(r *http.Request) (any, error) {
	f := h.forms.Patient
	if err := decodeBody(r, &f); err != nil {
		return nil, err
	}
	return h.console.CreatePatient(r.Context(), f)
}

func (h *consoleHandlers) getPatient(r *http.Request) (any, error) {
	return h.console.GetPatient(r.Context(), mux.Vars(r)["id"])
}

func (h *consoleHandlers) createDeviceConfiguration(r *http.Request) (any, error) {
	f := h.forms.DeviceConfiguration
	if err := decodeBody(r, &f); err != nil {
		return nil, err
	}
	return h.console.CreateDeviceConfiguration(r.Context(), f)
}

func (h *consoleHandlers) getDeviceConfiguration(r *http.Request) (any, error) {
	return h.console.GetDeviceConfiguration(r.Context(), mux.Vars(r)["id"])
}

func (h *consoleHandlers) startSession(r *http.Request) (any, error) {
	f := h.forms.Session
	if err := decodeBody(r, &f); err != nil {
		return nil, err
	}
	return h.console.StartSession(r.Context(), f)
}

func (h *consoleHandlers) closeSession(r *http.Request) (any, error) {
	return h.console.CloseSession(r.Context(), mux.Vars(r)["id"])
}

func (h *consoleHandlers) createDrugEntry(r *http.Request) (any, error) {
	f := h.forms.DrugEntry
	if err := decodeBody(r, &f); err != nil {
		return nil, err
	}
	return h.console.CreateDrugEntry(r.Context(), f)
}

func (h *consoleHandlers) fetchDrugEntry(r *http.Request) (any, error) {
	return h.console.FetchDrugEntry(r.Context(), mux.Vars(r)["id"])
}

func (h *consoleHandlers) registerModel(r *http.Request) (any, error) {
	f := h.forms.Model
	if err := decodeBody(r, &f); err != nil {
		return nil, err
	}
	return h.console.RegisterModel(r.Context(), f)
}

func (h *consoleHandlers) getModel(r *http.Request) (any, error) {
	return h.console.GetModel(r.Context(), mux.Vars(r)["id"])
}

func (h *consoleHandlers) auditEvents(r *http.Request) (any, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = h.forms.AuditLimit
	}
	// Anything unparsable falls back to the console default.
	limit, _ := strconv.Atoi(limitStr)
	return h.console.ListAuditEvents(r.Context(), limit)
}
