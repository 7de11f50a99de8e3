package console

import "net/url"

type Tab string

const (
	TabWorkflow Tab = "workflow"
	TabSystem   Tab = "system"
	TabPatients Tab = "patients"
	TabDevices  Tab = "devices"
	TabModels   Tab = "models"
	TabAudit    Tab = "audit"
)

type TabInfo struct {
	Key   Tab    `json:"key"`
	Label string `json:"label"`
}

// Tabs in display order.
var Tabs = []TabInfo{
	{TabWorkflow, "Session + Drug"},
	{TabSystem, "System"},
	{TabPatients, "Patients"},
	{TabDevices, "Devices"},
	{TabModels, "ML Models"},
	{TabAudit, "Audit"},
}

func (t Tab) Valid() bool {
	for _, info := range Tabs {
		if info.Key == t {
			return true
		}
	}
	return false
}

// ParseTab reads the active tab from a ?tab= query. Missing or unknown
// values fall back to the workflow tab.
func ParseTab(q url.Values) Tab {
	if t := Tab(q.Get("tab")); t.Valid() {
		return t
	}
	return TabWorkflow
}

// TabQuery sets tab in q, keeping every other parameter.
func TabQuery(q url.Values, t Tab) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	out.Set("tab", string(t))
	return out
}
