package console

import (
	"sync"
)

// SelectedDrug is the drug-library entry chosen for the next pump session.
type SelectedDrug struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Snapshot is a serializable copy of State.
type Snapshot struct {
	ActiveTab    Tab               `json:"active_tab"`
	BaseURL      string            `json:"base_url"`
	Subject      string            `json:"subject"`
	Roles        []string          `json:"roles"`
	TokenHeld    bool              `json:"token_held"`
	Health       string            `json:"health"`
	SelectedDrug *SelectedDrug     `json:"selected_drug"`
	DrugID       string            `json:"drug_id"`
	ModelID      string            `json:"model_id"`
	Busy         map[string]bool   `json:"busy"`
	Output       map[string]string `json:"output"`
}

// State is the console's application state. It is passed explicitly to
// whatever needs it; nothing here is package-level.
type State struct {
	mu sync.Mutex

	activeTab    Tab
	baseURL      string
	health       string
	selectedDrug *SelectedDrug
	drugID       string
	modelID      string
	busy         map[string]bool
	output       map[string]string
}

func NewState(baseURL string) *State {
	return &State{
		activeTab: TabWorkflow,
		baseURL:   baseURL,
		health:    "unknown",
		drugID:    "1",
		modelID:   "1",
		busy:      map[string]bool{},
		output:    map[string]string{},
	}
}

func (s *State) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

func (s *State) SetBaseURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = u
}

func (s *State) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// SetActiveTab ignores unknown tabs.
func (s *State) SetActiveTab(t Tab) {
	if !t.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = t
}

func (s *State) Health() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

func (s *State) setHealth(h string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = h
}

func (s *State) SelectedDrug() *SelectedDrug {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedDrug == nil {
		return nil
	}
	d := *s.selectedDrug
	return &d
}

func (s *State) selectDrug(d SelectedDrug, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDrug = &d
	s.drugID = id
}

func (s *State) setModelID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = id
}

// begin marks key busy. It reports false when key is already in flight.
func (s *State) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[key] {
		return false
	}
	s.busy[key] = true
	return true
}

func (s *State) finish(key, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[key] = false
	s.output[key] = output
}

func (s *State) Output(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output[key]
}

func (s *State) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ActiveTab: s.activeTab,
		BaseURL:   s.baseURL,
		Health:    s.health,
		DrugID:    s.drugID,
		ModelID:   s.modelID,
		Busy:      make(map[string]bool, len(s.busy)),
		Output:    make(map[string]string, len(s.output)),
	}
	if s.selectedDrug != nil {
		d := *s.selectedDrug
		snap.SelectedDrug = &d
	}
	for k, v := range s.busy {
		snap.Busy[k] = v
	}
	for k, v := range s.output {
		snap.Output[k] = v
	}
	return snap
}
