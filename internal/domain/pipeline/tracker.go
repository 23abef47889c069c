package pipeline

// Stage states as reported by the planner service.
const (
	StatusPending = "pending"
	StatusStarted = "started"
	StatusDone    = "done"
)

// Stages the remote orchestrator walks through, in emission order. The
// paired names cover agents that run concurrently on the remote side.
var Stages = []string{
	"research",
	"planner",
	"weather_attractions",
	"scheduler",
	"food_validator",
	"budget",
	"finalizing",
}

// StageView is one row of the progress display model.
type StageView struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Snapshot is the aggregate display state: every stage in fixed order
// plus the latest human-readable label.
type Snapshot struct {
	Stages    []StageView `json:"stages"`
	Detail    string      `json:"detail,omitempty"`
	Terminal  bool        `json:"terminal"`
	LastError string      `json:"last_error,omitempty"`
}

// Tracker maps ordered progress events onto the display model. Events
// are applied strictly in arrival order; there is no reordering buffer.
type Tracker struct {
	status   map[string]string
	detail   string
	terminal bool
	lastErr  string
}

// NewTracker starts with every stage pending.
func NewTracker() *Tracker {
	return &Tracker{status: make(map[string]string, len(Stages))}
}

// Progress records a stage transition. Unknown stages and events after
// termination are ignored.
func (t *Tracker) Progress(stage, status, detail string) {
	if t.terminal {
		return
	}
	if !knownStage(stage) {
		return
	}
	if status != StatusStarted && status != StatusDone {
		return
	}
	t.status[stage] = status
	if detail != "" {
		t.detail = detail
	}
}

// Complete terminates tracking after a result or done event.
func (t *Tracker) Complete() {
	t.terminal = true
}

// Fail terminates tracking on a wire error, keeping the partial stage
// history readable for diagnostics.
func (t *Tracker) Fail(message string) {
	t.terminal = true
	t.lastErr = message
}

// Snapshot renders the current display model.
func (t *Tracker) Snapshot() Snapshot {
	views := make([]StageView, len(Stages))
	for i, name := range Stages {
		status, ok := t.status[name]
		if !ok {
			status = StatusPending
		}
		views[i] = StageView{Name: name, Status: status}
	}
	return Snapshot{
		Stages:    views,
		Detail:    t.detail,
		Terminal:  t.terminal,
		LastError: t.lastErr,
	}
}

func knownStage(name string) bool {
	for _, stage := range Stages {
		if stage == name {
			return true
		}
	}
	return false
}
