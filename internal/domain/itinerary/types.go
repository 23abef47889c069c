package itinerary

import (
	"encoding/json"
)

// Block types recognized on the wire.
const (
	BlockActivity = "activity"
	BlockMeal     = "meal"
	BlockTravel   = "travel"
	BlockRest     = "rest"
)

// MicroActivity is a small descriptor nested inside a schedule block.
// The planner service emits it either as a bare string or as an object,
// so decoding accepts both shapes.
type MicroActivity struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

func (m *MicroActivity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		m.Name = name
		m.Reason = ""
		return nil
	}
	type alias MicroActivity
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = MicroActivity(obj)
	return nil
}

// ScheduleBlock is one time-boxed unit of a day.
type ScheduleBlock struct {
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	BlockType       string          `json:"block_type"`
	Location        string          `json:"location,omitempty"`
	TravelTimeMins  int             `json:"travel_time_mins,omitempty"`
	BufferMins      int             `json:"buffer_mins,omitempty"`
	MicroActivities []MicroActivity `json:"micro_activities,omitempty"`
	IsUnique        bool            `json:"is_unique,omitempty"`
	IsLimitedTime   bool            `json:"is_limited_time,omitempty"`
	ExternalLink    string          `json:"external_link,omitempty"`
}

// MealPlan is a meal reference attached to a day.
type MealPlan struct {
	Time              string   `json:"time"`
	Name              string   `json:"name"`
	Cuisine           string   `json:"cuisine,omitempty"`
	DietaryFit        []string `json:"dietary_fit,omitempty"`
	Location          string   `json:"location,omitempty"`
	ReservationNeeded bool     `json:"reservation_needed,omitempty"`
	EstimatedCost     float64  `json:"estimated_cost,omitempty"`
}

// DayPlan is one calendar date of the trip. Older planner builds emit
// the block list under "schedule" instead of "blocks"; decoding folds
// both into Blocks.
type DayPlan struct {
	Date           string          `json:"date"`
	DayNumber      int             `json:"day_number"`
	Theme          string          `json:"theme,omitempty"`
	WeatherSummary string          `json:"weather_summary,omitempty"`
	Blocks         []ScheduleBlock `json:"blocks"`
	Contingencies  []string        `json:"contingencies,omitempty"`
	Meals          []MealPlan      `json:"meals,omitempty"`
	Notes          []string        `json:"notes,omitempty"`
}

func (d *DayPlan) UnmarshalJSON(data []byte) error {
	type alias DayPlan
	var decoded struct {
		alias
		Schedule []ScheduleBlock `json:"schedule"`
		Title    string          `json:"title"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*d = DayPlan(decoded.alias)
	if len(d.Blocks) == 0 {
		d.Blocks = decoded.Schedule
	}
	if d.Theme == "" {
		d.Theme = decoded.Title
	}
	return nil
}

// BudgetItem is one category of the budget breakdown.
type BudgetItem struct {
	Category      string  `json:"category"`
	EstimatedCost float64 `json:"estimated_cost"`
	Notes         string  `json:"notes,omitempty"`
}

// BudgetPlan is the planner-derived budget view. EstimatedTotal is a
// display value computed remotely; the client never recomputes it.
type BudgetPlan struct {
	Currency       string       `json:"currency"`
	TotalBudget    float64      `json:"total_budget"`
	EstimatedTotal float64      `json:"estimated_total"`
	Breakdown      []BudgetItem `json:"breakdown,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
	DowngradePlan  []string     `json:"downgrade_plan,omitempty"`
}

// Attraction is a highlighted point of interest.
type Attraction struct {
	Name       string   `json:"name"`
	Reason     string   `json:"reason,omitempty"`
	Score      float64  `json:"score,omitempty"`
	DistanceKm float64  `json:"distance_km,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Address    string   `json:"address,omitempty"`
}

// ValidationResult is one remote consistency check over the plan.
type ValidationResult struct {
	Check   string `json:"check"`
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// TransportOption is one way of moving between stops.
type TransportOption struct {
	Mode             string   `json:"mode"`
	Description      string   `json:"description,omitempty"`
	CostEstimate     string   `json:"cost_estimate,omitempty"`
	DurationEstimate string   `json:"duration_estimate,omitempty"`
	Pros             []string `json:"pros,omitempty"`
	Cons             []string `json:"cons,omitempty"`
}

// TransportAnalysis summarizes how to get around.
type TransportAnalysis struct {
	Options         []TransportOption `json:"options,omitempty"`
	RecommendedMode string            `json:"recommended_mode,omitempty"`
	Reasoning       string            `json:"reasoning,omitempty"`
}

// TravelOption is a bookable travel or lodging offer.
type TravelOption struct {
	Type          string   `json:"type"`
	Name          string   `json:"name"`
	Provider      string   `json:"provider,omitempty"`
	PriceEstimate string   `json:"price_estimate,omitempty"`
	Details       string   `json:"details,omitempty"`
	BookingURL    string   `json:"booking_url,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Features      []string `json:"features,omitempty"`
}

// RequestSummary is the denormalized slice of the originating trip
// request the document keeps for display and edit round-trips.
type RequestSummary struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Preferences string `json:"preferences,omitempty"`
}

// Payload is the full generated plan as carried on the wire.
type Payload struct {
	ID                string             `json:"itinerary_id,omitempty"`
	Request           RequestSummary     `json:"request"`
	Summary           string             `json:"summary,omitempty"`
	Days              []DayPlan          `json:"days"`
	Budget            BudgetPlan         `json:"budget"`
	PackingList       []string           `json:"packing_list,omitempty"`
	Attractions       []Attraction       `json:"attractions,omitempty"`
	TransportAnalysis *TransportAnalysis `json:"transport_analysis,omitempty"`
	TravelOptions     []TravelOption     `json:"travel_options,omitempty"`
	Validation        []ValidationResult `json:"validation,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
	GeneratedAt       string             `json:"generated_at,omitempty"`
}
