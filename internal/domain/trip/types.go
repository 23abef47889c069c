package trip

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/varad-more/Voyagent/pkg/errors"
	"github.com/varad-more/Voyagent/pkg/util"
)

// DestinationSeparator joins multi-city destinations into the single
// string the planner service expects.
const DestinationSeparator = " -> "

// Travelers counts the party.
type Travelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// BudgetPreferences carries the money constraints for the trip.
type BudgetPreferences struct {
	Currency     string  `json:"currency"`
	TotalBudget  float64 `json:"total_budget"`
	ComfortLevel string  `json:"comfort_level"`
}

// ActivityPreferences captures interest tags and pacing.
type ActivityPreferences struct {
	Interests          []string `json:"interests"`
	Pace               string   `json:"pace"`
	AccessibilityNeeds []string `json:"accessibility_needs"`
}

// FoodPreferences captures cuisine and dietary tags.
type FoodPreferences struct {
	Cuisines            []string `json:"cuisines"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	AvoidIngredients    []string `json:"avoid_ingredients"`
}

// LodgingPreferences captures accommodation constraints.
type LodgingPreferences struct {
	LodgingType             string  `json:"lodging_type"`
	MaxDistanceKmFromCenter float64 `json:"max_distance_km_from_center"`
}

// Request is the immutable user intent submitted for generation. Dates
// and times stay in their wire form (ISO date, "HH:MM") because the
// request is forwarded to the planner service verbatim.
type Request struct {
	Destination         string              `json:"destination"`
	StartDate           string              `json:"start_date"`
	EndDate             string              `json:"end_date"`
	OriginLocation      string              `json:"origin_location,omitempty"`
	Travelers           Travelers           `json:"travelers"`
	Budget              BudgetPreferences   `json:"budget"`
	ActivityPreferences ActivityPreferences `json:"activity_preferences"`
	FoodPreferences     FoodPreferences     `json:"food_preferences"`
	LodgingPreferences  LodgingPreferences  `json:"lodging_preferences"`
	DailyStartTime      string              `json:"daily_start_time"`
	DailyEndTime        string              `json:"daily_end_time"`
	Notes               string              `json:"notes,omitempty"`
}

var (
	paces         = map[string]bool{"slow": true, "moderate": true, "fast": true}
	comfortLevels = map[string]bool{"budget": true, "midrange": true, "luxury": true}
	lodgingTypes  = map[string]bool{"hotel": true, "hostel": true, "apartment": true, "boutique": true, "any": true}
)

// JoinDestinations builds the destination string for a multi-city trip.
func JoinDestinations(stops []string) string {
	cleaned := make([]string, 0, len(stops))
	for _, stop := range stops {
		if trimmed := strings.TrimSpace(stop); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, DestinationSeparator)
}

// Destinations splits the destination string back into ordered stops.
func (r Request) Destinations() []string {
	parts := strings.Split(r.Destination, DestinationSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Days returns the inclusive day count of the trip, or 0 when the dates
// do not parse.
func (r Request) Days() int {
	start, errS := time.Parse("2006-01-02", r.StartDate)
	end, errE := time.Parse("2006-01-02", r.EndDate)
	if errS != nil || errE != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// ApplyDefaults fills optional fields the way the planner service
// defaults them, so a missing field never means "falsy".
func (r *Request) ApplyDefaults() {
	if r.Budget.Currency == "" {
		r.Budget.Currency = "USD"
	}
	if r.Budget.ComfortLevel == "" {
		r.Budget.ComfortLevel = "midrange"
	}
	if r.ActivityPreferences.Pace == "" {
		r.ActivityPreferences.Pace = "moderate"
	}
	if r.LodgingPreferences.LodgingType == "" {
		r.LodgingPreferences.LodgingType = "any"
	}
	if r.LodgingPreferences.MaxDistanceKmFromCenter == 0 {
		r.LodgingPreferences.MaxDistanceKmFromCenter = 5.0
	}
	if r.DailyStartTime == "" {
		r.DailyStartTime = "09:00"
	}
	if r.DailyEndTime == "" {
		r.DailyEndTime = "20:00"
	}
}

// Validate checks the request before it is ever sent to the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return invalid("destination cannot be empty")
	}
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return invalid("start_date must be formatted as YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return invalid("end_date must be formatted as YYYY-MM-DD")
	}
	if end.Before(start) {
		return invalid("end_date must not be before start_date")
	}
	if r.Travelers.Adults < 1 {
		return invalid("travelers.adults must be at least 1")
	}
	if r.Travelers.Children < 0 {
		return invalid("travelers.children cannot be negative")
	}
	if len(r.Budget.Currency) != 3 {
		return invalid("budget.currency must be a 3-letter code")
	}
	if r.Budget.TotalBudget <= 0 {
		return invalid("budget.total_budget must be positive")
	}
	if !comfortLevels[r.Budget.ComfortLevel] {
		return invalid(fmt.Sprintf("budget.comfort_level %q is not recognized", r.Budget.ComfortLevel))
	}
	if !paces[r.ActivityPreferences.Pace] {
		return invalid(fmt.Sprintf("activity_preferences.pace %q is not recognized", r.ActivityPreferences.Pace))
	}
	if !lodgingTypes[r.LodgingPreferences.LodgingType] {
		return invalid(fmt.Sprintf("lodging_preferences.lodging_type %q is not recognized", r.LodgingPreferences.LodgingType))
	}
	if r.LodgingPreferences.MaxDistanceKmFromCenter < 0 {
		return invalid("lodging_preferences.max_distance_km_from_center cannot be negative")
	}
	if _, err := util.ParseClock(r.DailyStartTime); err != nil {
		return invalid("daily_start_time must be formatted as HH:MM")
	}
	if _, err := util.ParseClock(r.DailyEndTime); err != nil {
		return invalid("daily_end_time must be formatted as HH:MM")
	}
	if !util.ClockBefore(r.DailyStartTime, r.DailyEndTime) {
		return invalid("daily_start_time must be before daily_end_time")
	}
	return nil
}

func invalid(message string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, nil)
}
