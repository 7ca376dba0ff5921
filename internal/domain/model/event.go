package model

import "time"

type ActivityType string

const (
	ActivityTypeSorting      ActivityType = "sorting"
	ActivityTypeDistribution ActivityType = "distribution"
	ActivityTypePickup       ActivityType = "pickup"
)

// Coordinates is an optional event geolocation. Events without
// coordinates skip proximity validation entirely.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event is a scheduled activity instance (e.g. one food-rescue shift).
// Immutable once activities reference it except for administrative
// edits; never cascaded on delete.
type Event struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Location        string       `json:"location"`
	Date            time.Time    `json:"date"`
	ActivityType    ActivityType `json:"activityType"`
	DefaultQuantity float64      `json:"defaultQuantity"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	CreatedBy       string       `json:"createdBy,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Summary is the caller-facing projection returned with scan results.
type EventSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

func (e *Event) Summary() EventSummary {
	return EventSummary{ID: e.ID, Title: e.Title, Location: e.Location, Date: e.Date}
}
