package optimizer

import "time"

// Category classifies a slot by the kind of week it recurs in.
type Category string

const (
	CategoryWeekday  Category = "weekday"
	CategoryWeekend  Category = "weekend"
	CategoryRotating Category = "rotating"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeekday, CategoryWeekend, CategoryRotating:
		return true
	}
	return false
}

// Slot is a recurring time block that needs a fixed number of workers.
// Start and End are offsets from midnight.
type Slot struct {
	ID               string
	DayOfWeek        int
	Start            time.Duration
	End              time.Duration
	Category         Category
	RequiredCapacity int
	Active           bool
}

// DurationHours returns the slot length in fractional hours.
func (s Slot) DurationHours() float64 {
	return (s.End - s.Start).Hours()
}

// PreferenceProfile holds a worker's workload wishes for one planning period.
type PreferenceProfile struct {
	DesiredHoursPerWeek float64
	MaxShiftsPerDay     int
	MaxShiftsPerWeek    int
	AllowsWeekend       bool
	AllowsRotating      bool
}

// Worker is a person that can be assigned to slots.
type Worker struct {
	ID      string
	Active  bool
	Profile *PreferenceProfile
}

// AvailabilityRecord states whether a worker can take a slot and how much they want it.
type AvailabilityRecord struct {
	WorkerID       string
	SlotID         string
	IsAvailable    bool
	PreferenceRank *int
}

// Input is the already-loaded data for one planning period.
type Input struct {
	Period       string
	Slots        []Slot
	Workers      []Worker
	Availability []AvailabilityRecord
}
