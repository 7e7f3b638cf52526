package optimizer

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// satisfiedRank is the worst rank still counted as a satisfied preference.
const satisfiedRank = 2

// Assignment is one worker placed on one slot.
type Assignment struct {
	WorkerID        string   `json:"workerId"`
	SlotID          string   `json:"slotId"`
	AssignmentScore *float64 `json:"assignmentScore,omitempty"`
}

// SlotCoverage reports how many seats of a slot were filled.
type SlotCoverage struct {
	SlotID   string `json:"slotId"`
	Required int    `json:"required"`
	Assigned int    `json:"assigned"`
}

// WorkerLoad is the workload a solution gives one worker.
type WorkerLoad struct {
	WorkerID string  `json:"workerId"`
	Shifts   int     `json:"shifts"`
	Hours    float64 `json:"hours"`
}

// Summary aggregates coverage and workload statistics of a solution.
type Summary struct {
	TotalSlots             int            `json:"totalSlots"`
	FullyStaffedSlots      int            `json:"fullyStaffedSlots"`
	UnderstaffedSlots      int            `json:"understaffedSlots"`
	TotalAssignments       int            `json:"totalAssignments"`
	WorkersAssigned        int            `json:"workersAssigned"`
	AverageHoursPerWorker  float64        `json:"averageHoursPerWorker"`
	PreferenceSatisfaction float64        `json:"preferenceSatisfaction"`
	FairnessScore          float64        `json:"fairnessScore"`
	Coverage               []SlotCoverage `json:"coverage"`
	Loads                  []WorkerLoad   `json:"loads"`
}

// Solution is the engine output for one planning period.
type Solution struct {
	Period         string        `json:"period"`
	Status         Status        `json:"status"`
	ObjectiveScore int64         `json:"objectiveScore"`
	Assignments    []Assignment  `json:"assignments"`
	Warnings       []Warning     `json:"warnings,omitempty"`
	Summary        Summary       `json:"summary"`
	Nodes          int64         `json:"nodes"`
	Elapsed        time.Duration `json:"-"`
}

// NoSolutionError reports that the search produced no usable assignment.
type NoSolutionError struct {
	Period string
	Status Status
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("no schedule for period %q: %s", e.Period, e.Status)
}

// Err returns a *NoSolutionError when the status carries no assignment.
func (s Solution) Err() error {
	if s.Status.HasSolution() {
		return nil
	}
	return &NoSolutionError{Period: s.Period, Status: s.Status}
}

// Extract turns the raw solver result into a Solution.
func Extract(model *Model, res Result) Solution {
	sol := Solution{
		Period:      model.Period,
		Status:      res.Status,
		Assignments: []Assignment{},
		Warnings:    model.Warnings,
		Nodes:       res.Nodes,
		Elapsed:     res.Elapsed,
	}
	if !res.Status.HasSolution() {
		return sol
	}

	sol.ObjectiveScore = res.Objective
	for i, chosen := range res.Values {
		if !chosen {
			continue
		}
		v := model.Variables[i]
		a := Assignment{WorkerID: v.WorkerID, SlotID: v.SlotID}
		if v.PreferenceRank != nil {
			score := float64(*v.PreferenceRank)
			a.AssignmentScore = &score
		}
		sol.Assignments = append(sol.Assignments, a)
	}
	sol.Summary = summarize(model, res.Values)
	return sol
}

func summarize(model *Model, values []bool) Summary {
	sum := Summary{
		TotalSlots: len(model.Slots),
		Coverage:   make([]SlotCoverage, len(model.Slots)),
	}
	for i, slot := range model.Slots {
		sum.Coverage[i] = SlotCoverage{SlotID: slot.ID, Required: slot.RequiredCapacity}
	}

	loads := make([]WorkerLoad, len(model.Workers))
	candidate := make([]bool, len(model.Workers))
	for i, worker := range model.Workers {
		loads[i].WorkerID = worker.ID
	}

	var satisfied int
	for i, v := range model.Variables {
		candidate[v.Worker] = true
		if !values[i] {
			continue
		}
		sum.TotalAssignments++
		sum.Coverage[v.Slot].Assigned++
		loads[v.Worker].Shifts++
		loads[v.Worker].Hours += model.Slots[v.Slot].DurationHours()
		if v.PreferenceRank != nil && *v.PreferenceRank <= satisfiedRank {
			satisfied++
		}
	}

	for _, c := range sum.Coverage {
		if c.Assigned >= c.Required {
			sum.FullyStaffedSlots++
		} else {
			sum.UnderstaffedSlots++
		}
	}

	var totalHours float64
	var candidateHours []float64
	for i, load := range loads {
		if candidate[i] {
			candidateHours = append(candidateHours, load.Hours)
		}
		if load.Shifts == 0 {
			continue
		}
		sum.WorkersAssigned++
		totalHours += load.Hours
		sum.Loads = append(sum.Loads, load)
	}
	sort.SliceStable(sum.Loads, func(i, j int) bool { return sum.Loads[i].WorkerID < sum.Loads[j].WorkerID })

	if sum.WorkersAssigned > 0 {
		sum.AverageHoursPerWorker = round2(totalHours / float64(sum.WorkersAssigned))
	}
	if sum.TotalAssignments > 0 {
		sum.PreferenceSatisfaction = round2(float64(satisfied) / float64(sum.TotalAssignments) * 100)
	}
	sum.FairnessScore = round2(fairnessScore(candidateHours))
	return sum
}

// fairnessScore is 100 when hours are spread evenly and drops toward 0 as the
// standard deviation approaches the mean.
func fairnessScore(hours []float64) float64 {
	if len(hours) == 0 {
		return 100
	}
	var total float64
	for _, h := range hours {
		total += h
	}
	if total == 0 {
		return 100
	}
	mean := total / float64(len(hours))

	var variance float64
	for _, h := range hours {
		diff := h - mean
		variance += diff * diff
	}
	variance /= float64(len(hours))

	score := (1 - math.Sqrt(variance)/mean) * 100
	if score < 0 {
		return 0
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
