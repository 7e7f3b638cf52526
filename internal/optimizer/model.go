package optimizer

import (
	"fmt"
	"sort"
	"time"

	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

const (
	// shiftCapSlack lets a worker exceed max_shifts_per_week by a couple of shifts.
	shiftCapSlack = 2
	// durationUnit scales hours to integer hundredths.
	durationUnit = 36 * time.Second

	maxDesiredHours   = 40
	maxShiftsPerDay   = 3
	maxShiftsPerWeek  = 15
	minPreferenceRank = 1
	maxPreferenceRank = 5
)

// SoftCapKind identifies the workload dimension a soft cap bounds.
type SoftCapKind string

const (
	SoftCapShiftCount SoftCapKind = "shift_count"
	SoftCapHours      SoftCapKind = "hours"
)

// WarningKind classifies non-fatal modelling findings.
type WarningKind string

const (
	WarningNoEligibleCandidates WarningKind = "NO_ELIGIBLE_CANDIDATES"
)

// Warning is a non-fatal condition found while building the model.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	SlotID  string      `json:"slotId,omitempty"`
	Message string      `json:"message"`
}

// Variable is the boolean decision "assign WorkerID to SlotID".
type Variable struct {
	Index          int
	WorkerID       string
	SlotID         string
	Slot           int
	Worker         int
	PreferenceRank *int
	DurationScaled int64
}

// Term is one coefficient of a linear constraint.
type Term struct {
	Var  int
	Coef int64
}

// CoverageConstraint bounds how many workers a slot receives.
type CoverageConstraint struct {
	SlotID   string
	Vars     []int
	Capacity int64
}

// SoftCapConstraint bounds a worker's load. Limits already include slack.
type SoftCapConstraint struct {
	WorkerID string
	Kind     SoftCapKind
	Terms    []Term
	Limit    int64
}

// Model is the reduced decision problem for one planning period.
type Model struct {
	Period    string
	Slots     []Slot
	Workers   []Worker
	Variables []Variable
	Coverage  []CoverageConstraint
	SoftCaps  []SoftCapConstraint
	Warnings  []Warning
}

type pairKey struct {
	worker string
	slot   string
}

// BuildModel validates the input and derives decision variables and constraints.
// Any malformed slot, profile or rank aborts before a variable is created.
func BuildModel(in Input) (*Model, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	slots := activeSlots(in.Slots)
	workers := activeWorkers(in.Workers)

	slotIndex := make(map[string]int, len(slots))
	for i, slot := range slots {
		slotIndex[slot.ID] = i
	}
	workerIndex := make(map[string]int, len(workers))
	for i, worker := range workers {
		workerIndex[worker.ID] = i
	}

	records := make(map[pairKey]AvailabilityRecord, len(in.Availability))
	for _, rec := range in.Availability {
		if _, ok := slotIndex[rec.SlotID]; !ok {
			continue
		}
		if _, ok := workerIndex[rec.WorkerID]; !ok {
			continue
		}
		records[pairKey{worker: rec.WorkerID, slot: rec.SlotID}] = rec
	}

	model := &Model{
		Period:   in.Period,
		Slots:    slots,
		Workers:  workers,
		Coverage: make([]CoverageConstraint, len(slots)),
	}

	for si, slot := range slots {
		coverage := CoverageConstraint{SlotID: slot.ID, Capacity: int64(slot.RequiredCapacity)}
		scaled := int64((slot.End - slot.Start) / durationUnit)
		for wi, worker := range workers {
			rec, ok := records[pairKey{worker: worker.ID, slot: slot.ID}]
			if !ok || !rec.IsAvailable {
				continue
			}
			v := Variable{
				Index:          len(model.Variables),
				WorkerID:       worker.ID,
				SlotID:         slot.ID,
				Slot:           si,
				Worker:         wi,
				DurationScaled: scaled,
			}
			if rec.PreferenceRank != nil {
				rank := *rec.PreferenceRank
				v.PreferenceRank = &rank
			}
			model.Variables = append(model.Variables, v)
			coverage.Vars = append(coverage.Vars, v.Index)
		}
		if len(coverage.Vars) == 0 {
			model.Warnings = append(model.Warnings, Warning{
				Kind:    WarningNoEligibleCandidates,
				SlotID:  slot.ID,
				Message: fmt.Sprintf("slot %s (day %d) has no available workers", slot.ID, slot.DayOfWeek),
			})
		}
		model.Coverage[si] = coverage
	}

	byWorker := model.VariablesByWorker()
	for wi, worker := range workers {
		vars := byWorker[wi]
		if worker.Profile == nil || len(vars) == 0 {
			continue
		}
		shiftTerms := make([]Term, 0, len(vars))
		hourTerms := make([]Term, 0, len(vars))
		for _, idx := range vars {
			shiftTerms = append(shiftTerms, Term{Var: idx, Coef: 1})
			hourTerms = append(hourTerms, Term{Var: idx, Coef: model.Variables[idx].DurationScaled})
		}
		desired := int64(worker.Profile.DesiredHoursPerWeek * 100)
		model.SoftCaps = append(model.SoftCaps,
			SoftCapConstraint{
				WorkerID: worker.ID,
				Kind:     SoftCapShiftCount,
				Terms:    shiftTerms,
				Limit:    int64(worker.Profile.MaxShiftsPerWeek + shiftCapSlack),
			},
			SoftCapConstraint{
				WorkerID: worker.ID,
				Kind:     SoftCapHours,
				Terms:    hourTerms,
				Limit:    desired * 3 / 2,
			},
		)
	}

	return model, nil
}

// VariablesByWorker groups variable indexes by worker position, in variable order.
func (m *Model) VariablesByWorker() [][]int {
	grouped := make([][]int, len(m.Workers))
	for _, v := range m.Variables {
		grouped[v.Worker] = append(grouped[v.Worker], v.Index)
	}
	return grouped
}

func validateInput(in Input) error {
	for _, slot := range in.Slots {
		if err := validateSlot(slot); err != nil {
			return err
		}
	}
	for _, worker := range in.Workers {
		if err := validateProfile(worker); err != nil {
			return err
		}
	}
	for _, rec := range in.Availability {
		if rec.PreferenceRank == nil {
			continue
		}
		rank := *rec.PreferenceRank
		if rank < minPreferenceRank || rank > maxPreferenceRank {
			return inconsistency("availability for worker %s on slot %s has preference rank %d outside 1-5", rec.WorkerID, rec.SlotID, rank)
		}
	}
	return nil
}

func validateSlot(slot Slot) error {
	if slot.End <= slot.Start {
		return inconsistency("slot %s end_time must be after start_time", slot.ID)
	}
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return inconsistency("slot %s day_of_week %d outside 0-6", slot.ID, slot.DayOfWeek)
	}
	if slot.RequiredCapacity < 1 {
		return inconsistency("slot %s required capacity must be at least 1", slot.ID)
	}
	if !slot.Category.Valid() {
		return inconsistency("slot %s has unknown category %q", slot.ID, slot.Category)
	}
	return nil
}

func validateProfile(worker Worker) error {
	p := worker.Profile
	if p == nil {
		return nil
	}
	if p.DesiredHoursPerWeek <= 0 || p.DesiredHoursPerWeek > maxDesiredHours {
		return inconsistency("worker %s desired hours %.2f outside (0,40]", worker.ID, p.DesiredHoursPerWeek)
	}
	if p.MaxShiftsPerDay < 1 || p.MaxShiftsPerDay > maxShiftsPerDay {
		return inconsistency("worker %s max shifts per day %d outside 1-3", worker.ID, p.MaxShiftsPerDay)
	}
	if p.MaxShiftsPerWeek < 1 || p.MaxShiftsPerWeek > maxShiftsPerWeek {
		return inconsistency("worker %s max shifts per week %d outside 1-15", worker.ID, p.MaxShiftsPerWeek)
	}
	return nil
}

func inconsistency(format string, args ...any) error {
	return appErrors.Clone(appErrors.ErrDataInconsistency, fmt.Sprintf(format, args...))
}

func activeSlots(in []Slot) []Slot {
	out := make([]Slot, 0, len(in))
	for _, slot := range in {
		if slot.Active {
			out = append(out, slot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func activeWorkers(in []Worker) []Worker {
	out := make([]Worker, 0, len(in))
	for _, worker := range in {
		if worker.Active {
			out = append(out, worker)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
