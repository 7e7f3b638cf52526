package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

func rank(r int) *int { return &r }

func slotAt(id string, day int, startHour, endHour float64, capacity int) Slot {
	return Slot{
		ID:               id,
		DayOfWeek:        day,
		Start:            time.Duration(startHour * float64(time.Hour)),
		End:              time.Duration(endHour * float64(time.Hour)),
		Category:         CategoryWeekday,
		RequiredCapacity: capacity,
		Active:           true,
	}
}

func profile(desired float64, perWeek int) *PreferenceProfile {
	return &PreferenceProfile{
		DesiredHoursPerWeek: desired,
		MaxShiftsPerDay:     2,
		MaxShiftsPerWeek:    perWeek,
	}
}

func available(worker, slot string, r *int) AvailabilityRecord {
	return AvailabilityRecord{WorkerID: worker, SlotID: slot, IsAvailable: true, PreferenceRank: r}
}

func requireInconsistency(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrDataInconsistency.Code, appErr.Code)
}

func TestBuildModelRejectsMalformedInput(t *testing.T) {
	cases := map[string]Input{
		"inverted slot": {Slots: []Slot{slotAt("s1", 0, 10, 9, 1)}},
		"equal times":   {Slots: []Slot{slotAt("s1", 0, 9, 9, 1)}},
		"bad day":       {Slots: []Slot{slotAt("s1", 7, 9, 10, 1)}},
		"zero capacity": {Slots: []Slot{slotAt("s1", 0, 9, 10, 0)}},
		"bad category": {Slots: []Slot{func() Slot {
			s := slotAt("s1", 0, 9, 10, 1)
			s.Category = "holiday"
			return s
		}()}},
		"desired hours": {Workers: []Worker{{ID: "w1", Active: true, Profile: profile(41, 5)}}},
		"shifts per week": {Workers: []Worker{{ID: "w1", Active: true, Profile: profile(10, 16)}}},
		"rank": {
			Slots:        []Slot{slotAt("s1", 0, 9, 10, 1)},
			Workers:      []Worker{{ID: "w1", Active: true}},
			Availability: []AvailabilityRecord{available("w1", "s1", rank(6))},
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			model, err := BuildModel(in)
			requireInconsistency(t, err)
			assert.Nil(t, model)
		})
	}
}

func TestBuildModelRejectsInactiveMalformedSlot(t *testing.T) {
	bad := slotAt("s1", 0, 10, 9, 1)
	bad.Active = false
	_, err := BuildModel(Input{Slots: []Slot{bad}})
	requireInconsistency(t, err)
}

func TestBuildModelEligibilityIsOptIn(t *testing.T) {
	inactive := slotAt("s3", 2, 9, 10, 1)
	inactive.Active = false
	in := Input{
		Period: "2024-fall",
		Slots:  []Slot{slotAt("s2", 1, 9, 10, 1), slotAt("s1", 0, 9, 10, 1), inactive},
		Workers: []Worker{
			{ID: "w2", Active: true},
			{ID: "w1", Active: true},
			{ID: "w3", Active: false},
		},
		Availability: []AvailabilityRecord{
			available("w1", "s1", nil),
			{WorkerID: "w2", SlotID: "s1", IsAvailable: false},
			available("w3", "s1", nil),
			available("w1", "s3", nil),
			available("ghost", "s1", nil),
		},
	}

	model, err := BuildModel(in)
	require.NoError(t, err)
	require.Len(t, model.Variables, 1)
	assert.Equal(t, "w1", model.Variables[0].WorkerID)
	assert.Equal(t, "s1", model.Variables[0].SlotID)

	require.Len(t, model.Slots, 2)
	assert.Equal(t, "s1", model.Slots[0].ID)
	require.Len(t, model.Coverage, 2)
	assert.Equal(t, []int{0}, model.Coverage[0].Vars)
	assert.Empty(t, model.Coverage[1].Vars)

	require.Len(t, model.Warnings, 1)
	assert.Equal(t, WarningNoEligibleCandidates, model.Warnings[0].Kind)
	assert.Equal(t, "s2", model.Warnings[0].SlotID)
}

func TestBuildModelLastDuplicateRecordWins(t *testing.T) {
	in := Input{
		Slots:   []Slot{slotAt("s1", 0, 9, 10, 1)},
		Workers: []Worker{{ID: "w1", Active: true}},
		Availability: []AvailabilityRecord{
			available("w1", "s1", rank(1)),
			available("w1", "s1", rank(4)),
		},
	}
	model, err := BuildModel(in)
	require.NoError(t, err)
	require.Len(t, model.Variables, 1)
	require.NotNil(t, model.Variables[0].PreferenceRank)
	assert.Equal(t, 4, *model.Variables[0].PreferenceRank)
}

func TestBuildModelSoftCaps(t *testing.T) {
	in := Input{
		Slots: []Slot{slotAt("s1", 0, 9, 11, 1), slotAt("s2", 1, 13, 14.5, 1)},
		Workers: []Worker{
			{ID: "w1", Active: true, Profile: profile(10, 5)},
			{ID: "w2", Active: true},
			{ID: "w3", Active: true, Profile: profile(8, 3)},
		},
		Availability: []AvailabilityRecord{
			available("w1", "s1", nil),
			available("w1", "s2", rank(2)),
			available("w2", "s1", nil),
		},
	}
	model, err := BuildModel(in)
	require.NoError(t, err)

	require.Len(t, model.SoftCaps, 2, "only w1 has a profile and candidates")
	shifts, hours := model.SoftCaps[0], model.SoftCaps[1]

	assert.Equal(t, "w1", shifts.WorkerID)
	assert.Equal(t, SoftCapShiftCount, shifts.Kind)
	assert.Equal(t, int64(7), shifts.Limit)
	assert.Len(t, shifts.Terms, 2)

	assert.Equal(t, SoftCapHours, hours.Kind)
	assert.Equal(t, int64(1500), hours.Limit)
	require.Len(t, hours.Terms, 2)
	assert.Equal(t, int64(200), hours.Terms[0].Coef)
	assert.Equal(t, int64(150), hours.Terms[1].Coef)
}

func TestBuildModelIsIdempotent(t *testing.T) {
	in := Input{
		Period: "2024-fall",
		Slots:  []Slot{slotAt("b", 1, 9, 10, 2), slotAt("a", 0, 9, 12, 1)},
		Workers: []Worker{
			{ID: "w2", Active: true, Profile: profile(12, 4)},
			{ID: "w1", Active: true},
		},
		Availability: []AvailabilityRecord{
			available("w1", "a", rank(3)),
			available("w2", "a", nil),
			available("w2", "b", rank(1)),
		},
	}

	first, err := BuildModel(in)
	require.NoError(t, err)
	second, err := BuildModel(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildModelDoesNotMutateInput(t *testing.T) {
	r := rank(2)
	in := Input{
		Slots:        []Slot{slotAt("b", 1, 9, 10, 1), slotAt("a", 0, 9, 10, 1)},
		Workers:      []Worker{{ID: "w1", Active: true}},
		Availability: []AvailabilityRecord{available("w1", "a", r)},
	}
	_, err := BuildModel(in)
	require.NoError(t, err)
	assert.Equal(t, "b", in.Slots[0].ID)
	assert.Equal(t, 2, *in.Availability[0].PreferenceRank)
}
