package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeWeightsTerms(t *testing.T) {
	in := Input{
		Slots: []Slot{slotAt("s1", 0, 9, 10, 1), slotAt("s2", 1, 9, 10, 1), slotAt("s3", 2, 9, 10, 1)},
		Workers: []Worker{
			{ID: "w1", Active: true},
		},
		Availability: []AvailabilityRecord{
			available("w1", "s1", rank(1)),
			available("w1", "s2", rank(5)),
			available("w1", "s3", nil),
		},
	}
	model, err := BuildModel(in)
	require.NoError(t, err)

	obj := ComposeWeights(model, DefaultWeights())
	assert.Equal(t, []int64{500, 100, 300}, obj.Preference)
	assert.Equal(t, []int64{0, -50, -100}, obj.Fairness)
	// span 900 preference + 150 fairness reaches the configured 1000
	assert.Equal(t, int64(1051), obj.Coverage)
	assert.Equal(t, []int64{1551, 1101, 1251}, obj.Weights)
}

func TestComposeWeightsCoverageDominates(t *testing.T) {
	var slots []Slot
	var avail []AvailabilityRecord
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		slots = append(slots, slotAt(id, 0, 9, 10, 1))
		avail = append(avail, available("w1", id, rank(1)))
	}
	model, err := BuildModel(Input{Slots: slots, Workers: []Worker{{ID: "w1", Active: true}}, Availability: avail})
	require.NoError(t, err)

	obj := ComposeWeights(model, DefaultWeights())
	// 5*500 preference plus 0+50+100+150+200 fairness
	assert.Equal(t, int64(3001), obj.Coverage)
	for i, w := range obj.Weights {
		assert.Equal(t, obj.Coverage+obj.Preference[i]+obj.Fairness[i], w)
		assert.Positive(t, w)
	}
}

func TestComposeWeightsZeroValuesUseDefaults(t *testing.T) {
	model, err := BuildModel(Input{
		Slots:        []Slot{slotAt("s1", 0, 9, 10, 1)},
		Workers:      []Worker{{ID: "w1", Active: true}},
		Availability: []AvailabilityRecord{available("w1", "s1", nil)},
	})
	require.NoError(t, err)

	obj := ComposeWeights(model, Weights{})
	assert.Equal(t, []int64{1300}, obj.Weights)
}

func TestComposeWeightsFairnessIsPerWorker(t *testing.T) {
	model, err := BuildModel(Input{
		Slots:   []Slot{slotAt("s1", 0, 9, 10, 2), slotAt("s2", 1, 9, 10, 2)},
		Workers: []Worker{{ID: "a", Active: true}, {ID: "b", Active: true}},
		Availability: []AvailabilityRecord{
			available("a", "s1", nil), available("b", "s1", nil),
			available("a", "s2", nil), available("b", "s2", nil),
		},
	})
	require.NoError(t, err)

	obj := ComposeWeights(model, DefaultWeights())
	// variables ordered (s1,a) (s1,b) (s2,a) (s2,b)
	assert.Equal(t, []int64{0, 0, -50, -50}, obj.Fairness)
}

func TestComposeWeightsCoverageIsAFloor(t *testing.T) {
	model, err := BuildModel(Input{
		Slots:        []Slot{slotAt("s1", 0, 9, 10, 1), slotAt("s2", 1, 9, 10, 1)},
		Workers:      []Worker{{ID: "w1", Active: true}},
		Availability: []AvailabilityRecord{available("w1", "s1", rank(1)), available("w1", "s2", nil)},
	})
	require.NoError(t, err)

	w := DefaultWeights()
	w.Coverage = 1_000_000
	obj := ComposeWeights(model, w)
	assert.Equal(t, int64(1_000_000), obj.Coverage)

	w.Coverage = 10
	obj = ComposeWeights(model, w)
	// 500 + 300 preference plus 50 fairness
	assert.Equal(t, int64(851), obj.Coverage)
}
