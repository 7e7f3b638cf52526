package optimizer

// Weights tunes the objective terms. Zero values fall back to DefaultWeights.
type Weights struct {
	// Coverage is a floor for the per-assignment reward of a filled seat;
	// ComposeWeights raises it when the other terms could outweigh one seat.
	Coverage int64
	// NeutralPreference applies when a worker gave no rank.
	NeutralPreference int64
	// PreferenceStep multiplies (6 - rank).
	PreferenceStep int64
	// FairnessStep multiplies a variable's position among its worker's candidates. Negative.
	FairnessStep int64
}

// DefaultWeights mirrors the production tuning.
func DefaultWeights() Weights {
	return Weights{
		Coverage:          1000,
		NeutralPreference: 300,
		PreferenceStep:    100,
		FairnessStep:      -50,
	}
}

func (w Weights) withDefaults() Weights {
	def := DefaultWeights()
	if w.Coverage <= 0 {
		w.Coverage = def.Coverage
	}
	if w.NeutralPreference <= 0 {
		w.NeutralPreference = def.NeutralPreference
	}
	if w.PreferenceStep <= 0 {
		w.PreferenceStep = def.PreferenceStep
	}
	if w.FairnessStep >= 0 {
		w.FairnessStep = def.FairnessStep
	}
	return w
}

// Objective is the composed per-variable weight vector plus its parts.
type Objective struct {
	Weights    []int64
	Coverage   int64
	Preference []int64
	Fairness   []int64
}

// ComposeWeights assigns every variable coverage + preference + fairness.
//
// Fairness is an ordered linear penalty: a worker's k-th candidate (by slot id)
// costs k*FairnessStep. It approximates a quadratic spread penalty and is kept
// linear on purpose.
//
// The coverage reward is raised above the configured value when needed so that
// one extra assignment always outweighs every preference and fairness term combined.
func ComposeWeights(model *Model, w Weights) Objective {
	w = w.withDefaults()
	n := len(model.Variables)
	obj := Objective{
		Weights:    make([]int64, n),
		Preference: make([]int64, n),
		Fairness:   make([]int64, n),
	}

	var span int64
	for i, v := range model.Variables {
		obj.Preference[i] = preferenceWeight(v.PreferenceRank, w)
		span += obj.Preference[i]
	}
	for _, vars := range model.VariablesByWorker() {
		for pos, idx := range vars {
			obj.Fairness[idx] = int64(pos) * w.FairnessStep
			span -= obj.Fairness[idx]
		}
	}

	obj.Coverage = w.Coverage
	if obj.Coverage <= span {
		obj.Coverage = span + 1
	}
	for i := range obj.Weights {
		obj.Weights[i] = obj.Coverage + obj.Preference[i] + obj.Fairness[i]
	}
	return obj
}

func preferenceWeight(rank *int, w Weights) int64 {
	if rank == nil {
		return w.NeutralPreference
	}
	return int64(6-*rank) * w.PreferenceStep
}
