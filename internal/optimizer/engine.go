package optimizer

import (
	"time"

	"go.uber.org/zap"
)

// Engine runs model building, weighting, search and extraction for one period.
// It holds configuration only; concurrent Run calls share nothing.
type Engine struct {
	weights   Weights
	budget    time.Duration
	nodeLimit int64
	logger    *zap.Logger
}

// NewEngine constructs an Engine. A non-positive budget falls back to
// DefaultTimeBudget and the node limit starts at DefaultNodeLimit.
func NewEngine(weights Weights, budget time.Duration, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	return &Engine{weights: weights.withDefaults(), budget: budget, nodeLimit: DefaultNodeLimit, logger: logger}
}

// WithNodeLimit sets the node cap for every later Run. A negative value
// disables the cap and leaves the wall-clock budget as the only limit.
func (e *Engine) WithNodeLimit(limit int64) *Engine {
	switch {
	case limit < 0:
		e.nodeLimit = 0
	case limit > 0:
		e.nodeLimit = limit
	}
	return e
}

// Run computes a schedule. The returned error is non-nil only for malformed
// input; search outcomes without an assignment are reported through
// Solution.Status and Solution.Err.
func (e *Engine) Run(in Input) (Solution, error) {
	model, err := BuildModel(in)
	if err != nil {
		e.logger.Warn("scheduling input rejected", zap.String("semester", in.Period), zap.Error(err))
		return Solution{Period: in.Period}, err
	}
	for _, w := range model.Warnings {
		e.logger.Warn("slot cannot be staffed",
			zap.String("semester", in.Period),
			zap.String("slot_id", w.SlotID),
			zap.String("kind", string(w.Kind)),
		)
	}

	objective := ComposeWeights(model, e.weights)
	res := Solve(model, objective.Weights, SolveOptions{TimeBudget: e.budget, NodeLimit: e.nodeLimit})
	sol := Extract(model, res)

	e.logger.Info("schedule search finished",
		zap.String("semester", in.Period),
		zap.String("status", string(sol.Status)),
		zap.Int64("objective", sol.ObjectiveScore),
		zap.Int("variables", len(model.Variables)),
		zap.Int("assignments", len(sol.Assignments)),
		zap.Int64("nodes", res.Nodes),
		zap.String("stopped", string(res.Stopped)),
		zap.Duration("elapsed", res.Elapsed),
	)
	return sol, nil
}
