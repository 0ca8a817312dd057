package quality

import (
	"context"
	"time"

	"network-quality/pkg/models"
	"network-quality/pkg/orchestrator"
	"network-quality/pkg/score"
)

// Runner executes one measurement. *orchestrator.Orchestrator satisfies it;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, opts orchestrator.RunOptions) (*models.MeasurementRecord, error)
}

// Result pairs a scored tier with the record it was derived from.
type Result struct {
	Tier   models.QualityTier        `json:"tier"`
	Record *models.MeasurementRecord `json:"record"`
}

// Options configures a one-shot measurement.
type Options struct {
	// Extended also measures packet loss.
	Extended bool
	// Timeout is the overall measurement ceiling; the orchestrator default
	// applies if zero.
	Timeout time.Duration
}

// Measure runs the orchestrator once and scores the result. It is stateless
// between calls; the orchestrator's last-measurement cache is updated as a
// side effect of the run itself.
func Measure(ctx context.Context, runner Runner, opts Options) (*Result, error) {
	rec, err := runner.Run(ctx, orchestrator.RunOptions{
		Extended: opts.Extended,
		Timeout:  opts.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Tier: score.Score(rec), Record: rec}, nil
}
