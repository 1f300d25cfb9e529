package scenarios

import (
	"context"
	"time"

	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
)

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Report collects results in run order.
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Passed counts successful scenarios.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

// Failed counts failed scenarios.
func (r Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether every scenario passed.
func (r Report) OK() bool {
	return r.Failed() == 0
}

// Run executes scenarios one after another. A failing scenario does not
// stop the others; each starts from its own materialization.
func Run(ctx context.Context, env *Env, list []Scenario) Report {
	logger := logging.GetLogger("scenarios")
	start := time.Now()

	report := Report{Results: make([]Result, 0, len(list))}
	for _, s := range list {
		logger.Info().Str("scenario", s.Name()).Msg("Running scenario")

		began := time.Now()
		err := s.Run(ctx, env)
		res := Result{Name: s.Name(), Err: err, Duration: time.Since(began)}
		report.Results = append(report.Results, res)

		if err != nil {
			logger.Error().Err(err).Str("scenario", s.Name()).Dur("duration", res.Duration).Msg("Scenario failed")
		} else {
			logger.Info().Str("scenario", s.Name()).Dur("duration", res.Duration).Msg("Scenario passed")
		}
	}
	report.Duration = time.Since(start)
	return report
}
