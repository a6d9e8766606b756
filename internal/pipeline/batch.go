package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs a job with its result or failure.
type Outcome struct {
	Job    Job
	Result *Result
	Err    error
}

// RunAll runs jobs with at most parallel in flight. A failed job does not
// stop the others; outcomes keep the order of jobs and the returned error
// joins every failure.
func (r *Runner) RunAll(ctx context.Context, jobs []Job, parallel int) ([]Outcome, error) {
	if parallel <= 0 {
		parallel = r.cfg.Pipeline.Parallel
	}
	if parallel <= 0 {
		parallel = 1
	}
	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.Run(ctx, job)
			outcomes[i] = Outcome{Job: job, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return outcomes, errors.Join(errs...)
}
