package cleanup

import (
	"errors"
	"log/slog"
	"sync"
)

type Job struct {
	Name string
	F    func() error
}

// Registry runs registered jobs in reverse registration order,
// so resources opened later are released first.
type Registry struct {
	mu     sync.Mutex
	jobs   []*Job
	logger *slog.Logger
}

func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

func (r *Registry) Register(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, j)
}

// CleanUp runs every job once and returns the joined job errors.
func (r *Registry) CleanUp() error {
	r.mu.Lock()
	jobs := r.jobs
	r.jobs = nil
	r.mu.Unlock()

	var errs error
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		r.logger.Debug("cleanup job started", slog.String("job", j.Name))
		if err := j.F(); err != nil {
			r.logger.Warn("cleanup job finished with error", slog.String("job", j.Name), slog.String("error", err.Error()))
			errs = errors.Join(errs, err)
			continue
		}
		r.logger.Debug("cleaned", slog.String("job", j.Name))
	}
	return errs
}
