package cron

import "context"

// Job is one unit of scheduled catalog maintenance (today: retrying remote
// deletes from the orphan ledger). Run must be safe to call repeatedly; the
// worker invokes it every cycle it holds the lock.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry is the fixed set of jobs a worker executes each cycle.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil jobs
// are dropped.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		registry.jobs = append(registry.jobs, job)
	}
	return registry
}

// Register adds a job to the registry.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs in registration order, so a
// running cycle is not affected by later registrations.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
