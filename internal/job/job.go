// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package job runs a task periodically, or on demand, without overlapping runs.
package job

import (
	"context"
	"time"
)

// Job represents a scheduled task that runs at a fixed interval and never overlaps with
// itself. A run can also be requested out of schedule with Trigger.
type Job struct {
	interval time.Duration
	task     func(context.Context)
	trigger  chan struct{}
}

// New creates a new Job with the given interval and task.
func New(interval time.Duration, task func(context.Context)) *Job {
	return &Job{
		interval: interval,
		task:     task,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate run. Requests made while one is pending are coalesced.
// The ticker is reset so the next scheduled run happens one interval after the triggered one.
func (j *Job) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// Start begins executing the job on the given context. It returns when the context is cancelled.
// If a tick or trigger fires while a previous run is still executing, it is skipped.
func (j *Job) Start(ctx context.Context) {
	if j.task == nil || j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// sem is a 1-slot semaphore that guards "is a run in progress?"
	sem := make(chan struct{}, 1)
	run := func() {
		select {
		case sem <- struct{}{}:
			go func() {
				defer func() { <-sem }()
				runCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				j.task(runCtx)
			}()
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		case <-j.trigger:
			ticker.Reset(j.interval)
			run()
		}
	}
}
