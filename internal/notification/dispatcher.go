package notification

import (
	"context"
	"log"

	"request-approval-backend/internal/model"
)

// Dispatcher runs admin broadcasts in the background so the HTTP
// response path never waits on push delivery. Outcomes are logged,
// never propagated.
type Dispatcher struct {
	size     int
	jobs     chan model.Request
	notifier *Notifier
}

// NewDispatcher creates a dispatcher with the given worker count.
func NewDispatcher(size int, notifier *Notifier) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		size:     size,
		jobs:     make(chan model.Request, size),
		notifier: notifier,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.size; i++ {
		go d.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (d *Dispatcher) worker(ctx context.Context, id int) {
	log.Printf("Broadcast worker %d started", id)
	for {
		select {
		case req := <-d.jobs:
			outcome := d.notifier.BroadcastNewRequestAlert(ctx, &req)
			if outcome.Skipped {
				log.Printf("Broadcast for request %d skipped (%s)", req.ID, outcome.Reason)
			} else {
				log.Printf("Broadcast for request %d: sent=%d failed=%d removed=%d",
					req.ID, outcome.Sent, len(outcome.Failures), outcome.RemovedInvalid)
			}
		case <-ctx.Done():
			log.Printf("Broadcast worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a broadcast for the given request.
func (d *Dispatcher) Dispatch(req model.Request) {
	d.jobs <- req
}

// Jobs returns the jobs channel for testing.
func (d *Dispatcher) Jobs() chan model.Request {
	return d.jobs
}
