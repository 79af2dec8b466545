package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/logging"
)

// DispatcherOptions configures a Dispatcher instance.
type DispatcherOptions struct {
	// MaxParallel bounds concurrent agent calls. 0 means unbounded, which
	// is the default since agent sets stay small.
	MaxParallel int
	// AgentTimeout bounds each individual agent call. 0 disables the
	// per-call timeout; the request context still applies.
	AgentTimeout time.Duration
	Logger       logging.Logger
}

// Dispatcher fans one message out to several agents concurrently and joins
// the results. Every branch is isolated: an error or timeout from one agent
// is captured as data in its result slot and never affects the others. The
// joined result preserves input order regardless of completion order.
type Dispatcher struct {
	executor *Executor
	opts     DispatcherOptions
}

// NewDispatcher creates a Dispatcher over the given executor.
func NewDispatcher(executor *Executor, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{executor: executor, opts: opts}
}

// Dispatch invokes every agent concurrently. The input is deduplicated with
// order preserved; the output has exactly one result per remaining id, in
// the same order.
func (d *Dispatcher) Dispatch(ctx context.Context, agentIDs []string, message string, history []core.Message) []core.ExecutionResult {
	ids := dedupe(agentIDs)
	results := make([]core.ExecutionResult, len(ids))

	var sem chan struct{}
	if d.opts.MaxParallel > 0 {
		sem = make(chan struct{}, d.opts.MaxParallel)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[i] = core.ExecutionResult{AgentID: id, Err: ctx.Err().Error()}
					return
				}
			}

			callCtx := ctx
			if d.opts.AgentTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, d.opts.AgentTimeout)
				defer cancel()
			}

			res, err := d.executor.Execute(callCtx, id, message, history)
			if err != nil {
				res.Response = ""
				res.Err = err.Error()
			}
			results[i] = res
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, r := range results {
		if !r.Succeeded() {
			failures++
		}
	}
	d.opts.Logger.Debug("dispatch joined",
		"agents", len(ids),
		"failures", failures,
		"duration", time.Since(start),
	)

	return results
}

// dedupe removes duplicate ids preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
