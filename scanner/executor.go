package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// execute probes every port of r concurrently and returns once all probes
// have finished. Outcomes are in completion order.
func execute(ctx context.Context, dialer Dialer, log *slog.Logger, host string, r PortRange, timeout time.Duration) []Outcome {
	total := r.Len()
	if total == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make(chan Outcome, total)

	wg.Add(total)
	for port := r.Begin; port < r.End; port++ {
		go func(t Target) {
			defer wg.Done()
			results <- probe(ctx, dialer, t, timeout)
		}(Target{Host: host, Port: port})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, 0, total)
	for out := range results {
		switch out.State {
		case StateFailed:
			log.Warn("probe skipped", "host", host, "port", out.Target.Port, "error", out.Err)
		case StateExhausted:
			log.Error("probe dropped, scanner is out of local resources",
				"host", host,
				"port", out.Target.Port,
				"batch", r.String(),
				"error", out.Err,
			)
		}
		outcomes = append(outcomes, out)
	}

	return outcomes
}
