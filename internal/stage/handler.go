package stage

import "context"

// HealthChecker is implemented by every pipeline stage so the status command
// can report readiness without running anything.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}

// CheckAll runs every checker and collects the results in order.
func CheckAll(ctx context.Context, checkers ...HealthChecker) []Health {
	results := make([]Health, 0, len(checkers))
	for _, checker := range checkers {
		results = append(results, checker.HealthCheck(ctx))
	}
	return results
}

// AllReady reports whether every health record is ready.
func AllReady(results []Health) bool {
	for _, h := range results {
		if !h.Ready {
			return false
		}
	}
	return true
}
