package sink

import "context"

type runIDKey struct{}

// WithRunID attaches the run identifier used to name per-run artifacts
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier, or ""
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}
