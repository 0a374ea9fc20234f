package domain

// RunSummary accumulates counts for one import run. Only the orchestrator
// mutates it; per-record fan-out reports results back instead of touching
// the counters.
type RunSummary struct {
	Processed      int
	Created        int
	Persisted      int
	Failed         int
	ImagesUploaded int
	References     []string
}
