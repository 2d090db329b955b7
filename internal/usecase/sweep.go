package usecase

// SweepResult summarizes one scheduler pass. Errors carry per-row failures so
// one bad auction or timer never aborts the rest of the sweep.
type SweepResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}
