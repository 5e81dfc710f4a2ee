package farm

// Failure records one per-entry filesystem failure. The run continues;
// failures only surface in the exit status at the CLI boundary.
type Failure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Report summarizes one build or clean run. Dry runs produce the same
// shape with identical counts and zero mutation.
type Report struct {
	DryRun   bool      `json:"dry_run"`
	Created  int       `json:"created"`
	Replaced int       `json:"replaced"`
	Removed  int       `json:"removed"`
	Skipped  int       `json:"skipped"`
	Warnings []string  `json:"warnings,omitempty"`
	Failures []Failure `json:"failures,omitempty"`
	// Actions lists what was (or, in a dry run, would be) done, in
	// execution order.
	Actions []string `json:"actions,omitempty"`
}

// Failed reports whether any per-entry failure was recorded.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Changed reports whether the run performed (or would perform) any
// mutation.
func (r *Report) Changed() bool {
	return r.Created+r.Replaced+r.Removed > 0
}

func (r *Report) addFailure(path string, err error) {
	r.Failures = append(r.Failures, Failure{Path: path, Err: err.Error()})
}
