package api

// Status values reported in Result.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Verify outcomes.
const (
	VerifyPass  = "PASS"
	VerifyFixed = "FIXED"
	VerifyFail  = "FAIL"
)

// FileResult is the per-document outcome of a batch operation.
type FileResult struct {
	File       string   `json:"file"`
	Output     string   `json:"output,omitempty"`
	SavingsPct *float64 `json:"savings_pct,omitempty"`
	Steps      []string `json:"steps,omitempty"`
	Status     string   `json:"status,omitempty"`
	Message    string   `json:"message,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Failed reports whether the document could not be processed.
func (r FileResult) Failed() bool {
	return r.Error != "" || r.Status == VerifyFail
}

// Stats tallies a batch.
type Stats struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Fixed     int `json:"fixed,omitempty"`
}

// Result is the structured outcome of one invocation. Failures surface here
// rather than as uncaught errors.
type Result struct {
	Status  string `json:"status"`
	Mode    string `json:"mode"`
	Message string `json:"message,omitempty"`

	FilesProcessed int     `json:"files_processed,omitempty"`
	AvgSavingsPct  float64 `json:"avg_savings_pct,omitempty"`

	// Scan.
	KeysFound     int     `json:"keys_found,omitempty"`
	KeymapEntries int     `json:"keymap_entries,omitempty"`
	NewEntries    int     `json:"new_entries,omitempty"`
	SavingsPct    float64 `json:"savings_pct,omitempty"`
	KeymapFile    string  `json:"keymap_file,omitempty"`

	// Nest and unnest.
	FilesMerged   int    `json:"files_merged,omitempty"`
	KeysFlattened int    `json:"keys_flattened,omitempty"`
	OutputFile    string `json:"output_file,omitempty"`

	Collisions []string     `json:"collisions,omitempty"`
	Results    []FileResult `json:"results,omitempty"`
	Stats      *Stats       `json:"stats,omitempty"`
	ExitCode   int          `json:"exit_code"`
}

// ErrorResult builds a failed Result for mode.
func ErrorResult(mode string, err error) *Result {
	return &Result{
		Status:   StatusError,
		Mode:     mode,
		Message:  err.Error(),
		ExitCode: 1,
	}
}

// Tally fills Stats from Results.
func (r *Result) Tally() {
	s := &Stats{}
	for _, fr := range r.Results {
		switch {
		case fr.Failed():
			s.Failed++
		case fr.Status == VerifyFixed:
			s.Fixed++
			s.Succeeded++
		default:
			s.Succeeded++
		}
	}
	r.Stats = s
}
