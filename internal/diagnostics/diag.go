package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes emitted by the console.
const (
	BackendUnreachable = "BACKEND.UNREACHABLE"
	BackendRejected    = "BACKEND.REJECTED"
	MixStale           = "MIX.STALE"
	ImageDecode        = "IMAGE.DECODE"
	ControlUnknown     = "CONTROL.UNKNOWN"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	At             time.Time      `json:"at"`
}

// FromError wraps a swallowed error as a warning.
func FromError(code, summary string, err error, evidence map[string]any) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     code,
		Summary:  summary,
		Evidence: evidence,
		At:       time.Now(),
	}
	if err != nil {
		d.Detail = err.Error()
	}
	switch code {
	case BackendUnreachable:
		d.LikelyCauses = []string{"backend not running", "wrong backend.url"}
		d.SuggestedFixes = []string{"start the image-processing backend", "check backend.url in config.yaml"}
	case BackendRejected:
		d.LikelyCauses = []string{"no image uploaded for the slot", "unsupported file type"}
	}
	return d
}
