package schemas

import "errors"

// Sentinel errors shared across the pipeline. Callers match them with errors.Is.
var (
	// ErrAcquisition means a browser handle could not be created or configured.
	ErrAcquisition = errors.New("browser acquisition failed")
	// ErrInjection means the page click listener could not be installed.
	ErrInjection = errors.New("listener injection failed")
	// ErrNoActiveSession is returned by pipeline operations attempted while idle.
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionActive is returned when starting a session that is already running.
	ErrSessionActive = errors.New("session already active")
	// ErrEmptyExport is returned when exporting with zero records.
	ErrEmptyExport = errors.New("no data available")
	// ErrScript wraps a JavaScript exception raised during evaluation.
	ErrScript = errors.New("script evaluation failed")
)
