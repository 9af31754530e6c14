package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod  = "method"
	AttrPath    = "path"
	AttrStatus  = "status"
	AttrOutcome = "outcome"
	AttrStore   = "store"
	AttrSink    = "sink"
)

// Submission outcomes recorded by RecordSubmission.
const (
	OutcomeAccepted    = "accepted"
	OutcomeDuplicate   = "duplicate"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeClosed      = "closed"
	OutcomeUnavailable = "unavailable"
)
