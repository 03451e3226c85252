package logging

const (
	// FieldComponent names the loop or subsystem that emitted a record.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering (e.g. "critical_alert").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact says what the user loses because of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one daemon process lifetime.
	FieldRunID = "run_id"
	// FieldPercentage is the battery charge percentage of a reading.
	FieldPercentage = "percentage"
	// FieldStatus is the battery status of a reading.
	FieldStatus = "status"
	// FieldTier is the alert tier selected for a reading.
	FieldTier = "tier"
	// FieldAllowExecute is the one-shot command gate.
	FieldAllowExecute = "allow_execute"
	// FieldCommand is a user-configured command line.
	FieldCommand = "command"
	// FieldSleep is the computed delay before the next poll.
	FieldSleep = "sleep"
)
