package metrics

// Recorder receives observations from the monitoring loops. The daemon runs
// with NoopRecorder unless a textfile export path is configured.
type Recorder interface {
	ObserveReading(percentage int, status string)
	IncReadFailure(source string)
	IncAlert(tier string)
	IncCommand(trigger string, success bool)
	IncPlugTransition(direction string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveReading(int, string) {}
func (NoopRecorder) IncReadFailure(string)      {}
func (NoopRecorder) IncAlert(string)            {}
func (NoopRecorder) IncCommand(string, bool)    {}
func (NoopRecorder) IncPlugTransition(string)   {}
