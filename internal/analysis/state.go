package analysis

// Phase is the display state of a controller
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// State is a snapshot of a controller. Report is set only in PhaseSuccess
// and Err only in PhaseFailure.
type State struct {
	Phase   Phase
	Variant string
	Report  *Report
	Err     *AnalysisError
}

// Loading reports whether a request is in flight
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// Settled reports whether the state is a terminal outcome of a submission
func (s State) Settled() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseFailure
}

func idleState() State {
	return State{Phase: PhaseIdle}
}

func loadingState(variant string) State {
	return State{Phase: PhaseLoading, Variant: variant}
}

func successState(variant string, report *Report) State {
	return State{Phase: PhaseSuccess, Variant: variant, Report: report}
}

func failureState(variant string, err *AnalysisError) State {
	return State{Phase: PhaseFailure, Variant: variant, Err: err}
}
