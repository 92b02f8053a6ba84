package mvc

// OutcomeKind tells the dispatch loop how an action ended
type OutcomeKind int

const (
	// OutcomeContinue means the action completed normally
	OutcomeContinue OutcomeKind = iota
	// OutcomeForward means the request was retargeted and must be dispatched again
	OutcomeForward
	// OutcomeTerminate means the response is final
	OutcomeTerminate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeForward:
		return "forward"
	case OutcomeTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// ActionOutcome is returned up to the dispatch loop by every action.
// Forward outcomes carry the target the request was rewritten to.
type ActionOutcome struct {
	Kind       OutcomeKind
	Action     string
	Controller string
	Package    string
	Arguments  map[string]any
}

// Continue returns the outcome of a normally completed action
func Continue() ActionOutcome {
	return ActionOutcome{Kind: OutcomeContinue}
}

// Terminate returns the outcome of an action whose response is final
func Terminate() ActionOutcome {
	return ActionOutcome{Kind: OutcomeTerminate}
}

func (o ActionOutcome) IsContinue() bool  { return o.Kind == OutcomeContinue }
func (o ActionOutcome) IsForward() bool   { return o.Kind == OutcomeForward }
func (o ActionOutcome) IsTerminate() bool { return o.Kind == OutcomeTerminate }

// Err returns ErrStopAction for outcomes that stop the current action and
// nil for Continue.
func (o ActionOutcome) Err() error {
	if o.Kind == OutcomeContinue {
		return nil
	}
	return ErrStopAction
}
