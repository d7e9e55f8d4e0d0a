package checkout

type State int

const (
	StateIdle State = iota
	StateCreatingSession
	StateSessionError
	StateFormReady
	StateSubmitting
	StateSubmitError
	StateSuccess
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateCreatingSession: "creatingSession",
	StateSessionError:    "sessionError",
	StateFormReady:       "formReady",
	StateSubmitting:      "submitting",
	StateSubmitError:     "submitError",
	StateSuccess:         "success",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ShowsForm reports whether the payment widget may be presented in s.
func (s State) ShowsForm() bool {
	return s == StateFormReady || s == StateSubmitting || s == StateSubmitError
}
