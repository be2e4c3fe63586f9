package models

// ErrorKind classifies user-visible failures
type ErrorKind int

const (
	ErrUnreachable  ErrorKind = iota + 1 // service could not be contacted
	ErrBadResponse                       // non-success status or malformed payload
	ErrNoInput                           // empty search submission
	ErrNoCandidates                      // search returned nothing; an empty state, not a failure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnreachable:
		return "unreachable"
	case ErrBadResponse:
		return "bad response"
	case ErrNoInput:
		return "no input"
	case ErrNoCandidates:
		return "no candidates"
	default:
		return "unknown"
	}
}

// ViewState tags which variant a ViewModel holds
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewReady
	ViewError
)

// ViewModel is the render target emitted once per orchestration cycle.
// Build it with Loading, Ready or Failed; it is replaced, never edited.
type ViewModel struct {
	state    ViewState
	snapshot WeatherSnapshot
	forecast []ForecastEntry
	hasFc    bool
	kind     ErrorKind
	message  string
}

// Loading returns the loading variant
func Loading() ViewModel {
	return ViewModel{state: ViewLoading}
}

// Ready returns the ready variant. A nil forecast means the forecast is
// unavailable; an empty non-nil slice means the service had none to offer.
func Ready(snapshot WeatherSnapshot, forecast []ForecastEntry) ViewModel {
	vm := ViewModel{state: ViewReady, snapshot: snapshot}
	if forecast != nil {
		vm.forecast = append(make([]ForecastEntry, 0, len(forecast)), forecast...)
		vm.hasFc = true
	}
	return vm
}

// Failed returns the error variant with a human-readable message
func Failed(kind ErrorKind, message string) ViewModel {
	if message == "" {
		message = "Something went wrong (" + kind.String() + ")"
	}
	return ViewModel{state: ViewError, kind: kind, message: message}
}

// State returns the variant tag
func (v ViewModel) State() ViewState { return v.state }

// Snapshot returns the current conditions; ok is false unless the model is Ready
func (v ViewModel) Snapshot() (WeatherSnapshot, bool) {
	return v.snapshot, v.state == ViewReady
}

// Forecast returns a copy of the forecast; ok is false when it is unavailable
func (v ViewModel) Forecast() ([]ForecastEntry, bool) {
	if !v.hasFc {
		return nil, false
	}
	out := make([]ForecastEntry, len(v.forecast))
	copy(out, v.forecast)
	return out, true
}

// Err returns the error kind and message; ok is false unless the model is an error
func (v ViewModel) Err() (ErrorKind, string, bool) {
	return v.kind, v.message, v.state == ViewError
}
