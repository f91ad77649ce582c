package intent

// State tags the outcome of a resolution attempt.
type State string

const (
	// StateReady - extraction succeeded and args validated against the action's schema.
	StateReady State = "READY"
	// StateAsk - more information is needed from the user before an action can run.
	StateAsk State = "ASK"
	// StateNoMatch - no action could be determined.
	StateNoMatch State = "NO_MATCH"
)

// Resolution is the tagged result of mapping free text onto an action.
// Exactly the fields for the tagged state are populated.
type Resolution struct {
	State      State
	Confidence float64

	// StateReady
	ActionName string
	Args       map[string]any

	// StateAsk
	Question      string
	MissingFields []string

	// StateNoMatch
	Message string
}
