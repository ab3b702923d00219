package simulation

// Phase is the frame driver's current step.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseDistributing
	PhaseUpdating
	PhaseSwapping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDistributing:
		return "distributing"
	case PhaseUpdating:
		return "updating"
	case PhaseSwapping:
		return "swapping"
	}
	return "unknown"
}

// PhaseHook is called on every phase transition with the phase being entered.
type PhaseHook func(Phase)
