package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: accept sessions, drain packet queues
	PhasePreUpdate              // 1: deliver last tick's events
	PhaseUpdate                 // 2: path results, actor movement
	PhaseOutput                 // 3: flush session buffers
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhaseOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// System is one step of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
