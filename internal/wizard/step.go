package wizard

import "fmt"

// Step is a state of the reservation wizard.
type Step int

const (
	StepDates Step = iota + 1
	StepPersonal
	StepPayment
	// StepSubmitted is terminal; it is reached only from StepPayment.
	StepSubmitted
)

// TotalSteps counts the input steps; StepSubmitted is not one of them.
const TotalSteps = 3

func (s Step) String() string {
	switch s {
	case StepDates:
		return "dates"
	case StepPersonal:
		return "personal"
	case StepPayment:
		return "payment"
	case StepSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Title is the label shown in the step indicator.
func (s Step) Title() string {
	switch s {
	case StepDates:
		return "Dates & guests"
	case StepPersonal:
		return "Personal info"
	case StepPayment:
		return "Payment"
	case StepSubmitted:
		return "Submitted"
	}
	return s.String()
}

type event string

const (
	eventNext    event = "next"
	eventBack    event = "back"
	eventFailed  event = "submit_failed"
	eventConfirm event = "confirm"
	eventSubmit  event = "submit"
)

// transitions lists every legal move. Anything missing is rejected with
// ErrInvalidTransition.
var transitions = map[Step]map[event]Step{
	StepDates: {
		eventNext: StepPersonal,
	},
	StepPersonal: {
		eventNext: StepPayment,
		eventBack: StepDates,
	},
	StepPayment: {
		eventNext: StepSubmitted,
		eventBack: StepPersonal,
	},
	StepSubmitted: {
		eventFailed: StepPayment,
	},
}

func next(from Step, ev event) (Step, bool) {
	to, ok := transitions[from][ev]
	return to, ok
}

// ErrInvalidTransition is returned when an operation has no transition from
// the current step.
type ErrInvalidTransition struct {
	From  Step
	Event string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("wizard: no transition for %q from step %q", e.Event, e.From)
}
