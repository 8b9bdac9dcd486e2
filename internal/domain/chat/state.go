package chat

import (
	"errors"
	"fmt"
)

// Step is the discrete position in the scripted dialogue.
type Step uint8

const (
	// StepIdle is the position of a freshly started session.
	StepIdle Step = iota
	// StepMainMenu waits for a numbered menu choice.
	StepMainMenu
	// StepAwaitingAlarmID waits for the alarm number.
	StepAwaitingAlarmID
	// StepAwaitingElement waits for the reporting element name.
	StepAwaitingElement
	// StepBusy marks an in-flight collaborator call; input is ignored.
	StepBusy

	stepCount
)

// stepNames maps steps to their wire names.
//
//nolint:gochecknoglobals // Read-only lookup table.
var stepNames = [stepCount]string{
	StepIdle:            "idle",
	StepMainMenu:        "main_menu",
	StepAwaitingAlarmID: "awaiting_alarm_id",
	StepAwaitingElement: "awaiting_element",
	StepBusy:            "busy",
}

// errUnknownStep is returned when decoding a step name that does not exist.
var errUnknownStep = errors.New("unknown step")

// Steps returns every step in declaration order.
func Steps() []Step {
	steps := make([]Step, 0, stepCount)
	for s := StepIdle; s < stepCount; s++ {
		steps = append(steps, s)
	}

	return steps
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool {
	return s < stepCount
}

// String returns the wire name of the step.
func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", uint8(s))
	}

	return stepNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", errUnknownStep, uint8(s))
	}

	return []byte(stepNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Step) UnmarshalText(text []byte) error {
	for i, name := range stepNames {
		if name == string(text) {
			*s = Step(i)

			return nil
		}
	}

	return fmt.Errorf("%w: %q", errUnknownStep, text)
}

// Slots is the form data collected across turns of the alarm sub-dialogue.
// A nil field has not been collected yet; an empty string was collected as empty.
type Slots struct {
	AlarmID *string `json:"alarmId,omitempty"`
	Element *string `json:"element,omitempty"`
}

// Empty reports whether no slot has been filled.
func (s Slots) Empty() bool {
	return s.AlarmID == nil && s.Element == nil
}

// Panel holds the presentation flags owned by the message sink.
type Panel struct {
	UnreadCount int  `json:"unreadCount"`
	IsOpen      bool `json:"isOpen"`
	IsMinimized bool `json:"isMinimized"`
}

// State is the conversation state of one widget session.
type State struct {
	// SessionID identifies the widget session towards collaborators.
	SessionID string `json:"sessionId,omitempty"`

	Step  Step  `json:"step"`
	Slots Slots `json:"slots"`
	Panel Panel `json:"panel"`
}

// NewState returns the state of a freshly started session.
func NewState(sessionID string) State {
	return State{
		SessionID: sessionID,
		Step:      StepIdle,
	}
}

// WithStep returns a copy of s positioned at step.
// Returning to Idle or MainMenu clears the slots.
func (s State) WithStep(step Step) State {
	s.Step = step
	if step == StepIdle || step == StepMainMenu {
		s.Slots = Slots{}
	}

	return s
}

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string {
	return &v
}
