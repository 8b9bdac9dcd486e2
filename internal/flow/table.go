package flow

import (
	"strings"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
)

// inputClass is the normalised category of a user input for a given step.
type inputClass uint8

const (
	// inputAny is the only class of steps that accept free input.
	inputAny inputClass = iota
	// inputBlank is an empty or whitespace-only menu choice.
	inputBlank
	// inputText is a non-empty menu input that is not an option number.
	inputText
	inputOptionLookup
	inputOptionDocs
	inputOptionIncidents
	inputOptionStatus
	inputOptionChanges
	inputOptionContact
)

// menuOptions maps the trimmed menu tokens to their classes.
//
//nolint:gochecknoglobals // Read-only lookup table.
var menuOptions = map[string]inputClass{
	"1": inputOptionLookup,
	"2": inputOptionDocs,
	"3": inputOptionIncidents,
	"4": inputOptionStatus,
	"5": inputOptionChanges,
	"6": inputOptionContact,
}

// classify maps a trimmed input onto the class the table is keyed by.
func classify(step chat.Step, input string) inputClass {
	if step != chat.StepMainMenu {
		return inputAny
	}

	if input == "" {
		return inputBlank
	}

	if class, ok := menuOptions[input]; ok {
		return class
	}

	return inputText
}

// classesOf lists every class classify can produce for step.
func classesOf(step chat.Step) []inputClass {
	if step != chat.StepMainMenu {
		return []inputClass{inputAny}
	}

	classes := []inputClass{inputBlank, inputText}
	for _, class := range menuOptions {
		classes = append(classes, class)
	}

	return classes
}

// normalize trims the surrounding whitespace of an input.
func normalize(input string) string {
	return strings.TrimSpace(input)
}

// transitionKey indexes the transition table.
type transitionKey struct {
	step  chat.Step
	class inputClass
}

// handler computes the decision for one transition.
type handler func(e *Engine, state chat.State, input string) Decision

// transitions is the dialogue. Every (step, class) pair classify can
// produce has exactly one entry.
//
//nolint:gochecknoglobals // Read-only transition table.
var transitions = map[transitionKey]handler{
	{chat.StepIdle, inputAny}: (*Engine).greet,

	{chat.StepMainMenu, inputOptionLookup}:    (*Engine).askAlarmID,
	{chat.StepMainMenu, inputOptionDocs}:      canned(docsText, docsQuickReplies...),
	{chat.StepMainMenu, inputOptionIncidents}: canned(incidentsText),
	{chat.StepMainMenu, inputOptionStatus}:    canned(statusText),
	{chat.StepMainMenu, inputOptionChanges}:   canned(changesText),
	{chat.StepMainMenu, inputOptionContact}:   canned(contactText),
	{chat.StepMainMenu, inputBlank}:           (*Engine).rejectChoice,
	{chat.StepMainMenu, inputText}:            (*Engine).relayOrReject,

	{chat.StepAwaitingAlarmID, inputAny}: (*Engine).captureAlarmID,
	{chat.StepAwaitingElement, inputAny}: (*Engine).captureElement,

	{chat.StepBusy, inputAny}: (*Engine).ignore,
}

// canned answers a menu option with a fixed text and stays in the main menu.
func canned(text string, quickReplies ...string) handler {
	return func(e *Engine, state chat.State, _ string) Decision {
		return e.reply(state.WithStep(chat.StepMainMenu), chat.BotMessage(text, quickReplies...))
	}
}
