package chat

import (
	"encoding/json"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// Sender identifies who authored a message.
type Sender string

const (
	// SenderBot marks messages produced by the widget.
	SenderBot Sender = "bot"
	// SenderUser marks messages typed by the user.
	SenderUser Sender = "user"
)

// EffectKind discriminates the Effect variants.
type EffectKind string

const (
	// EffectEmitMessage appends a message to the transcript.
	EffectEmitMessage EffectKind = "emit_message"
	// EffectScheduleTyping shows the typing indicator for Duration before the next message.
	EffectScheduleTyping EffectKind = "schedule_typing"
	// EffectNavigate sends the browser to URL.
	EffectNavigate EffectKind = "navigate"
	// EffectPersistAlarm stores Record for the detail view.
	EffectPersistAlarm EffectKind = "persist_alarm"
)

// Effect is an action the engine asks its host to perform. Only the fields
// belonging to Kind are set.
type Effect struct {
	Kind EffectKind `json:"kind"`

	// Text and Sender are set for EffectEmitMessage.
	Text   string `json:"text,omitempty"`
	Sender Sender `json:"sender,omitempty"`
	// QuickReplies are optional suggestion chips shown under the message.
	QuickReplies []string `json:"quickReplies,omitempty"`

	// Duration is set for EffectScheduleTyping.
	Duration time.Duration `json:"-"`

	// URL is set for EffectNavigate.
	URL string `json:"url,omitempty"`

	// Record is set for EffectPersistAlarm.
	Record *alarm.Record `json:"record,omitempty"`
}

// MarshalJSON renders Duration as whole milliseconds for the browser.
func (e Effect) MarshalJSON() ([]byte, error) {
	type plain Effect

	return json.Marshal(struct {
		plain

		DurationMS int64 `json:"durationMs,omitempty"`
	}{
		plain:      plain(e),
		DurationMS: e.Duration.Milliseconds(),
	})
}

// BotMessage returns an EffectEmitMessage authored by the bot.
func BotMessage(text string, quickReplies ...string) Effect {
	return Effect{
		Kind:         EffectEmitMessage,
		Text:         text,
		Sender:       SenderBot,
		QuickReplies: quickReplies,
	}
}

// UserMessage returns an EffectEmitMessage echoing the user's input.
func UserMessage(text string) Effect {
	return Effect{
		Kind:   EffectEmitMessage,
		Text:   text,
		Sender: SenderUser,
	}
}

// Typing returns an EffectScheduleTyping of the given duration.
func Typing(d time.Duration) Effect {
	return Effect{
		Kind:     EffectScheduleTyping,
		Duration: d,
	}
}

// NavigateTo returns an EffectNavigate.
func NavigateTo(url string) Effect {
	return Effect{
		Kind: EffectNavigate,
		URL:  url,
	}
}

// Persist returns an EffectPersistAlarm carrying a copy of record.
func Persist(record *alarm.Record) Effect {
	return Effect{
		Kind:   EffectPersistAlarm,
		Record: record.Clone(),
	}
}

// Result is the outcome of handing one input to the engine.
type Result struct {
	State   State    `json:"state"`
	Effects []Effect `json:"effects"`
	// Ignored is true when the input arrived while the session was busy.
	Ignored bool `json:"ignored,omitempty"`
}

// Count returns how many effects of kind the result carries.
func (r Result) Count(kind EffectKind) int {
	n := 0

	for _, e := range r.Effects {
		if e.Kind == kind {
			n++
		}
	}

	return n
}
