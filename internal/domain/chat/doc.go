// Package chat holds the conversation state of one widget session and the
// effects the flow engine asks the presentation layer to perform.
//
// State is a plain value: the engine receives it, returns a new one and
// never keeps a reference. Effects are data, so the engine can be tested
// without any renderer attached.
package chat
