// Package flow implements the conversational flow engine of the widget.
//
// Engine.Decide is the pure transition function: given a state and the
// user's latest input it returns the next state and the effects to perform,
// plus an optional pending collaborator call (alarm lookup or remote relay).
// Engine.Complete awaits that call and resolves it. Session serialises the
// two halves for one widget session and ignores input that arrives while a
// call is in flight; Registry keeps the sessions of the HTTP server apart.
package flow
