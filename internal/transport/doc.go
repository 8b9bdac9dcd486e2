// Package transport sends free-text widget messages to the remote chat
// responder and maps every failure onto a typed Error.
package transport
