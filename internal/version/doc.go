// Package version exposes build metadata for alarm-chat.
//
// Version, Commit and BuildTime are injected through -ldflags at build time.
// UserAgent is sent by the chat transport so the responder can tell widget
// builds apart.
package version
