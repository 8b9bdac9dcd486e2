// Package logger wraps zap with a global sugared logger and context helpers.
//
// Every service stores a named logger in its context (WithName, WithKV) and
// the package-level helpers (InfoKV, ErrorKV, ...) pull it back out, so a
// chat session's log lines carry its session id without threading a logger
// through every call.
package logger
