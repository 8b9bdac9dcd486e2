// Package console drives one widget session from a terminal.
//
// Lines typed on stdin are visitor input; /open, /close, /minimize and
// /quit control the panel. Bot messages render only while the panel is
// open; messages that arrive while it is closed count as unread and are
// replayed when it opens again.
package console
