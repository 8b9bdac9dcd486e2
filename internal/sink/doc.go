// Package sink is the presentation boundary of the widget.
//
// A Sink appends messages and toggles the typing indicator; Panel is the
// sink that also owns the open/closed/minimized flags and the unread
// counter. Dispatcher interprets the engine's effects against a sink, a
// hand-off store and a navigator, in order.
package sink
