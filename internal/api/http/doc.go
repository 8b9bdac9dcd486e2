// Package http serves the widget API over chi.
//
// Each widget session is a flow.Session held in a flow.Registry. Turns are
// dispatched through a session sink that keeps the panel unread counter and
// writes found alarms to the hand-off repository; the effects are then
// returned to the browser, which plays the typing delays and navigation.
package http
