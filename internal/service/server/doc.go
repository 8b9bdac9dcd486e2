// Package server runs the widget HTTP server: the session API, the chat
// responder endpoint, the alarm detail hand-off and the metrics route.
package server
