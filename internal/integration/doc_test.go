// Package integration runs the alarm-chat processes together over real
// sockets.
package integration
