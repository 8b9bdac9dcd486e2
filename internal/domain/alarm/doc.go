// Package alarm contains the alarm record produced by a lookup.
//
// Record is an immutable value object: it is built once by the lookup
// service, shown to the user and handed off to the detail view. Fields and
// FromFields convert it to the flat string map used on the wire.
package alarm
