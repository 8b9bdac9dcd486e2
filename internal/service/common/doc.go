// Package common holds helpers shared by the alarm-chat services.
//
// It loads settings and configures logging, builds the lookup, hand-off and
// responder collaborators from configuration, resolves listen addresses and
// detects the local actor used as the console session id.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
