// Package config defines the alarm-chat settings and loads them from YAML.
//
// Values come from alarm-chat-settings.yaml, then from an optional .env
// file and ALARM_CHAT_* environment variables, which win over the file.
// Validate fills defaults so callers never see zero durations.
package config
