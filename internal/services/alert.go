package services

import "github.com/gen2brain/beeep"

// Alerter surfaces a failed service invocation to the user.
type Alerter interface {
	Alert(title, message string) error
}

// NopAlerter discards alerts.
type NopAlerter struct{}

func (NopAlerter) Alert(string, string) error { return nil }

// DesktopAlerter shows a native alert dialog or notification via beeep.
type DesktopAlerter struct {
	// AppName prefixes the alert title.
	AppName string
}

func (d DesktopAlerter) Alert(title, message string) error {
	if d.AppName != "" {
		title = d.AppName + ": " + title
	}
	return beeep.Alert(title, message, "")
}
