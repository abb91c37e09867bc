package ui

import "testing"

func TestTemplatesParse(t *testing.T) {
	for _, name := range []string{
		"login.html", "dashboard.html", "calendar.html",
		"admin_calendar.html", "event_new.html",
		"subscriptions.html", "requests.html",
	} {
		if _, ok := templates[name]; !ok {
			t.Fatalf("template %q not parsed", name)
		}
	}
}
