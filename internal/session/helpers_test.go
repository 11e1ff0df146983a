package session

import (
	"sync"
)

// recordingNavigator records every navigation and, like a browser, reports
// the last target as the current location.
type recordingNavigator struct {
	mu       sync.Mutex
	location string
	events   []string
}

func newRecordingNavigator(location string) *recordingNavigator {
	return &recordingNavigator{location: location}
}

func (n *recordingNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *recordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, target)
	n.location = target
}

func (n *recordingNavigator) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func aliceSession() Session {
	return Session{
		Credential: "tok1",
		Profile: UserProfile{
			ID:       "1",
			Username: "alice",
			Email:    "alice@example.com",
			Roles:    []string{"user"},
		},
	}
}

func adminSession() Session {
	return Session{
		Credential: "tok-admin",
		Profile: UserProfile{
			ID:          "2",
			Username:    "root",
			Email:       "root@example.com",
			Roles:       []string{"user", AdminRole},
			DisplayName: "Box Office Admin",
		},
	}
}
