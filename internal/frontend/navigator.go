package frontend

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Navigator tracks the operator's current page and holds at most one
// pending navigation. The session layer calls Navigate from API hooks and
// the periodic check; the pending target is delivered as a redirect on the
// next page response.
type Navigator struct {
	mu      sync.Mutex
	current string
	pending string
}

// NewNavigator creates a navigator starting at location
func NewNavigator(location string) *Navigator {
	return &Navigator{current: location}
}

// Location returns the pending target if a navigation is pending,
// otherwise the last page served
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending != "" {
		return n.pending
	}
	return n.current
}

// Navigate schedules a redirect to target
func (n *Navigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pending = target
}

// Take removes and returns the pending navigation, making it the current
// location
func (n *Navigator) Take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending == "" {
		return "", false
	}
	target := n.pending
	n.pending = ""
	n.current = target
	return target, true
}

// Reset drops any pending navigation and sets the current location
func (n *Navigator) Reset(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pending = ""
	n.current = location
}

// visit records a served page unless a navigation is pending
func (n *Navigator) visit(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending == "" {
		n.current = location
	}
}

// Follow is page middleware: it delivers a pending navigation as a redirect
// and otherwise records the requested page as the current location
func (n *Navigator) Follow() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		if target, ok := n.Take(); ok {
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}

		n.visit(c.Request.URL.RequestURI())
		c.Next()
	}
}
