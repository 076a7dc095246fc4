// Package nav models the client's route surface. The engine never touches a
// browser history directly; it talks to a Navigator so route transitions can
// be asserted in tests and replayed by whatever shell hosts the engine.
package nav

import "fmt"

// Route identifiers for the surfaces the engine can send the user to.
const (
	RouteSignIn          = "/auth/signin"
	RouteVerifyEmail     = "/auth/verify-email"
	RouteCompleteProfile = "/profile/complete"
	RouteSearchCriteria  = "/search-criteria"
	RouteDiscovery       = "/profiles"
	RouteConversations   = "/conversations"
)

// ProfileRoute builds the canonical URL of a candidate profile. When demo is
// set the demo-mode prefix is used so shared links stay inside the sandbox.
func ProfileRoute(profileID string, demo bool) string {
	if demo {
		return fmt.Sprintf("/demo/profile/%s", profileID)
	}
	return fmt.Sprintf("/profile/%s", profileID)
}

// ConversationRoute builds the URL of a conversation opened by a mutual
// match.
func ConversationRoute(matchID string) string {
	return fmt.Sprintf("%s/%s", RouteConversations, matchID)
}

// Navigator is the engine's handle on the host's routing. Push adds a
// history entry; Replace swaps the current one in place, which is what the
// discovery loop uses so advancing through candidates never stacks history
// and never remounts the surface.
type Navigator interface {
	Push(route string)
	Replace(route string)
}

// History is a recording Navigator. The demo CLI uses it as its only router
// and tests assert on its entries.
type History struct {
	entries []string
}

// NewHistory returns a History positioned at the given initial route.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

func (h *History) Push(route string) {
	h.entries = append(h.entries, route)
}

func (h *History) Replace(route string) {
	if len(h.entries) == 0 {
		h.entries = []string{route}
		return
	}
	h.entries[len(h.entries)-1] = route
}

// Current returns the route the user is on.
func (h *History) Current() string {
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Depth returns the number of history entries.
func (h *History) Depth() int {
	return len(h.entries)
}

// Entries returns a copy of the full history.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
