package tunnel

import (
	"strings"
	"sync"
)

// DiscoveredURL is one public URL reported by a tunnel.
type DiscoveredURL struct {
	URL  string
	Note string
	// Name of the tunnel that produced the URL.
	Name string
}

func (u DiscoveredURL) String() string {
	if u.Note == "" {
		return u.URL
	}
	return u.URL + " " + u.Note
}

// NormalizeURL trims a pattern match and adds an http:// scheme when the
// match carries none.
func NormalizeURL(match string) string {
	link := strings.TrimSpace(match)
	if !strings.Contains(link, "://") {
		link = "http://" + link
	}
	return link
}

// urlList is the insertion-ordered list of discovered URLs shared by all
// workers of a session.
type urlList struct {
	mu    sync.Mutex
	items []DiscoveredURL
}

func (l *urlList) append(u DiscoveredURL) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, u)
	return len(l.items)
}

func (l *urlList) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *urlList) snapshot() []DiscoveredURL {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DiscoveredURL, len(l.items))
	copy(out, l.items)
	return out
}

func (l *urlList) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}
