package vgpage

import "errors"

// Load records a full (non in-app) navigation performed on a MemBrowser.
type Load struct {
	URL     string
	Replace bool // true for location.replace, false for assignment
}

type memEntry struct {
	url   string
	state *HistoryState
}

// NewMemBrowser returns a MemBrowser whose only history entry is the
// document loaded at path.
func NewMemBrowser(path string) *MemBrowser {
	if path == "" {
		path = "/"
	}
	return &MemBrowser{
		entries: []memEntry{{url: path}},
	}
}

// MemBrowser is an in-memory Browser with a simulated history stack.
// It is useful for tests and for running a Controller outside of wasm.
type MemBrowser struct {
	entries []memEntry
	pos     int

	listener func(state *HistoryState)

	Content string // last content set
	Title   string // last title set
	Pushes  int    // number of PushState calls
	Loads   []Load // full navigations in order
}

// Path implements History.
func (b *MemBrowser) Path() string { return b.entries[b.pos].url }

// Len returns the number of history entries.
func (b *MemBrowser) Len() int { return len(b.entries) }

// State returns the state of the current history entry, or nil.
func (b *MemBrowser) State() *HistoryState {
	st := b.entries[b.pos].state
	if st == nil {
		return nil
	}
	cp := *st
	return &cp
}

// PushState implements History.  Entries forward of the current one are discarded.
func (b *MemBrowser) PushState(state HistoryState, url string) {
	b.Pushes++
	b.push(memEntry{url: url, state: &state})
}

func (b *MemBrowser) push(e memEntry) {
	b.entries = append(b.entries[:b.pos+1], e)
	b.pos = len(b.entries) - 1
}

// Assign implements History.
func (b *MemBrowser) Assign(url string) {
	b.Loads = append(b.Loads, Load{URL: url})
	b.push(memEntry{url: url})
}

// Replace implements History.
func (b *MemBrowser) Replace(url string) {
	b.Loads = append(b.Loads, Load{URL: url, Replace: true})
	b.entries[b.pos] = memEntry{url: url}
}

// ListenPopState implements History.
func (b *MemBrowser) ListenPopState(f func(state *HistoryState)) (func(), error) {
	if b.listener != nil {
		return nil, errors.New("popstate listener already set")
	}
	b.listener = f
	return func() { b.listener = nil }, nil
}

// SetContent implements Document.
func (b *MemBrowser) SetContent(html string) { b.Content = html }

// SetTitle implements Document.
func (b *MemBrowser) SetTitle(title string) { b.Title = title }

// Back moves one entry back and fires popstate.  It returns false if
// there is no earlier entry.
func (b *MemBrowser) Back() bool { return b.Go(-1) }

// Forward moves one entry forward and fires popstate.  It returns false
// if there is no later entry.
func (b *MemBrowser) Forward() bool { return b.Go(1) }

// Go moves delta entries through the history and fires popstate,
// like window.history.go.  Out of range moves do nothing and return false.
func (b *MemBrowser) Go(delta int) bool {
	n := b.pos + delta
	if delta == 0 || n < 0 || n >= len(b.entries) {
		return false
	}
	b.pos = n
	if b.listener != nil {
		b.listener(b.State())
	}
	return true
}
