package vgpage

import (
	"errors"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultHomeID is the page identifier that corresponds to the root path "/".
	DefaultHomeID = "index"

	// DefaultTitlePrefix is prepended to each page title when it is written to the document.
	DefaultTitlePrefix = "JJS: "
)

// EventEnv is our view of a Vugu EventEnv
type EventEnv interface {
	Lock()         // acquire write lock
	UnlockOnly()   // release write lock
	UnlockRender() // release write lock and request re-render
}

// HistoryState is the state object attached to each history entry we push.
type HistoryState struct {
	Page string `json:"page"`
}

// History is the part of the browser that deals with the session history and location.
type History interface {
	// Path returns the path part of the current document location.
	Path() string
	// PushState adds a history entry with the given state and visible URL.
	PushState(state HistoryState, url string)
	// Assign performs a full navigation that creates a new history entry.
	Assign(url string)
	// Replace performs a full navigation that takes over the current history entry.
	Replace(url string)
	// ListenPopState registers f to be called when the history position changes.
	// The state passed to f is nil if the entry carries no page state.
	ListenPopState(f func(state *HistoryState)) (release func(), err error)
}

// Document is the render target for pages.
type Document interface {
	SetContent(html string)
	SetTitle(title string)
}

// Browser is everything the Controller needs from its host.
type Browser interface {
	History
	Document
}

// New returns a new Controller which renders pages from reg into b.
func New(reg *Registry, b Browser) *Controller {
	return &Controller{
		reg:         reg,
		browser:     b,
		homeID:      DefaultHomeID,
		titlePrefix: DefaultTitlePrefix,
		log:         logrus.StandardLogger(),
	}
}

// Controller switches between virtual pages and keeps the browser history in step.
// All methods must be called from the browser's event loop.
type Controller struct {
	reg     *Registry
	browser Browser

	homeID      string
	titlePrefix string
	eventEnv    EventEnv
	log         logrus.FieldLogger

	initialID string
	current   string

	started         bool
	releasePopState func()
}

// SetHomeID sets the identifier used for the root path.
// If used it should be set before Start.
func (c *Controller) SetHomeID(id string) {
	c.homeID = id
}

// SetTitlePrefix sets the string prepended to each page title.
func (c *Controller) SetTitlePrefix(prefix string) {
	c.titlePrefix = prefix
}

// SetEventEnv makes history events run inside the Vugu event lock
// and request a re-render once handled.
func (c *Controller) SetEventEnv(env EventEnv) {
	c.eventEnv = env
}

// SetLogger replaces the logger, which defaults to the logrus standard logger.
func (c *Controller) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	c.log = l
}

// Current returns the identifier of the rendered page, or an empty string before the first render.
func (c *Controller) Current() string { return c.current }

// InitialID returns the identifier derived from the URL at Start.
func (c *Controller) InitialID() string { return c.initialID }

// Start renders the page for the current URL and subscribes to history changes.
// The initial render does not push a history entry since the loaded document already is one.
func (c *Controller) Start() error {

	if c.started {
		return errors.New("controller already started")
	}

	c.initialID = c.idForPath(c.browser.Path())
	c.started = true

	c.log.WithField("page", c.initialID).Debug("vgpage: starting")

	c.NavigateTo(c.initialID, true)

	release, err := c.browser.ListenPopState(c.handlePopState)
	if err != nil {
		c.started = false
		return err
	}
	c.releasePopState = release

	return nil
}

// Stop removes the history subscription installed by Start.
func (c *Controller) Stop() {
	if c.releasePopState != nil {
		c.releasePopState()
		c.releasePopState = nil
	}
	c.started = false
}

// MustNavigateTo is like NavigateTo but panics if the page was not rendered in-app.
func (c *Controller) MustNavigateTo(id string) {
	if !c.NavigateTo(id, false) {
		panic("vgpage: page " + id + " is not registered")
	}
}

// NavigateTo renders the page id and returns true, or hands the navigation
// to the browser and returns false if id is not registered.
// When replay is true the navigation comes from history traversal or startup
// and no history entry is added.
func (c *Controller) NavigateTo(id string, replay bool) bool {

	rec, ok := c.reg.Lookup(id)
	if !ok {
		u := "/" + id
		c.log.WithFields(logrus.Fields{"page": id, "replay": replay}).Debug("vgpage: unknown page, full navigation")
		if replay {
			c.browser.Replace(u)
		} else {
			c.browser.Assign(u)
		}
		return false
	}

	if !replay {
		c.browser.PushState(HistoryState{Page: id}, c.pathForID(id))
	}

	c.browser.SetContent(rec.Body)
	c.browser.SetTitle(c.titlePrefix + rec.Title)
	c.current = id

	c.log.WithFields(logrus.Fields{"page": id, "replay": replay}).Debug("vgpage: rendered")

	return true
}

// HandleNavigate is NavigateTo(id, false) for navigation requests that arrive
// from the browser, such as an inline onclick handler.  Like history events it
// runs inside the EventEnv lock when one is set.
func (c *Controller) HandleNavigate(id string) bool {

	if c.eventEnv != nil {
		c.eventEnv.Lock()
		defer c.eventEnv.UnlockRender()
	}

	return c.NavigateTo(id, false)
}

// handlePopState is called by the browser whenever the history position changes.
func (c *Controller) handlePopState(state *HistoryState) {

	if c.eventEnv != nil {
		c.eventEnv.Lock()
		defer c.eventEnv.UnlockRender()
	}

	id := c.initialID
	if state != nil {
		id = state.Page
	}

	c.NavigateTo(id, true)
}

// idForPath maps a URL path to a page identifier.  Everything after
// the leading slash is used verbatim.
func (c *Controller) idForPath(p string) string {
	if p == "" || p == "/" {
		return c.homeID
	}
	if p[0] == '/' {
		return p[1:]
	}
	return p
}

// pathForID is the visible URL for a rendered page.
func (c *Controller) pathForID(id string) string {
	if id == c.homeID {
		return "/"
	}
	return "/" + id
}
