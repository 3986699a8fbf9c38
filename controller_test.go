package vgpage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submitForm = `<form action="/submit" method="post" enctype="multipart/form-data"><input type="submit" title="submit"></form>`

func testRegistry() *Registry {
	return NewRegistry(map[string]PageRecord{
		"index":  {Title: "index", Body: ""},
		"submit": {Title: "submit", Body: submitForm},
		"login":  {Title: "log in", Body: "<p>Log in, please</p>"},
	})
}

func TestControllerNavigateTo(t *testing.T) {

	type tcase struct {
		id      string
		replay  bool
		handled bool
		pushes  int
		loads   []Load
		path    string
	}

	tclist := []tcase{
		{"submit", false, true, 1, nil, "/submit"},
		{"submit", true, true, 0, nil, "/"},
		{"index", false, true, 1, nil, "/"},
		{"login", false, true, 1, nil, "/login"},
		{"nothing", false, false, 0, []Load{{URL: "/nothing"}}, "/nothing"},
		{"nothing", true, false, 0, []Load{{URL: "/nothing", Replace: true}}, "/nothing"},
	}

	for _, tc := range tclist {
		tc := tc
		name := tc.id
		if tc.replay {
			name += "/replay"
		}
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			b := NewMemBrowser("/")
			c := New(testRegistry(), b)

			handled := c.NavigateTo(tc.id, tc.replay)
			assert.Equal(tc.handled, handled)
			assert.Equal(tc.pushes, b.Pushes)
			assert.Equal(tc.loads, b.Loads)
			assert.Equal(tc.path, b.Path())

			if !tc.handled {
				assert.Equal("", c.Current())
				assert.Equal("", b.Title)
				return
			}

			rec, _ := testRegistry().Lookup(tc.id)
			assert.Equal(tc.id, c.Current())
			assert.Equal("JJS: "+rec.Title, b.Title)
			assert.Equal(rec.Body, b.Content)
		})
	}

}

func TestControllerPushedState(t *testing.T) {
	b := NewMemBrowser("/")
	c := New(testRegistry(), b)
	require.NoError(t, c.Start())

	assert.True(t, c.NavigateTo("login", false))
	assert.Equal(t, &HistoryState{Page: "login"}, b.State())
	assert.Equal(t, 2, b.Len())
}

func TestControllerStart(t *testing.T) {

	var tlist = []struct {
		path    string
		initial string
		title   string
		loads   []Load
	}{
		{"/", "index", "JJS: index", nil},
		{"", "index", "JJS: index", nil},
		{"/submit", "submit", "JJS: submit", nil},
		{"/missing", "missing", "", []Load{{URL: "/missing", Replace: true}}},
		{"/a/b", "a/b", "", []Load{{URL: "/a/b", Replace: true}}},
	}

	for _, ti := range tlist {
		ti := ti
		t.Run(ti.path, func(t *testing.T) {
			assert := assert.New(t)

			b := NewMemBrowser(ti.path)
			c := New(testRegistry(), b)
			assert.NoError(c.Start())

			assert.Equal(ti.initial, c.InitialID())
			assert.Equal(ti.title, b.Title)
			assert.Equal(ti.loads, b.Loads)
			assert.Equal(0, b.Pushes)
			assert.Equal(1, b.Len())
		})
	}

}

func TestControllerStartTwice(t *testing.T) {
	c := New(testRegistry(), NewMemBrowser("/"))
	require.NoError(t, c.Start())
	assert.Error(t, c.Start())

	c.Stop()
	assert.NoError(t, c.Start())
}

func TestControllerPopState(t *testing.T) {
	assert := assert.New(t)

	b := NewMemBrowser("/submit")
	c := New(testRegistry(), b)
	require.NoError(t, c.Start())

	assert.True(c.NavigateTo("login", false))
	assert.True(c.NavigateTo("index", false))
	assert.Equal(2, b.Pushes)

	// back to an entry with state
	assert.True(b.Back())
	assert.Equal("login", c.Current())
	assert.Equal("JJS: log in", b.Title)

	// back to the load entry, which has no state
	assert.True(b.Back())
	assert.Equal("submit", c.Current())
	assert.Equal(submitForm, b.Content)

	assert.True(b.Forward())
	assert.True(b.Forward())
	assert.Equal("index", c.Current())

	assert.Equal(2, b.Pushes)
	assert.Equal(3, b.Len())
	assert.Empty(b.Loads)
}

func TestControllerPopStateUnknown(t *testing.T) {
	assert := assert.New(t)

	b := NewMemBrowser("/")
	c := New(NewRegistry(map[string]PageRecord{"index": {Title: "index"}}), b)
	require.NoError(t, c.Start())

	// an entry pushed by someone else for a page we do not know
	b.PushState(HistoryState{Page: "gone"}, "/gone")
	assert.True(b.Back())
	assert.True(b.Forward())

	assert.Equal([]Load{{URL: "/gone", Replace: true}}, b.Loads)
	assert.Equal(2, b.Len())
}

func TestControllerStop(t *testing.T) {
	b := NewMemBrowser("/")
	c := New(testRegistry(), b)
	require.NoError(t, c.Start())
	c.NavigateTo("submit", false)

	c.Stop()
	b.Back()
	assert.Equal(t, "submit", c.Current())
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry(map[string]PageRecord{
		"index":  {Title: "index", Body: ""},
		"submit": {Title: "submit", Body: "<form>...</form>"},
	})
	b := NewMemBrowser("/")
	c := New(reg, b)
	require.NoError(t, c.Start())
	assert.Equal("JJS: index", b.Title)

	assert.True(c.NavigateTo("submit", false))
	assert.Equal("JJS: submit", b.Title)
	assert.Equal("<form>...</form>", b.Content)
	assert.Equal("/submit", b.Path())
	assert.Equal(1, b.Pushes)

	assert.True(b.Back())
	assert.Equal("JJS: index", b.Title)
	assert.Equal("", b.Content)
	assert.Equal(1, b.Pushes)
}

type testEventEnv struct {
	locks, renders, locked int
}

func (e *testEventEnv) Lock()         { e.locks++; e.locked++ }
func (e *testEventEnv) UnlockOnly()   { e.locked-- }
func (e *testEventEnv) UnlockRender() { e.locked--; e.renders++ }

func TestControllerEventEnv(t *testing.T) {
	assert := assert.New(t)

	env := &testEventEnv{}
	b := NewMemBrowser("/")
	c := New(testRegistry(), b)
	c.SetEventEnv(env)
	require.NoError(t, c.Start())

	// direct calls are already inside the event loop
	c.NavigateTo("submit", false)
	assert.Equal(0, env.locks)

	b.Back()
	assert.Equal(1, env.locks)
	assert.Equal(1, env.renders)
	assert.Equal(0, env.locked)
}

func TestControllerSettings(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry(map[string]PageRecord{
		"home":  {Title: "Home", Body: "<h1>home</h1>"},
		"about": {Title: "About", Body: "<h1>about</h1>"},
	})
	b := NewMemBrowser("/")
	c := New(reg, b)
	c.SetHomeID("home")
	c.SetTitlePrefix("Site | ")
	c.SetLogger(nil)
	require.NoError(t, c.Start())

	assert.Equal("home", c.Current())
	assert.Equal("Site | Home", b.Title)

	c.NavigateTo("about", false)
	c.NavigateTo("home", false)
	assert.Equal("/", b.Path())
}

func TestMustNavigateTo(t *testing.T) {
	c := New(testRegistry(), NewMemBrowser("/"))
	assert.NotPanics(t, func() { c.MustNavigateTo("submit") })
	assert.Panics(t, func() { c.MustNavigateTo("nothing") })
}

type navComponent struct {
	NavigatorRef
}

func TestBindNavigator(t *testing.T) {
	c := New(testRegistry(), NewMemBrowser("/"))

	comp := &navComponent{}
	n := BindNavigator(c, comp, "not a component")
	assert.Equal(t, 1, n)
	assert.True(t, comp.NavigateTo("login", false))
	assert.Equal(t, "login", c.Current())
}

func TestControllerHandleNavigate(t *testing.T) {
	assert := assert.New(t)

	env := &testEventEnv{}
	b := NewMemBrowser("/")
	c := New(testRegistry(), b)
	c.SetEventEnv(env)
	require.NoError(t, c.Start())

	assert.True(c.HandleNavigate("submit"))
	assert.Equal(1, env.locks)
	assert.Equal(1, env.renders)
	assert.Equal(0, env.locked)
	assert.Equal("submit", c.Current())
	assert.Equal(1, b.Pushes)

	assert.False(c.HandleNavigate("nothing"))
	assert.Equal(2, env.locks)
	assert.Equal(2, env.renders)
	assert.Equal(0, env.locked)
	assert.Equal([]Load{{URL: "/nothing"}}, b.Loads)

	// without an EventEnv it is plain NavigateTo
	c2 := New(testRegistry(), NewMemBrowser("/"))
	assert.True(c2.HandleNavigate("login"))
	assert.Equal("login", c2.Current())
}

// noListenBrowser refuses popstate subscriptions.
type noListenBrowser struct {
	*MemBrowser
}

var errNoListen = errors.New("no popstate")

func (b noListenBrowser) ListenPopState(func(*HistoryState)) (func(), error) {
	return nil, errNoListen
}

func TestControllerStartListenError(t *testing.T) {
	assert := assert.New(t)

	b := noListenBrowser{NewMemBrowser("/submit")}
	c := New(testRegistry(), b)

	assert.Equal(errNoListen, c.Start())
	assert.Equal("submit", c.Current())

	// not left half started
	assert.Equal(errNoListen, c.Start())
}
