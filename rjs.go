package vgpage

import (
	"encoding/json"
	"errors"

	"github.com/vugu/vugu/js"
)

// DefaultContainerID is the id of the element whose content is replaced with page bodies.
const DefaultContainerID = "page"

var errNotInBrowser = errors.New("not in browser (js) environment")

// NewJSBrowser returns a Browser backed by the real window and document.
// An empty containerID means DefaultContainerID.
// Outside of a wasm environment all methods have no effect.
func NewJSBrowser(containerID string) *JSBrowser {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	return &JSBrowser{containerID: containerID}
}

// JSBrowser implements Browser using window.history, window.location and the document.
type JSBrowser struct {
	containerID string

	popStateFunc js.Func
	exported     map[string]js.Func
}

// Path implements History.
func (b *JSBrowser) Path() string {
	g := js.Global()
	if !g.Truthy() {
		return "/"
	}
	return g.Get("document").Get("location").Get("pathname").String()
}

// PushState implements History.
func (b *JSBrowser) PushState(state HistoryState, url string) {

	g := js.Global()
	if !g.Truthy() {
		return
	}

	sb, err := json.Marshal(state)
	if err != nil {
		panic(err)
	}
	g.Get("window").Get("history").Call("pushState", g.Get("JSON").Call("parse", string(sb)), "", url)

}

// Assign implements History.
func (b *JSBrowser) Assign(url string) {
	g := js.Global()
	if g.Truthy() {
		g.Get("document").Get("location").Set("href", url)
	}
}

// Replace implements History.
func (b *JSBrowser) Replace(url string) {
	g := js.Global()
	if g.Truthy() {
		g.Get("document").Get("location").Call("replace", url)
	}
}

// ListenPopState implements History.
func (b *JSBrowser) ListenPopState(f func(state *HistoryState)) (func(), error) {

	g := js.Global()
	if !g.Truthy() {
		return nil, errNotInBrowser
	}

	if !b.popStateFunc.IsUndefined() {
		return nil, errors.New("popstate listener already set")
	}

	jf := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var st *HistoryState
		if len(args) > 0 {
			st = readHistoryState(args[0].Get("state"))
		}
		f(st)
		return nil
	})

	g.Get("window").Call("addEventListener", "popstate", jf)

	b.popStateFunc = jf

	return b.removePopStateListener, nil
}

func (b *JSBrowser) removePopStateListener() {

	g := js.Global()
	if !g.Truthy() || b.popStateFunc.IsUndefined() {
		return
	}

	g.Get("window").Call("removeEventListener", "popstate", b.popStateFunc)

	b.popStateFunc.Release()
	b.popStateFunc = js.Func{}
}

// readHistoryState returns nil unless v is an object with a string page field.
func readHistoryState(v js.Value) *HistoryState {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	p := v.Get("page")
	if p.Type() != js.TypeString {
		return nil
	}
	return &HistoryState{Page: p.String()}
}

// SetContent implements Document.
func (b *JSBrowser) SetContent(html string) {
	g := js.Global()
	if g.Truthy() {
		g.Get("document").Call("getElementById", b.containerID).Set("innerHTML", html)
	}
}

// SetTitle implements Document.
func (b *JSBrowser) SetTitle(title string) {
	g := js.Global()
	if g.Truthy() {
		g.Get("document").Set("title", title)
	}
}

// Export installs window[name] as a function taking a page identifier.
// It returns false when the page was rendered in-app, so markup such as
// onclick="return loadPage('submit')" only follows the link for unknown pages.
func (b *JSBrowser) Export(name string, nav EventNavigator) error {

	g := js.Global()
	if !g.Truthy() {
		return errNotInBrowser
	}

	if _, ok := b.exported[name]; ok {
		return errors.New("function " + name + " already exported")
	}

	jf := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return true
		}
		return !nav.HandleNavigate(args[0].String())
	})

	g.Get("window").Set(name, jf)

	if b.exported == nil {
		b.exported = make(map[string]js.Func)
	}
	b.exported[name] = jf

	return nil
}

// Unexport removes a function installed with Export.
func (b *JSBrowser) Unexport(name string) {
	jf, ok := b.exported[name]
	if !ok {
		return
	}
	g := js.Global()
	if g.Truthy() {
		g.Get("window").Set(name, nil)
	}
	jf.Release()
	delete(b.exported, name)
}
