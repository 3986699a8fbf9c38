package vgpage

// Navigator is implemented by anything that can switch the displayed page.
// Controller implements it.
type Navigator interface {
	NavigateTo(id string, replay bool) bool
}

// EventNavigator handles navigation requests coming from browser events.
// Controller implements it.
type EventNavigator interface {
	HandleNavigate(id string) bool
}

// NavigatorRef can be embedded in a component so the Navigator can be injected
// when the component is created, avoiding a package-level controller.
type NavigatorRef struct {
	Navigator // embed Navigator
}

// NavigatorSet implements NavigatorSetter.
func (h *NavigatorRef) NavigatorSet(o Navigator) {
	h.Navigator = o
}

// NavigatorSetter is implemented by components that accept a Navigator.
type NavigatorSetter interface {
	NavigatorSet(Navigator)
}

// BindNavigator passes nav to each value that implements NavigatorSetter
// and returns how many accepted it.
func BindNavigator(nav Navigator, vals ...interface{}) int {
	n := 0
	for _, v := range vals {
		if s, ok := v.(NavigatorSetter); ok {
			s.NavigatorSet(nav)
			n++
		}
	}
	return n
}
