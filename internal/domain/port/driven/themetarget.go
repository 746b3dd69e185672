package driven

// ThemeTarget is the root element the UI theme class is applied to.
type ThemeTarget interface {
	AddClass(name string)
	RemoveClass(name string)
}
