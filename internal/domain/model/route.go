package model

// Route is a navigable location. RequiresAuth on a parent applies to every
// child, matching nested route metadata.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string
	Children     []Route
}
