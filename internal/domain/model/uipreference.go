package model

// UIPreference holds display state. Only DarkMode is persisted; the detail
// sidebar state lives in memory for the lifetime of the process.
type UIPreference struct {
	DarkMode             bool
	DetailSidebarVisible bool
	DetailItem           any
}
