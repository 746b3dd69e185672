package cli

import (
	"sync"

	"github.com/fatih/color"

	"github.com/ericfisherdev/towerpanel/internal/application"
	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

var _ driven.ThemeTarget = (*Palette)(nil)

// Palette is the terminal theme. It is the ThemeTarget the UI store applies
// the dark mode class to, and it colors table output accordingly.
type Palette struct {
	mu   sync.RWMutex
	dark bool
}

// NewPalette returns a palette in light mode.
func NewPalette() *Palette {
	return &Palette{}
}

// AddClass implements driven.ThemeTarget.
func (p *Palette) AddClass(name string) {
	if name != application.DarkModeClass {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dark = true
}

// RemoveClass implements driven.ThemeTarget.
func (p *Palette) RemoveClass(name string) {
	if name != application.DarkModeClass {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dark = false
}

// Dark reports whether the dark palette is active.
func (p *Palette) Dark() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dark
}

// Header colors a table heading.
func (p *Palette) Header(s string) string {
	if p.Dark() {
		return color.New(color.FgHiCyan, color.Bold).Sprint(s)
	}
	return color.New(color.FgBlue, color.Bold).Sprint(s)
}

// Muted colors secondary text.
func (p *Palette) Muted(s string) string {
	if p.Dark() {
		return color.New(color.FgHiBlack).Sprint(s)
	}
	return color.New(color.Faint).Sprint(s)
}

// Status colors a tower status.
func (p *Palette) Status(status model.TowerStatus) string {
	switch status {
	case model.TowerStatusDismantled:
		return color.RedString(string(status))
	case model.TowerStatusActive:
		if p.Dark() {
			return color.HiGreenString(string(status))
		}
		return color.GreenString(string(status))
	default:
		return string(status)
	}
}

// Warn colors a warning.
func (p *Palette) Warn(s string) string {
	return color.YellowString(s)
}
