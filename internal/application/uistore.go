package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

const (
	darkModeKey = "isDarkMode"

	// DarkModeClass is applied to the theme target while dark mode is on.
	DarkModeClass = "my-app-dark"
)

// UIStore holds display preferences. Dark mode is persisted; the detail
// sidebar selection is transient.
type UIStore struct {
	kv     driven.KeyValueStore
	theme  driven.ThemeTarget
	logger *slog.Logger

	mu    sync.RWMutex
	state model.UIPreference
}

// NewUIStore creates a UIStore. A nil logger uses slog.Default.
func NewUIStore(kv driven.KeyValueStore, theme driven.ThemeTarget, logger *slog.Logger) *UIStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UIStore{kv: kv, theme: theme, logger: logger}
}

// InitializeDarkMode applies the persisted preference without flipping it.
// A missing or unparsable value means light mode.
func (s *UIStore) InitializeDarkMode(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, darkModeKey)
	if err != nil {
		return fmt.Errorf("loading dark mode preference: %w", err)
	}

	dark := ok && raw == "true"

	s.mu.Lock()
	s.state.DarkMode = dark
	s.mu.Unlock()

	s.applyTheme(dark)
	return nil
}

// ToggleDarkMode flips dark mode, persists the new value and applies it. It
// returns the new value.
func (s *UIStore) ToggleDarkMode(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.state.DarkMode = !s.state.DarkMode
	dark := s.state.DarkMode
	s.mu.Unlock()

	s.applyTheme(dark)

	if err := s.kv.Set(ctx, darkModeKey, strconv.FormatBool(dark)); err != nil {
		s.logger.Error("persisting dark mode", "error", err)
		return dark, fmt.Errorf("persisting dark mode preference: %w", err)
	}
	return dark, nil
}

func (s *UIStore) applyTheme(dark bool) {
	if s.theme == nil {
		return
	}
	if dark {
		s.theme.AddClass(DarkModeClass)
	} else {
		s.theme.RemoveClass(DarkModeClass)
	}
}

// OpenDetailSidebar shows item in the detail sidebar.
func (s *UIStore) OpenDetailSidebar(item any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DetailSidebarVisible = true
	s.state.DetailItem = item
}

// CloseDetailSidebar hides the sidebar and drops the selection.
func (s *UIStore) CloseDetailSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DetailSidebarVisible = false
	s.state.DetailItem = nil
}

// Snapshot returns the current preferences.
func (s *UIStore) Snapshot() model.UIPreference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
