package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/healthtwin/backend/internal/domain"
)

// ErrInvalidSettings is returned when a patch fails validation
var ErrInvalidSettings = errors.New("settings: invalid settings")

// SettingsStore owns the process-wide settings document. Reads and writes are
// serialized; the repository is the source of truth across restarts.
type SettingsStore struct {
	mu      sync.Mutex
	repo    SettingsRepository
	current domain.Settings
	loaded  bool
}

// NewSettingsStore creates a store backed by repo
func NewSettingsStore(repo SettingsRepository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

// Get returns the current settings, loading them on first use
func (s *SettingsStore) Get(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return domain.Settings{}, err
	}
	return s.current, nil
}

// Update validates and merges patch, persists the result and returns it.
// The in-memory copy only changes once the save succeeds.
func (s *SettingsStore) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	if err := validatePatch(patch); err != nil {
		return domain.Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return domain.Settings{}, err
	}

	next := patch.Apply(s.current)
	if err := s.repo.SaveSettings(ctx, next); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: failed to save: %w", err)
	}
	s.current = next
	return next, nil
}

func (s *SettingsStore) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	stored, ok, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("settings: failed to load: %w", err)
	}
	if ok {
		s.current = stored
	} else {
		s.current = domain.DefaultSettings()
	}
	s.loaded = true
	return nil
}

func validatePatch(p domain.SettingsPatch) error {
	if err := inputValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if p.Timezone != nil {
		if _, err := time.LoadLocation(*p.Timezone); err != nil || *p.Timezone == "" {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, *p.Timezone)
		}
	}
	return nil
}
