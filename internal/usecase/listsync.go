package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/domain"
)

// ListSyncerConfig bounds the startup wait for the target list.
type ListSyncerConfig struct {
	WaitAttempts int
	WaitInterval time.Duration
}

// ListSyncer keeps the external shopping list in step with scan results:
// it adds newly resolved items without duplicating active ones, and renames
// active items when a cached product's name changes.
type ListSyncer struct {
	lists        domain.ListService
	target       string
	waitAttempts int
	waitInterval time.Duration
	logger       zerolog.Logger
}

// NewListSyncer creates a syncer bound to one target list.
func NewListSyncer(lists domain.ListService, target string, config ListSyncerConfig, logger zerolog.Logger) *ListSyncer {
	attempts := config.WaitAttempts
	if attempts == 0 {
		attempts = 15
	}
	interval := config.WaitInterval
	if interval == 0 {
		interval = 2 * time.Second
	}

	return &ListSyncer{
		lists:        lists,
		target:       target,
		waitAttempts: attempts,
		waitInterval: interval,
		logger:       logger.With().Str("component", "listsync").Logger(),
	}
}

// WaitForList blocks until the target list appears among the available
// lists, retrying a bounded number of times. Returns ErrListNotFound when
// the attempts are exhausted; initialization must then fail.
func (s *ListSyncer) WaitForList(ctx context.Context) error {
	for attempt := 1; attempt <= s.waitAttempts; attempt++ {
		targets, err := s.lists.ListTargets(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Int("attempt", attempt).Msg("list service not reachable")
		} else {
			for _, t := range targets {
				if t == s.target {
					s.logger.Info().Str("list", s.target).Msg("target list ready")
					return nil
				}
			}
			s.logger.Info().Str("list", s.target).Int("attempt", attempt).Int("max", s.waitAttempts).Msg("waiting for target list")
		}

		if attempt < s.waitAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.waitInterval):
			}
		}
	}
	return domain.ErrListNotFound
}

// EnsurePresent adds displayName to the list unless it is already among the
// active items (case-insensitive, trimmed). Only active items count:
// re-scanning an item the user already checked off adds it again. A failure
// to query active items is treated as "not present" and the add proceeds.
func (s *ListSyncer) EnsurePresent(ctx context.Context, displayName string) {
	items, err := s.lists.ActiveItems(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("active item check failed, adding anyway")
	} else {
		want := strings.ToLower(strings.TrimSpace(displayName))
		for _, item := range items {
			if strings.ToLower(strings.TrimSpace(item.Summary)) == want {
				s.logger.Info().Str("item", displayName).Msg("already active on list")
				return
			}
		}
	}

	if err := s.lists.AddItem(ctx, displayName); err != nil {
		s.logger.Warn().Err(err).Str("item", displayName).Msg("list add failed")
		return
	}
	s.logger.Info().Str("item", displayName).Str("list", s.target).Msg("added to list")
}

// RenameMatches renames every active item whose text contains oldName or
// the raw barcode (an unresolved item may have been listed by its barcode)
// to newName, in place. Returns the number of items renamed; zero matches
// is not an error.
func (s *ListSyncer) RenameMatches(ctx context.Context, oldName, newName, barcode string) int {
	items, err := s.lists.ActiveItems(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("active item fetch failed, skipping rename")
		return 0
	}

	renamed := 0
	for _, item := range items {
		if !strings.Contains(item.Summary, oldName) && !strings.Contains(item.Summary, barcode) {
			continue
		}
		if err := s.lists.RenameItem(ctx, item.Summary, newName); err != nil {
			s.logger.Warn().Err(err).Str("item", item.Summary).Msg("list rename failed")
			continue
		}
		renamed++
	}

	if renamed > 0 {
		s.logger.Info().Int("count", renamed).Str("old", oldName).Str("new", newName).Msg("renamed list items")
	}
	return renamed
}
