package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/domain"
)

func newTestSyncer(lists domain.ListService) *ListSyncer {
	return NewListSyncer(lists, "todo.shopping_list", ListSyncerConfig{
		WaitAttempts: 3,
		WaitInterval: time.Millisecond,
	}, zerolog.Nop())
}

func TestEnsurePresent(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a new item", func(t *testing.T) {
		lists := &mockListService{}
		newTestSyncer(lists).EnsurePresent(ctx, "Milk")

		if len(lists.added) != 1 || lists.added[0] != "Milk" {
			t.Errorf("added = %v, want [Milk]", lists.added)
		}
	})

	t.Run("skips an already active item case-insensitively", func(t *testing.T) {
		lists := &mockListService{active: []domain.ListItem{
			{Summary: "  MILK ", Status: domain.ItemNeedsAction},
		}}
		newTestSyncer(lists).EnsurePresent(ctx, "milk")

		if len(lists.added) != 0 {
			t.Errorf("added = %v, want none", lists.added)
		}
	})

	t.Run("completed items do not suppress the add", func(t *testing.T) {
		// Only active items count; a checked-off item is re-added.
		lists := &mockListService{}
		newTestSyncer(lists).EnsurePresent(ctx, "Milk")

		if len(lists.added) != 1 {
			t.Errorf("added = %v, want [Milk]", lists.added)
		}
	})

	t.Run("adds anyway when the active check fails", func(t *testing.T) {
		lists := &mockListService{activeErr: errors.New("service down")}
		newTestSyncer(lists).EnsurePresent(ctx, "Milk")

		if len(lists.added) != 1 {
			t.Errorf("added = %v, want [Milk] despite the failed check", lists.added)
		}
	})

	t.Run("tolerates a failing add", func(t *testing.T) {
		lists := &mockListService{addErr: errors.New("service down")}
		newTestSyncer(lists).EnsurePresent(ctx, "Milk") // must not panic
	})
}

func TestRenameMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("renames items matching by name or barcode", func(t *testing.T) {
		lists := &mockListService{active: []domain.ListItem{
			{Summary: "Milk", Status: domain.ItemNeedsAction},
			{Summary: "Milk 1L", Status: domain.ItemNeedsAction},
			{Summary: "0123", Status: domain.ItemNeedsAction},
			{Summary: "Bread", Status: domain.ItemNeedsAction},
		}}

		renamed := newTestSyncer(lists).RenameMatches(ctx, "Milk", "Whole Milk", "0123")

		if renamed != 3 {
			t.Errorf("renamed = %d, want 3", renamed)
		}
		for _, r := range lists.renames {
			if r[1] != "Whole Milk" {
				t.Errorf("rename target = %q, want Whole Milk", r[1])
			}
		}
	})

	t.Run("zero matches is not an error", func(t *testing.T) {
		lists := &mockListService{active: []domain.ListItem{
			{Summary: "Bread", Status: domain.ItemNeedsAction},
		}}

		if renamed := newTestSyncer(lists).RenameMatches(ctx, "Milk", "Whole Milk", "0123"); renamed != 0 {
			t.Errorf("renamed = %d, want 0", renamed)
		}
	})

	t.Run("skips rename when the fetch fails", func(t *testing.T) {
		lists := &mockListService{activeErr: errors.New("service down")}

		if renamed := newTestSyncer(lists).RenameMatches(ctx, "Milk", "Whole Milk", "0123"); renamed != 0 {
			t.Errorf("renamed = %d, want 0", renamed)
		}
	})

	t.Run("counts only successful renames", func(t *testing.T) {
		lists := &mockListService{
			active: []domain.ListItem{
				{Summary: "Milk", Status: domain.ItemNeedsAction},
			},
			renameErr: errors.New("service down"),
		}

		if renamed := newTestSyncer(lists).RenameMatches(ctx, "Milk", "Whole Milk", "0123"); renamed != 0 {
			t.Errorf("renamed = %d, want 0", renamed)
		}
	})
}

func TestWaitForList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns once the target list exists", func(t *testing.T) {
		lists := &mockListService{targets: []string{"todo.chores", "todo.shopping_list"}}

		if err := newTestSyncer(lists).WaitForList(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lists.targetsCalls != 1 {
			t.Errorf("targets queried %d times, want 1", lists.targetsCalls)
		}
	})

	t.Run("fails after exhausting attempts", func(t *testing.T) {
		lists := &mockListService{targets: []string{"todo.chores"}}

		err := newTestSyncer(lists).WaitForList(ctx)
		if !errors.Is(err, domain.ErrListNotFound) {
			t.Errorf("error = %v, want ErrListNotFound", err)
		}
		if lists.targetsCalls != 3 {
			t.Errorf("targets queried %d times, want 3", lists.targetsCalls)
		}
	})

	t.Run("keeps retrying through service errors", func(t *testing.T) {
		lists := &mockListService{targetsErr: errors.New("service down")}

		err := newTestSyncer(lists).WaitForList(ctx)
		if !errors.Is(err, domain.ErrListNotFound) {
			t.Errorf("error = %v, want ErrListNotFound", err)
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		lists := &mockListService{targets: []string{"todo.chores"}}

		err := newTestSyncer(lists).WaitForList(cancelled)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
