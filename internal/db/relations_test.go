package db

import (
	"context"
	"testing"

	"github.com/pulsesocial/pulse/internal/apperr"
)

func TestFollow_DuplicateConflicts(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	if err := repo.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	assertKind(t, repo.Follow(ctx, 1, 2), apperr.KindConflict)

	// The reverse direction is a distinct edge
	if err := repo.Follow(ctx, 2, 1); err != nil {
		t.Fatalf("reverse follow: %v", err)
	}
}

func TestUnfollow_WithoutEdge(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	assertKind(t, repo.Unfollow(ctx, 1, 2), apperr.KindValidation)

	if err := repo.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := repo.Unfollow(ctx, 1, 2); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	assertKind(t, repo.Unfollow(ctx, 1, 2), apperr.KindValidation)
}

func TestBlock_RemovesFollowEdges(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	// Mutual follows plus an unrelated edge that must survive
	if err := repo.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := repo.Follow(ctx, 2, 1); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := repo.Follow(ctx, 1, 3); err != nil {
		t.Fatalf("follow: %v", err)
	}

	if err := repo.Block(ctx, 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}

	for _, pair := range [][2]int64{{1, 2}, {2, 1}} {
		following, err := repo.IsFollowing(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("is following: %v", err)
		}
		if following {
			t.Errorf("expected follow %d->%d to be removed by block", pair[0], pair[1])
		}
	}

	ids, err := repo.FollowingIDs(ctx, 1)
	if err != nil {
		t.Fatalf("following ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("expected unrelated follow to survive, got %v", ids)
	}

	blocked, err := repo.IsBlockedEither(ctx, 2, 1)
	if err != nil {
		t.Fatalf("is blocked: %v", err)
	}
	if !blocked {
		t.Error("expected block to be visible from either side")
	}
}

func TestBlock_DuplicateConflicts(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	if err := repo.Block(ctx, 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}
	assertKind(t, repo.Block(ctx, 1, 2), apperr.KindConflict)

	// A block in the opposite direction is its own edge
	if err := repo.Block(ctx, 2, 1); err != nil {
		t.Fatalf("reverse block: %v", err)
	}
}

func TestUnblock_RestoresNothing(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	assertKind(t, repo.Unblock(ctx, 1, 2), apperr.KindValidation)

	if err := repo.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := repo.Block(ctx, 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := repo.Unblock(ctx, 1, 2); err != nil {
		t.Fatalf("unblock: %v", err)
	}

	// Unblock lifts the block but does not resurrect the follow
	blocked, err := repo.IsBlockedEither(ctx, 1, 2)
	if err != nil {
		t.Fatalf("is blocked: %v", err)
	}
	if blocked {
		t.Error("expected block to be gone after unblock")
	}
	following, err := repo.IsFollowing(ctx, 1, 2)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if following {
		t.Error("expected follow to stay removed after unblock")
	}
}

func TestBlockSet_IsSymmetric(t *testing.T) {
	repo := NewRelationRepository(openTestRepo(t))
	ctx := context.Background()

	if err := repo.Block(ctx, 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := repo.Block(ctx, 3, 1); err != nil {
		t.Fatalf("block: %v", err)
	}

	set, err := repo.BlockSet(ctx, 1)
	if err != nil {
		t.Fatalf("block set: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(set))
	}
	for _, id := range []int64{2, 3} {
		if _, ok := set[id]; !ok {
			t.Errorf("expected %d in block set", id)
		}
	}
}
