package feed

import (
	"github.com/pulsesocial/pulse/internal/models"
)

// BlockSet is the symmetric block set for a viewer: users the viewer
// has blocked plus users who have blocked the viewer.
type BlockSet map[int64]struct{}

// Contains reports whether the set contains the given user
func (s BlockSet) Contains(userID int64) bool {
	_, ok := s[userID]
	return ok
}

// IDs returns the set members as a slice for query-layer exclusion
func (s BlockSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// FilterActivities removes activities that must stay invisible to a
// viewer with the given block set: the actor is blocked, or the
// activity targets a post whose author is blocked. The second check
// matters when a non-blocked user acts on a blocked author's post;
// letting it through would leak the blocked author's content.
func FilterActivities(items []*models.Activity, blocked BlockSet) []*models.Activity {
	out := make([]*models.Activity, 0, len(items))
	for _, a := range items {
		if blocked.Contains(a.ActorID) {
			continue
		}
		if a.TargetKind() == models.TargetPost && a.TargetPost != nil && blocked.Contains(a.TargetPost.AuthorID) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// WithoutDeletedTargets removes activities whose target post has been
// soft-deleted. Deletion visibility is separate from block visibility;
// callers apply both filters independently where both apply.
func WithoutDeletedTargets(items []*models.Activity) []*models.Activity {
	out := make([]*models.Activity, 0, len(items))
	for _, a := range items {
		if a.TargetKind() == models.TargetPost && a.TargetPost != nil && a.TargetPost.IsDeleted {
			continue
		}
		out = append(out, a)
	}
	return out
}

// FilterPosts removes posts authored by blocked users
func FilterPosts(posts []*models.Post, blocked BlockSet) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if blocked.Contains(p.AuthorID) {
			continue
		}
		out = append(out, p)
	}
	return out
}
