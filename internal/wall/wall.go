// Package wall は公開フィードを定期取得し、表示用リストへ重複なく取り込む。
package wall

import (
	"sync"

	"github.com/sharewall/backend/internal/model"
)

// Wall is the client-side display list. Items are keyed by share id and are
// never removed; a later batch that omits an item leaves it in place.
type Wall struct {
	mu    sync.Mutex
	seen  map[int64]struct{}
	items []model.Share
}

// New returns an empty Wall.
func New() *Wall {
	return &Wall{seen: make(map[int64]struct{})}
}

// Merge adds the shares not already on the wall, keeping the batch's
// newest-first order, and places them ahead of the existing items.
// It returns only the newly added shares.
func (w *Wall) Merge(batch []model.Share) []model.Share {
	w.mu.Lock()
	defer w.mu.Unlock()

	var added []model.Share
	for _, s := range batch {
		if _, ok := w.seen[s.ID]; ok {
			continue
		}
		w.seen[s.ID] = struct{}{}
		added = append(added, s)
	}
	if len(added) == 0 {
		return nil
	}

	items := make([]model.Share, 0, len(added)+len(w.items))
	items = append(items, added...)
	w.items = append(items, w.items...)
	return added
}

// Items returns a copy of the wall, newest first.
func (w *Wall) Items() []model.Share {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Share, len(w.items))
	copy(out, w.items)
	return out
}

// Len returns the number of items on the wall.
func (w *Wall) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
