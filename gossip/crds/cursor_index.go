package crds

import "github.com/petar/GoLLRB/llrb"

// cursorIndex is an ordered map from insertion cursor to primary index,
// backing `entries`, `votes`, `epoch_slots` and `duplicate_shreds`. It is
// the same LLRB tree turbo/stages/headerdownload uses for its
// difficulty-ordered `tipLimiter`, keyed here by cursor instead of cumulative
// difficulty.
type cursorIndex struct {
	tree *llrb.LLRB
}

type cursorItem struct {
	cursor uint64
	index  uint32
}

func (a cursorItem) Less(than llrb.Item) bool {
	return a.cursor < than.(cursorItem).cursor
}

func newCursorIndex() *cursorIndex {
	return &cursorIndex{tree: llrb.New()}
}

func (c *cursorIndex) insert(cursor uint64, index uint32) {
	c.tree.ReplaceOrInsert(cursorItem{cursor: cursor, index: index})
}

// remove deletes the mapping at cursor. Removing an absent cursor is a
// programming error.
func (c *cursorIndex) remove(cursor uint64) {
	if c.tree.Delete(cursorItem{cursor: cursor}) == nil {
		assertInvariant(false, "cursor index missing expected key %d", cursor)
	}
}

func (c *cursorIndex) len() int { return c.tree.Len() }

// scanFrom visits, in ascending cursor order, every entry with cursor >=
// from, up to limit entries, calling visit(index) for each. It returns the
// cursor one past the last entry visited — the resume point for the next
// call, so repeated calls deliver every record exactly once even though
// cursors are sparse within any one category (see DESIGN.md).
func (c *cursorIndex) scanFrom(from uint64, limit int, visit func(index uint32)) (produced int, next uint64) {
	next = from
	c.tree.AscendGreaterOrEqual(cursorItem{cursor: from}, func(i llrb.Item) bool {
		if produced >= limit {
			return false
		}
		item := i.(cursorItem)
		visit(item.index)
		produced++
		next = item.cursor + 1
		return true
	})
	return produced, next
}
