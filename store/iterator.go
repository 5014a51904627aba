package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree snapshots all btree items in [start, end) in ascending
// order. Iterators must not observe writes made after their creation.
func ascendBtree(bt *btree.BTree, start, end []byte) []keyer {
	var items []keyer
	collect := func(i btree.Item) bool {
		items = append(items, i.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// descendBtree snapshots all btree items in [start, end) in descending
// order.
func descendBtree(bt *btree.BTree, start, end []byte) []keyer {
	items := ascendBtree(bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// mergedIterator combines the cached items with the iterator of the
// store underneath, hiding deleted entries and letting cached values
// shadow the parent ones.
type mergedIterator struct {
	items   []keyer
	idx     int
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergedIterator)(nil)

func newMergedIterator(items []keyer, parent Iterator, reverse bool) *mergedIterator {
	it := &mergedIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
	it.skipDeleted()
	return it
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergedIterator) Valid() bool {
	return i.firstKey() != none
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *mergedIterator) Next() {
	switch i.firstKey() {
	case us:
		i.idx++
	case both:
		i.idx++
		i.parent.Next()
	case parent:
		i.parent.Next()
	default:
		panic("advanced past the end")
	}
	i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergedIterator) Key() []byte {
	switch i.firstKey() {
	case us, both:
		return i.items[i.idx].Key()
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *mergedIterator) Value() []byte {
	switch i.firstKey() {
	case us, both:
		return i.items[i.idx].(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *mergedIterator) Close() {
	i.parent.Close()
	i.items = nil
	i.idx = 0
}

// skipDeleted fast forwards over all deleted cache entries, together
// with the parent entries they hide.
func (i *mergedIterator) skipDeleted() {
	for {
		src := i.firstKey()
		if src != us && src != both {
			return
		}
		if _, ok := i.items[i.idx].(deletedItem); !ok {
			return
		}
		i.idx++
		if src == both {
			i.parent.Next()
		}
	}
}

// firstKey selects the iterator that must be read first, if any
func (i *mergedIterator) firstKey() source {
	usValid := i.idx < len(i.items)
	parValid := i.parent != nil && i.parent.Valid()
	switch {
	case !usValid && !parValid:
		return none
	case !parValid:
		return us
	case !usValid:
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.items[i.idx].Key())
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
