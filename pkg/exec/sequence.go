package exec

// ValueList is an ordered sequence of items produced by path evaluation.
// A single-element fast path avoids allocating the backing slice for the
// common singleton result. There is no random access; consumers iterate
// forward.
type ValueList struct {
	single *Item
	list   []*Item
}

// Append adds an item at the end of the sequence.
func (l *ValueList) Append(it *Item) {
	switch {
	case l.single == nil && l.list == nil:
		l.single = it
	case l.single != nil:
		l.list = append(make([]*Item, 0, 2), l.single, it)
		l.single = nil
	default:
		l.list = append(l.list, it)
	}
}

// appendCopy adds a detached copy of the item.
func (l *ValueList) appendCopy(it *Item) {
	l.Append(it.copy())
}

// Length returns the number of items in the sequence.
func (l *ValueList) Length() int {
	if l.single != nil {
		return 1
	}
	return len(l.list)
}

// IsEmpty reports whether the sequence has no items.
func (l *ValueList) IsEmpty() bool {
	return l.single == nil && len(l.list) == 0
}

// Head returns the first item, or nil when the sequence is empty.
func (l *ValueList) Head() *Item {
	if l.single != nil {
		return l.single
	}
	if len(l.list) > 0 {
		return l.list[0]
	}
	return nil
}

// Iterator walks a sequence in order.
type Iterator struct {
	l *ValueList
	i int
}

// Iterate returns a fresh iterator positioned before the first item.
func (l *ValueList) Iterate() *Iterator {
	return &Iterator{l: l}
}

// Next returns the next item, or nil when the sequence is exhausted.
func (i *Iterator) Next() *Item {
	if i.l.single != nil {
		if i.i > 0 {
			return nil
		}
		i.i++
		return i.l.single
	}
	if i.i >= len(i.l.list) {
		return nil
	}
	it := i.l.list[i.i]
	i.i++
	return it
}
