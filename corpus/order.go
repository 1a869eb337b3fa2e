package corpus

import (
	"sort"

	"github.com/hupe1980/hfabric/model"
)

// Less reports whether a precedes b in corpus order: collection, then book
// and number numerically, then identifier.
func Less(a, b *model.Record) bool {
	if a.Collection != b.Collection {
		return a.Collection < b.Collection
	}
	if a.Book != b.Book {
		return a.Book < b.Book
	}
	if a.Number != b.Number {
		return a.Number < b.Number
	}
	return a.ID < b.ID
}

// Sort sorts records into corpus order.
func Sort(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool { return Less(&records[i], &records[j]) })
}

// Layout maps global ordinals to collections.
type Layout struct {
	names []string
	bases []model.Ordinal
	total int
}

// NewLayout builds a layout from collections in corpus order.
func NewLayout(names []string, rows []int) *Layout {
	l := &Layout{names: names, bases: make([]model.Ordinal, len(names))}
	for i, n := range rows {
		l.bases[i] = model.Ordinal(l.total)
		l.total += n
	}
	return l
}

// Len returns the total number of rows.
func (l *Layout) Len() int { return l.total }

// Collections returns the collection names in corpus order.
func (l *Layout) Collections() []string { return l.names }

// Base returns the ordinal of the first row of a collection.
func (l *Layout) Base(name string) (model.Ordinal, bool) {
	i := sort.SearchStrings(l.names, name)
	if i == len(l.names) || l.names[i] != name {
		return 0, false
	}
	return l.bases[i], true
}

// Locate returns the collection holding ord.
func (l *Layout) Locate(ord model.Ordinal) (string, bool) {
	if int(ord) >= l.total {
		return "", false
	}
	i := sort.Search(len(l.bases), func(i int) bool { return l.bases[i] > ord }) - 1
	return l.names[i], true
}
