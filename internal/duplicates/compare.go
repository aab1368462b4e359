package duplicates

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/AATruttse/fundoubler/pkg/models"
)

// Comparator orders groups and group members by an ordered list of sort
// keys. The first field that differs decides; all-equal compares as 0.
type Comparator struct {
	keys []models.SortKey
}

// NewComparator creates a comparator for the given sort keys
func NewComparator(keys []models.SortKey) *Comparator {
	return &Comparator{keys: keys}
}

// CompareKeys orders two groups by their equality keys. Fields that are
// not part of the key are absent on both sides and compare equal.
func (c *Comparator) CompareKeys(a, b models.Key) int {
	for _, sk := range c.keys {
		var r int
		switch sk.Field {
		case models.SortByName:
			r = compareOptional(a.Name, b.Name)
		case models.SortBySize:
			r = compareOptional(a.Size, b.Size)
		case models.SortByCreated:
			r = compareOptional(a.Created, b.Created)
		case models.SortByModified:
			r = compareOptional(a.Modified, b.Modified)
		}
		if r != 0 {
			return direct(r, sk.Descending)
		}
	}
	return 0
}

// CompareFiles orders two members of a group. "name" compares full paths
// since members of a name-keyed group share their base name.
func (c *Comparator) CompareFiles(a, b *models.FileRecord) int {
	for _, sk := range c.keys {
		var r int
		switch sk.Field {
		case models.SortByName:
			r = strings.Compare(a.Path, b.Path)
		case models.SortBySize:
			r = compareOptional(a.Size, b.Size)
		case models.SortByCreated:
			r = compareTime(a.Created, b.Created)
		case models.SortByModified:
			r = compareTime(a.Modified, b.Modified)
		}
		if r != 0 {
			return direct(r, sk.Descending)
		}
	}
	return 0
}

// Sort orders the groups by key and the members of each group
// independently. Ties keep their discovery order.
func (c *Comparator) Sort(groups []*models.Group) {
	for _, g := range groups {
		slices.SortStableFunc(g.Files, c.CompareFiles)
	}
	slices.SortStableFunc(groups, func(a, b *models.Group) int {
		return c.CompareKeys(a.Key, b.Key)
	})
}

// Truncate keeps the first n groups; n <= 0 keeps everything
func Truncate(groups []*models.Group, n int) []*models.Group {
	if n > 0 && len(groups) > n {
		return groups[:n]
	}
	return groups
}

// compareOptional orders absent before present, then by value
func compareOptional[T cmp.Ordered](a, b models.Optional[T]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(av, bv)
}

func compareTime(a, b models.Optional[time.Time]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return av.Compare(bv)
}

// direct applies the sort direction; descending reverses the whole field
// comparison, absent values included
func direct(r int, descending bool) int {
	if descending {
		return -r
	}
	return r
}
