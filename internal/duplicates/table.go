package duplicates

import "github.com/AATruttse/fundoubler/pkg/models"

// Table buckets records by equality key
type Table struct {
	criteria models.Criteria
	buckets  map[models.Key][]*models.FileRecord
	order    []models.Key
}

// NewTable creates an empty grouping table for the given criteria
func NewTable(c models.Criteria) *Table {
	return &Table{
		criteria: c,
		buckets:  make(map[models.Key][]*models.FileRecord),
	}
}

// Add appends the record to the bucket of its key
func (t *Table) Add(rec *models.FileRecord) {
	key := KeyFor(rec, t.criteria)
	if _, ok := t.buckets[key]; !ok {
		t.order = append(t.order, key)
	}
	t.buckets[key] = append(t.buckets[key], rec)
}

// Len returns the number of distinct keys seen so far
func (t *Table) Len() int {
	return len(t.order)
}

// Groups returns every bucket with at least two members, in first-seen
// order
func (t *Table) Groups() []*models.Group {
	var groups []*models.Group
	for _, key := range t.order {
		files := t.buckets[key]
		if len(files) < 2 {
			continue
		}
		groups = append(groups, &models.Group{Key: key, Files: files})
	}
	return groups
}
