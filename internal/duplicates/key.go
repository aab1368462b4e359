package duplicates

import (
	"time"

	"github.com/AATruttse/fundoubler/pkg/models"
)

// KeyFor projects a record onto the enabled criteria. Disabled fields stay
// absent, so records differing only in them get equal keys.
func KeyFor(rec *models.FileRecord, c models.Criteria) models.Key {
	var k models.Key

	if c.Name {
		k.Name = models.Some(rec.Name)
	}
	if c.Size {
		k.Size = rec.Size
	}
	if c.Created {
		k.Created = nanos(rec.Created)
	}
	if c.Modified {
		k.Modified = nanos(rec.Modified)
	}
	if c.MD5 {
		k.MD5 = rec.MD5
	}
	if c.SHA512 {
		k.SHA512 = rec.SHA512
	}

	return k
}

func nanos(t models.Optional[time.Time]) models.Optional[int64] {
	if v, ok := t.Get(); ok {
		return models.Some(v.UnixNano())
	}
	return models.Optional[int64]{}
}
