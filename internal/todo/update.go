package todo

import (
	"strings"
	"time"

	"github.com/vibetodo/vibetodo/internal/item"
)

// Update carries the mutable fields of an item. Nil means "leave
// unchanged". Type and parent references are immutable and therefore
// absent here.
type Update struct {
	Title         *string
	Desc          *string
	UAT           *string
	Status        *item.Status
	ReferenceFile *string
}

// patch converts the update into a store field patch with a refreshed
// updated_at. Title is stored trimmed.
func (u Update) patch() map[string]any {
	p := map[string]any{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		p["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Desc != nil {
		p["desc"] = *u.Desc
	}
	if u.UAT != nil {
		p["uat"] = *u.UAT
	}
	if u.Status != nil {
		p["status"] = *u.Status
	}
	if u.ReferenceFile != nil {
		p["reference_file"] = *u.ReferenceFile
	}
	return p
}

// validate checks the set fields against the status set for the given
// level.
func (u Update) validate(epicLevel bool) error {
	if u.Title != nil {
		if err := item.ValidateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Status != nil {
		if epicLevel {
			return item.ValidateEpicStatus(*u.Status)
		}
		return item.ValidateItemStatus(*u.Status)
	}
	return nil
}
