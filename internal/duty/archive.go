package duty

import (
	"context"

	"github.com/emilian8/crew-call-frontend/internal/model"
)

// Archive marks a duty of the current event as archived. Archiving is
// local-only: no remote call carries the mark, and nothing the server
// sends can clear it.
//
// A duty that isn't Done yet is forced through MarkDone first; if that
// call fails, the mark is NOT set. Archiving must never happen on a
// non-Done duty without this transition.
func (c *Cache) Archive(ctx context.Context, dutyID string) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return ErrNoCurrentEvent
	}
	eventID := c.current.ID
	var status model.DutyStatus
	found := false
	for _, d := range c.current.Duties {
		if d.ID == dutyID {
			status = d.Status
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return ErrNotInLocalCache
	}

	if status != model.StatusDone {
		if err := c.MarkDone(ctx, dutyID); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.archived[eventID]
	if bucket == nil {
		bucket = make(map[string]bool)
		c.archived[eventID] = bucket
	}
	bucket[dutyID] = true
	return nil
}

// IsArchived reports whether an archive mark exists for (event, duty).
func (c *Cache) IsArchived(eventID, dutyID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.archived[eventID][dutyID]
}

// SetArchiveMark manipulates a mark directly. This is the only inverse
// the cache exposes: there is no remote unarchive, and no reload will
// ever touch the overlay.
func (c *Cache) SetArchiveMark(eventID, dutyID string, present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !present {
		delete(c.archived[eventID], dutyID)
		return
	}
	bucket := c.archived[eventID]
	if bucket == nil {
		bucket = make(map[string]bool)
		c.archived[eventID] = bucket
	}
	bucket[dutyID] = true
}
