// Package storage persists tutors, courses and match notifications in SQLite.
package storage

import (
	"errors"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// ErrNotFound is returned when a row with the requested id does not exist.
var ErrNotFound = errors.New("not found")

// NotificationFilter selects notifications for listing. Zero fields do not filter.
type NotificationFilter struct {
	RecipientID string
	TargetID    string
	Status      models.ActionStatus
	UnreadOnly  bool
	Limit       int
	Offset      int
}

// Stats summarises the database for the status endpoint.
type Stats struct {
	Tutors        int64 `json:"tutors"`
	Courses       int64 `json:"courses"`
	Notifications int64 `json:"notifications"`
	Unread        int64 `json:"unread"`
	DiskBytes     int64 `json:"disk_bytes"`
}
