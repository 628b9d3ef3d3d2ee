package models

import (
	"time"
)

// Notification is the per-user unread marker: the count of unread messages
// and the date the inbox was last checked. The count is maintained eagerly
// on every read-status change and delete, so it never goes stale.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userID" gorm:"uniqueIndex;not null"`
	UnreadCount int64     `json:"unreadCount" gorm:"not null;default:0"`
	Date        time.Time `json:"date"`
}
