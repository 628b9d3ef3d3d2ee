package models

import (
	"time"
)

// Message types. Stored as canonical uppercase strings so the
// case-insensitive filter stays a single UPPER() comparison.
const (
	MessageTypeSystem                   = "SYSTEM"
	MessageTypeBroadcast                = "BROADCAST"
	MessageTypeMentionNotification      = "MENTION_NOTIFICATION"
	MessageTypeValidationNotification   = "VALIDATION_NOTIFICATION"
	MessageTypeInvalidationNotification = "INVALIDATION_NOTIFICATION"
	MessageTypeProjectChatNotification  = "PROJECT_CHAT_NOTIFICATION"
	MessageTypeTeamBroadcast            = "TEAM_BROADCAST"
)

// MessageTypes lists every known message type.
var MessageTypes = []string{
	MessageTypeSystem,
	MessageTypeBroadcast,
	MessageTypeMentionNotification,
	MessageTypeValidationNotification,
	MessageTypeInvalidationNotification,
	MessageTypeProjectChatNotification,
	MessageTypeTeamBroadcast,
}

// Message is a single inbox entry. A message belongs to its recipient
// (ToUserID); the sender never gains read/delete access through the
// single-message endpoints.
type Message struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Subject string `json:"subject" gorm:"size:256"`
	Message string `json:"message" gorm:"type:text"`

	// Broadcast and system messages carry no sender
	FromUserID *uint `json:"fromUserID" gorm:"index"`
	FromUser   *User `json:"-" gorm:"foreignKey:FromUserID"`

	ToUserID uint `json:"toUserID" gorm:"not null;index"`

	MessageType string `json:"messageType" gorm:"size:40;index"`

	// Optional project/task affiliation (opaque ids owned by other subsystems)
	ProjectID *uint `json:"projectID" gorm:"index"`
	TaskID    *uint `json:"taskID" gorm:"index"`

	Read bool      `json:"read" gorm:"not null;default:false;index"`
	Date time.Time `json:"date" gorm:"autoCreateTime;index"`
}
