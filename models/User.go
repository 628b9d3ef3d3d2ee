package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"uniqueIndex;size:64"`
	Email    string `json:"email" gorm:"size:256"`
	Password string `json:"-"`
	// Per-type notification preferences, stored as JSON
	NotificationSettings datatypes.JSON `json:"notificationSettings"`
}
