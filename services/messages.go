package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"github.com/mtalhabaig3/tasking-manager/models"
	"github.com/mtalhabaig3/tasking-manager/storage"
	"github.com/mtalhabaig3/tasking-manager/utils"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("message is not owned by requesting user")
)

// OwnedBy is the single-message authorization predicate: recipient-only.
// The sender of a message gets no access through it.
func OwnedBy(m *models.Message, userID uint) bool {
	return m.ToUserID == userID
}

// IsValidMessageType reports whether name matches a known message type,
// ignoring case.
func IsValidMessageType(name string) bool {
	return slices.Contains(models.MessageTypes, strings.ToUpper(name))
}

// ListFilters are the optional query filters of the inbox listing. Zero
// values mean "not set"; set filters compose with logical AND.
type ListFilters struct {
	FromUsername string
	ProjectID    *uint
	TaskID       *uint
	MessageType  string
	Status       string
	Page         int
	PerPage      int
}

// Each filter is an independent gorm scope so they can be tested and
// combined without nesting conditionals.

func scopeRecipient(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.to_user_id = ?", userID)
	}
}

func scopeFromUsername(username string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN users ON users.id = messages.from_user_id").
			Where("users.username = ?", username)
	}
}

func scopeProject(projectID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.project_id = ?", projectID)
	}
}

func scopeTask(taskID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.task_id = ?", taskID)
	}
}

func scopeMessageType(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("UPPER(messages.message_type) = ?", strings.ToUpper(name))
	}
}

func scopeStatus(status string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.read = ?", status == "read")
	}
}

func buildScopes(userID uint, f ListFilters) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{scopeRecipient(userID)}
	if f.FromUsername != "" {
		scopes = append(scopes, scopeFromUsername(f.FromUsername))
	}
	if f.ProjectID != nil {
		scopes = append(scopes, scopeProject(*f.ProjectID))
	}
	if f.TaskID != nil {
		scopes = append(scopes, scopeTask(*f.TaskID))
	}
	if f.MessageType != "" {
		scopes = append(scopes, scopeMessageType(f.MessageType))
	}
	if f.Status == "read" || f.Status == "unread" {
		scopes = append(scopes, scopeStatus(f.Status))
	}
	return scopes
}

// ListMessages returns one page of the user's inbox with the given filters
// applied. An empty page is a valid result, never an error.
func ListMessages(userID uint, f ListFilters) ([]models.Message, utils.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}

	// An unknown type can never match; skip the round trip
	if f.MessageType != "" && !IsValidMessageType(f.MessageType) {
		return []models.Message{}, utils.NewPagination(f.Page, f.PerPage, 0), nil
	}

	scopes := buildScopes(userID, f)

	var total int64
	if err := storage.DB.Model(&models.Message{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}

	var messages []models.Message
	err := storage.DB.Scopes(scopes...).
		Preload("FromUser").
		Order("messages.date DESC, messages.id DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&messages).Error
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return messages, utils.NewPagination(f.Page, f.PerPage, total), nil
}

// GetMessage loads a message and enforces recipient-only access.
func GetMessage(messageID, userID uint) (*models.Message, error) {
	var message models.Message
	err := storage.DB.Preload("FromUser").First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if !OwnedBy(&message, userID) {
		return nil, ErrNotMessageOwner
	}
	return &message, nil
}

// DeleteMessage removes a message under the same authorization rule as
// GetMessage and returns the deleted row for auditing. Not idempotent: a
// second delete reports ErrMessageNotFound.
func DeleteMessage(messageID, userID uint) (*models.Message, error) {
	message, err := GetMessage(messageID, userID)
	if err != nil {
		return nil, err
	}
	if err := storage.DB.Delete(&models.Message{}, messageID).Error; err != nil {
		return nil, err
	}
	refreshUnreadCount(userID)
	return message, nil
}

// DeleteMultiple removes the given messages, silently skipping ids the user
// does not own.
func DeleteMultiple(userID uint, messageIDs []uint) error {
	err := storage.DB.
		Where("to_user_id = ? AND id IN ?", userID, messageIDs).
		Delete(&models.Message{}).Error
	if err != nil {
		return err
	}
	refreshUnreadCount(userID)
	return nil
}

// DeleteAll removes all of the user's received messages, optionally
// restricted to the given message types.
func DeleteAll(userID uint, messageTypes []string) error {
	q := storage.DB.Where("to_user_id = ?", userID)
	if len(messageTypes) > 0 {
		q = q.Where("UPPER(message_type) IN ?", upperAll(messageTypes))
	}
	if err := q.Delete(&models.Message{}).Error; err != nil {
		return err
	}
	refreshUnreadCount(userID)
	return nil
}

// MarkAsReadMultiple flags the given received messages as read.
func MarkAsReadMultiple(userID uint, messageIDs []uint) error {
	err := storage.DB.Model(&models.Message{}).
		Where("to_user_id = ? AND id IN ?", userID, messageIDs).
		Update("read", true).Error
	if err != nil {
		return err
	}
	refreshUnreadCount(userID)
	return nil
}

// MarkAsReadAll flags all of the user's received messages as read,
// optionally restricted to the given message types.
func MarkAsReadAll(userID uint, messageTypes []string) error {
	q := storage.DB.Model(&models.Message{}).Where("to_user_id = ?", userID)
	if len(messageTypes) > 0 {
		q = q.Where("UPPER(message_type) IN ?", upperAll(messageTypes))
	}
	if err := q.Update("read", true).Error; err != nil {
		return err
	}
	refreshUnreadCount(userID)
	return nil
}

// CountUnread reports the live unread count and whether messages newer than
// the marker's last-checked date exist. Without a marker row, any unread
// message counts as new.
func CountUnread(userID uint) (bool, int64, error) {
	var unread int64
	err := storage.DB.Model(&models.Message{}).
		Where("to_user_id = ? AND read = ?", userID, false).
		Count(&unread).Error
	if err != nil {
		return false, 0, err
	}

	var marker models.Notification
	err = storage.DB.Where("user_id = ?", userID).First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return unread > 0, unread, nil
	}
	if err != nil {
		return false, 0, err
	}

	var newCount int64
	err = storage.DB.Model(&models.Message{}).
		Where("to_user_id = ? AND read = ? AND date > ?", userID, false, marker.Date).
		Count(&newCount).Error
	if err != nil {
		return false, 0, err
	}
	return newCount > 0, unread, nil
}

// AcknowledgeUnread refreshes the marker's last-checked date and returns
// the marker's unread count. A missing marker is created from a live count.
func AcknowledgeUnread(userID uint) (int64, error) {
	var marker models.Notification
	err := storage.DB.Where("user_id = ?", userID).First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var unread int64
		countErr := storage.DB.Model(&models.Message{}).
			Where("to_user_id = ? AND read = ?", userID, false).
			Count(&unread).Error
		if countErr != nil {
			return 0, countErr
		}
		marker = models.Notification{UserID: userID, UnreadCount: unread, Date: time.Now()}
		if createErr := storage.DB.Create(&marker).Error; createErr != nil {
			return 0, createErr
		}
		return unread, nil
	}
	if err != nil {
		return 0, err
	}

	count := marker.UnreadCount
	if err := storage.DB.Model(&marker).Update("date", time.Now()).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// refreshUnreadCount re-derives the stored marker count after a mutation.
// Markers are only created by AcknowledgeUnread; absent markers stay absent.
func refreshUnreadCount(userID uint) {
	var marker models.Notification
	if err := storage.DB.Where("user_id = ?", userID).First(&marker).Error; err != nil {
		return
	}
	var unread int64
	if err := storage.DB.Model(&models.Message{}).
		Where("to_user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return
	}
	storage.DB.Model(&marker).Update("unread_count", unread)
}

func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToUpper(v))
	}
	return out
}
