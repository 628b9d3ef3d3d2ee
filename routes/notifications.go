package routes

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"

	"github.com/mtalhabaig3/tasking-manager/models"
	"github.com/mtalhabaig3/tasking-manager/services"
	"github.com/mtalhabaig3/tasking-manager/storage"
	"github.com/mtalhabaig3/tasking-manager/utils"
)

type messageResponse struct {
	ID           uint   `json:"id"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	FromUsername string `json:"fromUsername"`
	MessageType  string `json:"messageType"`
	ProjectID    *uint  `json:"projectId"`
	TaskID       *uint  `json:"taskId"`
	Read         bool   `json:"read"`
	SentDate     string `json:"sentDate"`
}

func toMessageResponse(m *models.Message) messageResponse {
	resp := messageResponse{
		ID:          m.ID,
		Subject:     m.Subject,
		Message:     m.Message,
		MessageType: m.MessageType,
		ProjectID:   m.ProjectID,
		TaskID:      m.TaskID,
		Read:        m.Read,
		SentDate:    m.Date.Format(time.RFC3339),
	}
	if m.FromUser != nil {
		resp.FromUsername = m.FromUser.Username
	}
	return resp
}

func toMessageResponses(messages []models.Message) []messageResponse {
	responses := make([]messageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}
	return responses
}

// GetNotification: GET /api/v2/notifications/{id}
func GetNotification(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateMessagesNotFound(ctx)
		return
	}

	message, err := services.GetMessage(uint(id), utils.CurrentUserID(ctx))
	if err != nil {
		writeMessageError(ctx, err)
		return
	}

	ctx.JSON(toMessageResponse(message))
}

// DeleteNotification: DELETE /api/v2/notifications/{id}
func DeleteNotification(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateMessagesNotFound(ctx)
		return
	}

	userID := utils.CurrentUserID(ctx)
	message, err := services.DeleteMessage(uint(id), userID)
	if err != nil {
		writeMessageError(ctx, err)
		return
	}

	utils.Audit(ctx, "message.delete", "message", message.ID, message)
	ctx.JSON(iris.Map{"Success": "Message deleted"})
}

// ListNotifications: GET /api/v2/notifications/?from=&project=&taskId=&messageType=&status=&page=&perPage=
func ListNotifications(ctx iris.Context) {
	filters := services.ListFilters{
		FromUsername: ctx.URLParamDefault("from", ""),
		MessageType:  ctx.URLParamDefault("messageType", ""),
		Status:       ctx.URLParamDefault("status", ""),
		Page:         ctx.URLParamIntDefault("page", 1),
		PerPage:      ctx.URLParamIntDefault("perPage", 10),
	}

	projectID, ok := readOptionalUintParam(ctx, "project")
	if !ok {
		return
	}
	filters.ProjectID = projectID

	taskID, ok := readOptionalUintParam(ctx, "taskId")
	if !ok {
		return
	}
	filters.TaskID = taskID

	messages, pagination, err := services.ListMessages(utils.CurrentUserID(ctx), filters)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"userMessages": toMessageResponses(messages),
		"pagination":   pagination,
	})
}

// readOptionalUintParam parses an optional numeric query parameter. A second
// return of false means the response has already been written.
func readOptionalUintParam(ctx iris.Context, name string) (*uint, bool) {
	raw := ctx.URLParamDefault(name, "")
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid value for "+name, "BadRequest", ctx)
		return nil, false
	}
	value := uint(parsed)
	return &value, true
}

// CountUnreadNotifications: GET /api/v2/notifications/queries/own/count-unread
func CountUnreadNotifications(ctx iris.Context) {
	newMessages, unread, err := services.CountUnread(utils.CurrentUserID(ctx))
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"newMessages": newMessages, "unread": unread})
}

// PostUnreadNotifications: POST /api/v2/notifications/queries/own/post-unread
// Responds with the bare unread count.
func PostUnreadNotifications(ctx iris.Context) {
	count, err := services.AcknowledgeUnread(utils.CurrentUserID(ctx))
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(count)
}

type MessageIDsInput struct {
	MessageIDs []uint `json:"messageIds" validate:"required,min=1"`
}

// DeleteMultipleNotifications: DELETE /api/v2/notifications/delete-multiple
func DeleteMultipleNotifications(ctx iris.Context) {
	var input MessageIDsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userID := utils.CurrentUserID(ctx)
	if err := services.DeleteMultiple(userID, input.MessageIDs); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "message.delete_multiple", "message", 0, input.MessageIDs)
	ctx.JSON(iris.Map{"Success": "Messages deleted"})
}

// DeleteAllNotifications: DELETE /api/v2/notifications/delete-all?messageType=a,b
func DeleteAllNotifications(ctx iris.Context) {
	types := splitTypesParam(ctx)
	userID := utils.CurrentUserID(ctx)
	if err := services.DeleteAll(userID, types); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "message.delete_all", "message", 0, types)
	ctx.JSON(iris.Map{"Success": "Messages deleted"})
}

// MarkAllNotificationsRead: POST /api/v2/notifications/mark-as-read-all?messageType=a,b
func MarkAllNotificationsRead(ctx iris.Context) {
	types := splitTypesParam(ctx)
	if err := services.MarkAsReadAll(utils.CurrentUserID(ctx), types); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"Success": "Messages marked as read"})
}

// MarkMultipleNotificationsRead: POST /api/v2/notifications/mark-as-read-multiple
func MarkMultipleNotificationsRead(ctx iris.Context) {
	var input MessageIDsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := services.MarkAsReadMultiple(utils.CurrentUserID(ctx), input.MessageIDs); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"Success": "Messages marked as read"})
}

func splitTypesParam(ctx iris.Context) []string {
	raw := ctx.URLParamDefault("messageType", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, p)
		}
	}
	return types
}

// NotificationSettings are the user's per-category delivery preferences.
type NotificationSettings struct {
	Mentions       bool `json:"mentions"`
	ProjectUpdates bool `json:"projectUpdates"`
	TeamBroadcasts bool `json:"teamBroadcasts"`
	SystemMessages bool `json:"systemMessages"`
}

func defaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Mentions:       true,
		ProjectUpdates: true,
		TeamBroadcasts: true,
		SystemMessages: true,
	}
}

// GetUserNotificationSettings: GET /api/v2/notifications/settings
func GetUserNotificationSettings(ctx iris.Context) {
	var user models.User
	if err := storage.DB.First(&user, utils.CurrentUserID(ctx)).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	settings := defaultNotificationSettings()
	if user.NotificationSettings != nil {
		if err := json.Unmarshal(user.NotificationSettings, &settings); err != nil {
			settings = defaultNotificationSettings()
		}
	}
	ctx.JSON(settings)
}

// UpdateUserNotificationSettings: PUT /api/v2/notifications/settings
func UpdateUserNotificationSettings(ctx iris.Context) {
	var settings NotificationSettings
	if err := ctx.ReadJSON(&settings); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	err = storage.DB.Model(&models.User{}).
		Where("id = ?", utils.CurrentUserID(ctx)).
		Update("notification_settings", datatypes.JSON(payload)).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(settings)
}

func writeMessageError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMessageNotFound):
		utils.CreateMessagesNotFound(ctx)
	case errors.Is(err, services.ErrNotMessageOwner):
		utils.CreateAccessOtherUserMessage(ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
