package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func errNotFound(msg string) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: msg}
}

func errConflict(msg string, err error) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: msg, Err: err}
}

func errValidation(msg string) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: msg}
}

func errInternal(msg string, err error) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: msg, Err: err}
}

func errForbidden(msg string) *utils.AppError {
	return &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: msg}
}

// AuditLogger records admin mutations. Write failures are logged, never returned.
type AuditLogger struct {
	repo repositories.AdminAuditLogRepository
}

func NewAuditLogger(repo repositories.AdminAuditLogRepository) *AuditLogger {
	return &AuditLogger{repo: repo}
}

func (a *AuditLogger) logAudit(
	ctx context.Context,
	adminID, targetID uuid.UUID,
	action models.AuditAction,
	targetType models.AuditTargetType,
	details any,
) {
	if a == nil || a.repo == nil {
		return
	}
	var raw *json.RawMessage
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			msg := json.RawMessage(b)
			raw = &msg
		}
	}
	entry := &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		Details:    raw,
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write audit log for %s %s", action, targetType)
	}
}
