package services

import (
	"context"
	"log/slog"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	AgencyAuthorizer portssvc.AgencyAuthorizerSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks whether the user holds one of the required roles in
// the agency.
func (s *BaseService) AuthorizeUser(ctx context.Context, agencyID, userID string, requiredRoles ...domain.UserAgencyRole) error {
	if s.AgencyAuthorizer == nil {
		s.LogDebug(ctx, "no agency authorizer configured, access granted by default",
			slog.String("user_id", userID),
			slog.String("agency_id", agencyID))
		return nil
	}
	_, err := s.AgencyAuthorizer.AuthorizeUserAction(ctx, agencyID, userID, requiredRoles...)
	return err
}

// anyRole is the role set for read endpoints: any active member may read.
var anyRole = []domain.UserAgencyRole{domain.RoleAdmin, domain.RoleMember, domain.RoleReadOnly}

// writerRoles is the role set for write endpoints.
var writerRoles = []domain.UserAgencyRole{domain.RoleAdmin, domain.RoleMember}
