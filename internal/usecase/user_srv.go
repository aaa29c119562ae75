package usecase

import (
	"context"
	"fmt"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/dto/response"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	DeleteUser(ctx context.Context, actor Actor, userID string) error
	ChangeRole(ctx context.Context, actor Actor, userID string, req *request.ChangeRoleRequest) (*response.UserResponse, error)
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	limit, offset := req.Limit(), req.Offset()

	users, err := us.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("count users: %w", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	us.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("total_pages", utils.CalculateTotalPages(total, limit)),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, limit, total), nil
}

func (us *userService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	id, err := parseID(userID, "user")
	if err != nil {
		return err
	}
	if id == actor.ID {
		return invalid("cannot delete your own account")
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to get user for delete", zap.Error(err), zap.String("id", userID))
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return notFound("user")
	}
	if user.Role.IsAdmin() && actor.Role != entity.RoleSuperAdmin {
		return fmt.Errorf("%w: only a super admin can delete an admin", ErrForbidden)
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("id", userID))
		return fmt.Errorf("delete user: %w", err)
	}

	if err := us.sessionRepo.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err))
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}

func (us *userService) ChangeRole(ctx context.Context, actor Actor, userID string, req *request.ChangeRoleRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	role := entity.UserRole(req.Role)
	if role.IsAdmin() && actor.Role != entity.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only a super admin can grant %s", ErrForbidden, role)
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to get user for role change", zap.Error(err), zap.String("id", userID))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	if user.Role.IsAdmin() && actor.Role != entity.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only a super admin can change an admin's role", ErrForbidden)
	}

	if err := us.userRepo.UpdateRole(ctx, id, role); err != nil {
		us.log.Error("Failed to update role", zap.Error(err), zap.String("id", userID))
		return nil, fmt.Errorf("update role: %w", err)
	}

	us.log.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("from", string(user.Role)),
		zap.String("to", string(role)),
		zap.String("by", actor.ID.String()),
	)

	user.Role = role
	resp := response.UserToResponse(user)
	return &resp, nil
}
