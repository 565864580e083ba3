package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/validation"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type profileRepository interface {
	GetProfile(ctx context.Context, uid string) (*model.UserProfile, error)
	CreateProfile(ctx context.Context, p *model.UserProfile) error
	TouchProfile(ctx context.Context, uid string) error
	UpdateProfile(ctx context.Context, uid string, patch model.ProfilePatch) error
	DisplayNameTaken(ctx context.Context, name string, exceptUID string) (bool, error)
}

type authProfileUpdater interface {
	UpdateDisplayName(ctx context.Context, uid string, name string) error
}

// Controller defines a user profile controller.
type Controller struct {
	repo        profileRepository
	authUpdater authProfileUpdater
	validate    *validation.Validator
	logger      *zap.Logger
}

// New creates a user profile controller.
func New(repo profileRepository, authUpdater authProfileUpdater, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, authUpdater: authUpdater, validate: validation.New(), logger: logger}
}

// EnsureProfile provisions the profile of a first-time user and refreshes
// updatedAt for returning users.
func (c *Controller) EnsureProfile(ctx context.Context, id auth.Identity) (*model.UserProfile, error) {
	if id.UID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	existing, err := c.repo.GetProfile(ctx, id.UID)
	if err == nil {
		if err := c.repo.TouchProfile(ctx, id.UID); err != nil {
			c.logger.Warn("Failed to refresh profile", zap.String("uid", id.UID), zap.Error(err))
		}
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	p := &model.UserProfile{
		UID:          id.UID,
		DisplayName:  c.initialDisplayName(id.DisplayName),
		Biography:    model.DefaultBiography,
		Email:        id.Email,
		Name:         id.Name,
		ProfileImage: id.Picture,
		Provider:     auth.ProviderName(id.Provider),
		Role:         model.RoleUser,
	}
	if err := c.repo.CreateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrWrite, err)
	}
	c.logger.Info("Provisioned user profile", zap.String("uid", id.UID), zap.String("provider", p.Provider))
	return p, nil
}

// initialDisplayName keeps the provider's name when it is a valid display
// name and generates one otherwise.
func (c *Controller) initialDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && c.validate.Struct(model.ProfilePatch{DisplayName: &name}) == nil {
		return name
	}
	return GenerateDisplayName()
}

// GenerateDisplayName returns a random valid display name.
func GenerateDisplayName() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Get returns the profile of uid.
func (c *Controller) Get(ctx context.Context, uid string) (*model.UserProfile, error) {
	return c.repo.GetProfile(ctx, uid)
}

// Update edits the caller's profile. Unchanged fields are dropped from the
// patch; an all-unchanged patch writes nothing. A new display name must
// not be in use by another user and is written to the Auth profile before
// the stored profile. The uniqueness check and the write are not atomic.
func (c *Controller) Update(ctx context.Context, caller auth.Identity, patch model.ProfilePatch) (*model.UserProfile, error) {
	if caller.UID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	if err := c.validate.Struct(patch); err != nil {
		return nil, err
	}
	current, err := c.repo.GetProfile(ctx, caller.UID)
	if err != nil {
		return nil, err
	}
	if patch.DisplayName != nil && *patch.DisplayName == current.DisplayName {
		patch.DisplayName = nil
	}
	if patch.Biography != nil && *patch.Biography == current.Biography {
		patch.Biography = nil
	}
	if patch.DisplayName == nil && patch.Biography == nil {
		return current, nil
	}

	if patch.DisplayName != nil {
		taken, err := c.repo.DisplayNameTaken(ctx, *patch.DisplayName, caller.UID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Invalid("displayName", "is already taken")
		}
		if err := c.authUpdater.UpdateDisplayName(ctx, caller.UID, *patch.DisplayName); err != nil {
			return nil, fmt.Errorf("%w: update auth profile: %w", apperr.ErrWrite, err)
		}
	}
	if err := c.repo.UpdateProfile(ctx, caller.UID, patch); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrWrite, err)
	}
	return c.repo.GetProfile(ctx, caller.UID)
}
