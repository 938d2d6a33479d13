package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames collide with static routes under /users.
var reservedUsernames = map[string]bool{"me": true, "subscriptions": true}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account. Email and username are unique.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if !usernamePattern.MatchString(username) {
		return nil, invalid("username", "may contain only letters, digits and @/./+/-/_")
	}
	if reservedUsernames[strings.ToLower(username)] {
		return nil, invalid("username", fmt.Sprintf("%q is reserved", username))
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Pair: "user with this email"}
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Pair: "user with this username"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Pair: "user"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Scopes(paginate(page, limit)).Order("username").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return invalid("current_password", "is incorrect")
	}
	if current == next {
		return invalid("new_password", "must differ from the current password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password_hash", string(hashed)).Error
}

// SetRole changes a user's role to models.RoleUser or models.RoleAdmin.
func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return invalid("role", fmt.Sprintf("unknown role %q", role))
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("user")
	}
	return nil
}

// Codec returns the user codec for one request.
func (s *UserService) Codec(viewer *types.Viewer) *UserCodec {
	return &UserCodec{db: s.db, users: s, viewer: viewer}
}

// UserCodec renders users for a viewer and registers new ones.
type UserCodec struct {
	db     *gorm.DB
	users  *UserService
	viewer *types.Viewer
}

var _ Codec[models.User, types.RegisterRequest, types.UserResponse] = (*UserCodec)(nil)

func (c *UserCodec) Read(ctx context.Context, user *models.User) (*types.UserResponse, error) {
	out, err := c.ReadMany(ctx, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (c *UserCodec) ReadMany(ctx context.Context, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedTo(ctx, c.db, c.viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (c *UserCodec) Write(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	return c.users.Register(ctx, req)
}

func toUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// paginate applies 1-based page numbers.
func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
