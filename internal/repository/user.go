package repository

import (
	"context"
	"errors"

	"librarium/internal/models"
	"librarium/internal/observability"

	"gorm.io/gorm"
)

// UserOrder selects the sort key for user listings.
type UserOrder string

const (
	UserOrderDate          UserOrder = "date"
	UserOrderSubmissions   UserOrder = "submissions"
	UserOrderLikesGiven    UserOrder = "likes_given"
	UserOrderLikesReceived UserOrder = "likes_received"
)

// ParseUserOrder validates a caller-supplied user order value.
func ParseUserOrder(s string) (UserOrder, error) {
	switch UserOrder(s) {
	case UserOrderDate, UserOrderSubmissions, UserOrderLikesGiven, UserOrderLikesReceived:
		return UserOrder(s), nil
	default:
		return "", models.NewInvalidArgumentError("Invalid order")
	}
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByTokenHash(ctx context.Context, hash string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	UpsertLogin(ctx context.Context, externalID, username, tokenHash string) error
	SetBanned(ctx context.Context, id uint, banned bool) error
	SetModerator(ctx context.Context, id uint, moderator bool) error
	ListBanned(ctx context.Context) ([]models.BanEntry, error)
	ListWithStats(ctx context.Context, project string, order UserOrder, descending bool, limit, offset int) ([]models.LiteUser, error)
	GetWithStats(ctx context.Context, project string, userID uint) (*models.LiteUser, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("token = ?", hash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id))
}

// UpsertLogin creates the account on first login and refreshes username and
// token afterwards. Tokens are unique: any other account holding the same
// token hash loses it first.
func (r *userRepository) UpsertLogin(ctx context.Context, externalID, username, tokenHash string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("token = ? AND external_id <> ?", tokenHash, externalID).
			Update("token", "").Error; err != nil {
			return err
		}

		var user models.User
		err := tx.Where("external_id = ?", externalID).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.User{
				ExternalID: externalID,
				Username:   username,
				Token:      tokenHash,
			}).Error
		case err != nil:
			return err
		default:
			return tx.Model(&user).Updates(map[string]any{
				"username": username,
				"token":    tokenHash,
			}).Error
		}
	})
	if err != nil {
		r.log.LogError(ctx, err, "upsert_login")
		return err
	}
	r.log.LogWrite(ctx, "upsert_login", map[string]interface{}{"external_id": externalID})
	return nil
}

func (r *userRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("banned", banned).Error
}

func (r *userRepository) SetModerator(ctx context.Context, id uint, moderator bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("moderator", moderator).Error
}

func (r *userRepository) ListBanned(ctx context.Context) ([]models.BanEntry, error) {
	var entries []models.BanEntry
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("id AS user_id, username").
		Where("banned").
		Scan(&entries).Error
	return entries, err
}

func (r *userRepository) ListWithStats(ctx context.Context, project string, order UserOrder, descending bool, limit, offset int) ([]models.LiteUser, error) {
	return r.listWithStats(ctx, project, order, descending, limit, offset, 0)
}

func (r *userRepository) GetWithStats(ctx context.Context, project string, userID uint) (*models.LiteUser, error) {
	users, err := r.listWithStats(ctx, project, UserOrderDate, false, 1, 0, userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &users[0], nil
}

func (r *userRepository) listWithStats(ctx context.Context, project string, order UserOrder, descending bool, limit, offset int, userID uint) ([]models.LiteUser, error) {
	var key string
	switch order {
	case UserOrderSubmissions:
		key = "submission_count"
	case UserOrderLikesGiven:
		key = "likes_given"
	case UserOrderLikesReceived:
		key = "likes_received"
	default:
		key = "users.id"
	}
	if descending {
		key += " DESC"
	}

	tx := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.username, users.moderator, "+
			"COALESCE(user_stats.submission_count, 0) AS submission_count, "+
			"COALESCE(user_stats.likes_given, 0) AS likes_given, "+
			"COALESCE(user_stats.likes_received, 0) AS likes_received").
		Joins("LEFT JOIN user_stats ON user_stats.user_id = users.id AND user_stats.project = ?", project).
		Where("NOT users.banned").
		Order(key).
		Limit(limit).
		Offset(offset)
	if userID != 0 {
		tx = tx.Where("users.id = ?", userID)
	}

	var users []models.LiteUser
	if err := tx.Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
