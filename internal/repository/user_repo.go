package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/goldwen/matching-service/internal/db"
)

// UserRepository provides data access methods for directory records. The
// engine treats these as read-only input; writes exist because the service
// also hosts the directory endpoints called by the main API.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetUser fetches a user by id. Returns (nil, nil) when the user does not
// exist so callers can map absence to their own domain error.
func (r *UserRepository) GetUser(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email, (nil, nil) on absence.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new directory record.
func (r *UserRepository) CreateUser(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SetPremium flips the premium flag. The flag only affects selections
// generated after the change; existing snapshots keep the quota recorded at
// generation time.
func (r *UserRepository) SetPremium(ctx context.Context, userID uint64, premium bool) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("premium", premium).Error
}

// DeleteUser removes a user and all associated engine data in one
// transaction (data-retention path).
func (r *UserRepository) DeleteUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.PersonalityResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR chosen_user_id = ?", userID, userID).Delete(&db.UserChoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&db.DailySelection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.User{}, userID).Error
	})
}

// ListCandidatePool returns the coarsely pre-filtered candidate pool for a
// requester: active users of the mapped gender, within the age band, in the
// same city, capped for performance. The authoritative eligibility check is
// matching.Eligible; this query only narrows the scan.
func (r *UserRepository) ListCandidatePool(
	ctx context.Context,
	requester db.User,
	wantGender string,
	maxAgeGap int,
	limit int,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", requester.ID).
		Where("active = ?", true).
		Where("gender = ?", wantGender).
		Where("age BETWEEN ? AND ?", requester.Age-maxAgeGap, requester.Age+maxAgeGap).
		Where("location_city = ?", requester.LocationCity).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
