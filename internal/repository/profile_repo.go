package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/goldwen/matching-service/internal/db"
	"github.com/goldwen/matching-service/internal/matching"
)

// ProfileRepository provides data access for personality questionnaires.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetVector returns the user's personality vector ordered by question id,
// or nil when the questionnaire is absent or incomplete. A partial set of
// answers never counts as a profile.
func (r *ProfileRepository) GetVector(ctx context.Context, userID uint64) ([]int, error) {
	var responses []db.PersonalityResponse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("question_id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	if len(responses) != matching.VectorLength {
		return nil, nil
	}

	vector := make([]int, 0, matching.VectorLength)
	for _, resp := range responses {
		vector = append(vector, resp.Value)
	}
	return vector, nil
}

// ListResponses returns the raw questionnaire rows ordered by question id.
func (r *ProfileRepository) ListResponses(ctx context.Context, userID uint64) ([]db.PersonalityResponse, error) {
	var responses []db.PersonalityResponse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("question_id ASC").
		Find(&responses).Error
	return responses, err
}

// HasProfile reports whether the user has a complete questionnaire.
func (r *ProfileRepository) HasProfile(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.PersonalityResponse{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == matching.VectorLength, nil
}

// ProfileUserIDs returns, out of the given ids, those with a complete
// questionnaire. Used to check a whole candidate pool in one query.
func (r *ProfileRepository) ProfileUserIDs(ctx context.Context, userIDs []uint64) (map[uint64]struct{}, error) {
	complete := make(map[uint64]struct{}, len(userIDs))
	if len(userIDs) == 0 {
		return complete, nil
	}

	var rows []struct {
		UserID uint64
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.PersonalityResponse{}).
		Select("user_id, COUNT(*) AS n").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.N == int64(matching.VectorLength) {
			complete[row.UserID] = struct{}{}
		}
	}
	return complete, nil
}

// ReplaceResponses swaps the user's questionnaire wholesale inside a
// transaction. The profile is immutable in place: resubmission overwrites
// the full set, never individual answers.
func (r *ProfileRepository) ReplaceResponses(ctx context.Context, userID uint64, responses []db.PersonalityResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.PersonalityResponse{}).Error; err != nil {
			return err
		}
		return tx.Create(&responses).Error
	})
}
