package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/goldwen/matching-service/internal/db"
	"github.com/goldwen/matching-service/internal/utils/pagination"
)

// ChoiceRepository provides data access methods for the UserChoice model.
type ChoiceRepository struct {
	db *gorm.DB
}

// NewChoiceRepository creates a new repository bound to the given DB connection.
func NewChoiceRepository(database *gorm.DB) *ChoiceRepository {
	return &ChoiceRepository{db: database}
}

// CreateChoice inserts a new choice record. The unique index on
// (user_id, chosen_user_id) rejects a duplicate directed pair.
func (r *ChoiceRepository) CreateChoice(ctx context.Context, choice *db.UserChoice) error {
	return r.db.WithContext(ctx).Create(choice).Error
}

// CountChoicesOn counts committed choices for (user, date). Backs the quota
// check.
func (r *ChoiceRepository) CountChoicesOn(ctx context.Context, userID uint64, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.UserChoice{}).
		Where("user_id = ? AND choice_date = ?", userID, date).
		Count(&count).Error
	return count, err
}

// HasChosen reports whether user has ever chosen chosenUser (any date).
func (r *ChoiceRepository) HasChosen(ctx context.Context, userID, chosenUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.UserChoice{}).
		Where("user_id = ? AND chosen_user_id = ?", userID, chosenUserID).
		Count(&count).Error
	return count > 0, err
}

// FindReciprocal returns the reverse-direction choice (chosenUser chose
// user) from any date, or nil when none exists. Used for mutual-match
// detection.
func (r *ChoiceRepository) FindReciprocal(ctx context.Context, userID, chosenUserID uint64) (*db.UserChoice, error) {
	var choice db.UserChoice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chosen_user_id = ?", chosenUserID, userID).
		First(&choice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &choice, nil
}

// MarkMatched sets is_match on both records of a mutual pair.
func (r *ChoiceRepository) MarkMatched(ctx context.Context, choiceIDs ...uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.UserChoice{}).
		Where("id IN ?", choiceIDs).
		Update("is_match", true).Error
}

// ChosenUserIDs returns every user the given user has ever chosen. Feeds
// the ever-chosen half of the exclusion set.
func (r *ChoiceRepository) ChosenUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.UserChoice{}).
		Where("user_id = ?", userID).
		Pluck("chosen_user_id", &ids).Error
	return ids, err
}

// ListChoices returns the user's choice history, most recent first, with
// cursor-based pagination.
func (r *ChoiceRepository) ListChoices(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.UserChoice, *string, error) {
	var choices []db.UserChoice

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ChoiceID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ChoiceID,
		)
	}

	if err := query.Find(&choices).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(choices) > limit {
		last := choices[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ChoiceID:    last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		choices = choices[:limit]
	}

	return choices, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
