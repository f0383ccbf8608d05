package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goldwen/matching-service/internal/db"
)

// SelectionRepository provides data access for daily selection snapshots.
type SelectionRepository struct {
	db *gorm.DB
}

// NewSelectionRepository creates a new repository bound to the given DB connection.
func NewSelectionRepository(database *gorm.DB) *SelectionRepository {
	return &SelectionRepository{db: database}
}

// GetSelection fetches the snapshot for (user, date) and decodes its
// candidate list. Returns (nil, nil, nil) when no snapshot exists.
func (r *SelectionRepository) GetSelection(
	ctx context.Context,
	userID uint64,
	date string,
) (*db.DailySelection, []db.SelectionCandidate, error) {
	var selection db.DailySelection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND selection_date = ?", userID, date).
		First(&selection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var candidates []db.SelectionCandidate
	if err := json.Unmarshal(selection.Candidates, &candidates); err != nil {
		return nil, nil, err
	}
	return &selection, candidates, nil
}

// SaveSelection writes the snapshot for (user, date), replacing any prior
// row. The candidate list is a single JSON column, so the replacement is
// one upsert and readers never observe a partially written list.
func (r *SelectionRepository) SaveSelection(
	ctx context.Context,
	userID uint64,
	date string,
	candidates []db.SelectionCandidate,
	maxChoices int,
	generatedAt time.Time,
) (*db.DailySelection, error) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}

	selection := db.DailySelection{
		UserID:        userID,
		SelectionDate: date,
		Candidates:    datatypes.JSON(payload),
		MaxChoices:    maxChoices,
		GeneratedAt:   generatedAt,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "selection_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"candidates", "max_choices", "generated_at"}),
		}).
		Create(&selection).Error
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

// RecentCandidateIDs returns every candidate id that appeared in the user's
// snapshots on or after sinceDate (inclusive). Feeds the recently-selected
// half of the exclusion set.
func (r *SelectionRepository) RecentCandidateIDs(
	ctx context.Context,
	userID uint64,
	sinceDate string,
) ([]uint64, error) {
	var selections []db.DailySelection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND selection_date >= ?", userID, sinceDate).
		Find(&selections).Error
	if err != nil {
		return nil, err
	}

	var ids []uint64
	for _, selection := range selections {
		var candidates []db.SelectionCandidate
		if err := json.Unmarshal(selection.Candidates, &candidates); err != nil {
			return nil, err
		}
		for _, c := range candidates {
			ids = append(ids, c.CandidateID)
		}
	}
	return ids, nil
}
