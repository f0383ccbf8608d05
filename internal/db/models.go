package db

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the calendar-date key format used by daily selections and
// choices. "Daily" is whatever date the caller supplies, not a cron.
const DateLayout = "2006-01-02"

// User is a directory record. The matching engine treats most of it as
// read-only input; PasswordHash is opaque here and managed by the main API.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255"`
	FirstName    string `gorm:"size:64;not null"`
	Age          int    `gorm:"not null"`
	Gender       string `gorm:"size:16;not null"`
	LocationCity string `gorm:"size:64;not null"`
	// No gorm defaults here: a default tag makes gorm drop the zero value
	// from the INSERT, so a user created with Active=false would come back
	// active. Callers set both flags explicitly.
	Premium   bool      `gorm:"not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// PersonalityResponse is one answer of the 10-question questionnaire.
//
// Composite PK: (UserID, QuestionID) — one row per question per user.
// A profile is complete iff all 10 rows exist; resubmission replaces the
// whole set, never individual rows.
type PersonalityResponse struct {
	UserID     uint64    `gorm:"primaryKey"`
	QuestionID int       `gorm:"primaryKey"`
	Value      int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// SelectionCandidate is one ranked entry inside a daily selection snapshot.
type SelectionCandidate struct {
	CandidateID uint64  `json:"candidate_id"`
	Score       float64 `json:"compatibility_score"`
	Rank        int     `json:"rank"`
}

// DailySelection is the snapshot of one user's ranked candidates for one
// calendar date.
//
// Composite PK: (UserID, SelectionDate) — regeneration without force must
// return this row unchanged. The candidate list lives in a single JSON
// column so a forced replacement is one row upsert and readers never see a
// half-written list.
type DailySelection struct {
	UserID        uint64         `gorm:"primaryKey"`
	SelectionDate string         `gorm:"primaryKey;size:10"`
	Candidates    datatypes.JSON `gorm:"not null"`
	MaxChoices    int            `gorm:"not null"`
	GeneratedAt   time.Time      `gorm:"autoCreateTime"`
}

// UserChoice records one user choosing one candidate from a daily
// selection.
//
// Unique index (user_id, chosen_user_id): at most one choice per directed
// pair, ever. idx_user_choice_date backs the per-day quota count and the
// most-recent-first history listing.
type UserChoice struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `gorm:"not null;uniqueIndex:idx_user_chosen,priority:1;index:idx_user_choice_date,priority:1"`
	ChosenUserID uint64    `gorm:"not null;uniqueIndex:idx_user_chosen,priority:2"`
	ChoiceDate   string    `gorm:"size:10;not null;index:idx_user_choice_date,priority:2"`
	IsMatch      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
