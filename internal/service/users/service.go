package users

import (
	"context"
	"strings"

	"github.com/goldwen/matching-service/internal/app"
	"github.com/goldwen/matching-service/internal/db"
	svcErr "github.com/goldwen/matching-service/internal/errors"
	"github.com/goldwen/matching-service/internal/matching"
	"github.com/goldwen/matching-service/internal/repository"
)

// Service hosts the directory endpoints called by the main API: user
// records and personality questionnaires. The matching engine only ever
// reads this data.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
}

// NewUsersService creates a new users service with dependencies from AppContext.
func NewUsersService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
	}
}

// CreateUserRequest is the payload for creating a directory record.
type CreateUserRequest struct {
	Email        string `json:"email" binding:"required"`
	FirstName    string `json:"first_name" binding:"required"`
	Age          int    `json:"age" binding:"required"`
	Gender       string `json:"gender" binding:"required"`
	LocationCity string `json:"location_city" binding:"required"`
	Premium      bool   `json:"is_premium"`
}

// UserResponse is the wire shape of a directory record.
type UserResponse struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	LocationCity string `json:"location_city"`
	Premium      bool   `json:"is_premium"`
	Active       bool   `json:"is_active"`
}

// QuestionnaireAnswer is one answer in a questionnaire submission.
type QuestionnaireAnswer struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"response_value"`
}

// CreateUser inserts a new directory record after validating the payload.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Gender = strings.TrimSpace(strings.ToLower(req.Gender))

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, svcErr.Validation("a valid email is required")
	}
	if req.Age < 18 {
		return nil, svcErr.Validation("age must be at least 18")
	}
	if req.Gender == "" {
		return nil, svcErr.Validation("gender is required")
	}
	if strings.TrimSpace(req.LocationCity) == "" {
		return nil, svcErr.Validation("location_city is required")
	}

	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, svcErr.Validation("user with email %s already exists", req.Email)
	}

	user := &db.User{
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		Age:          req.Age,
		Gender:       req.Gender,
		LocationCity: strings.TrimSpace(req.LocationCity),
		Premium:      req.Premium,
		Active:       true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user created", "user", user.ID)
	return userResponse(user), nil
}

// GetUser fetches a directory record by id.
func (s *Service) GetUser(ctx context.Context, userID uint64) (*UserResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}
	return userResponse(user), nil
}

// SubmitQuestionnaire replaces the user's personality questionnaire
// wholesale. Exactly 10 answers, question ids 1..10 each exactly once,
// values in [1,5]. Required before the user can be scored or appear as a
// candidate.
func (s *Service) SubmitQuestionnaire(ctx context.Context, userID uint64, answers []QuestionnaireAnswer) ([]db.PersonalityResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}

	if len(answers) != matching.VectorLength {
		return nil, svcErr.Validation("personality questionnaire must have exactly %d responses", matching.VectorLength)
	}

	seen := make(map[int]bool, matching.VectorLength)
	responses := make([]db.PersonalityResponse, 0, matching.VectorLength)
	for _, answer := range answers {
		if answer.QuestionID < 1 || answer.QuestionID > matching.VectorLength {
			return nil, svcErr.Validation("invalid question_id: %d (must be 1..%d)", answer.QuestionID, matching.VectorLength)
		}
		if seen[answer.QuestionID] {
			return nil, svcErr.Validation("duplicate question_id: %d", answer.QuestionID)
		}
		seen[answer.QuestionID] = true

		if answer.Value < 1 || answer.Value > 5 {
			return nil, svcErr.Validation("invalid response_value: %d (must be 1..5)", answer.Value)
		}

		responses = append(responses, db.PersonalityResponse{
			UserID:     userID,
			QuestionID: answer.QuestionID,
			Value:      answer.Value,
		})
	}

	if err := s.profiles.ReplaceResponses(ctx, userID, responses); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("questionnaire submitted", "user", userID)
	return s.profiles.ListResponses(ctx, userID)
}

// GetQuestionnaire returns the user's questionnaire rows ordered by
// question id.
func (s *Service) GetQuestionnaire(ctx context.Context, userID uint64) ([]db.PersonalityResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}
	return s.profiles.ListResponses(ctx, userID)
}

// SetPremium updates the premium flag; the new quota applies to selections
// generated after the change.
func (s *Service) SetPremium(ctx context.Context, userID uint64, premium bool) (*UserResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}

	if err := s.users.SetPremium(ctx, userID, premium); err != nil {
		return nil, err
	}
	user.Premium = premium
	return userResponse(user), nil
}

// DeleteUser removes a user and all associated engine data.
func (s *Service) DeleteUser(ctx context.Context, userID uint64) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return svcErr.NotFound("user %d not found", userID)
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.appCtx.Logger.Info("user deleted", "user", userID)
	return nil
}

func userResponse(user *db.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		Age:          user.Age,
		Gender:       user.Gender,
		LocationCity: user.LocationCity,
		Premium:      user.Premium,
		Active:       user.Active,
	}
}
