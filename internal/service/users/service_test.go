package users_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/goldwen/matching-service/internal/app"
	"github.com/goldwen/matching-service/internal/config"
	"github.com/goldwen/matching-service/internal/db"
	svcErr "github.com/goldwen/matching-service/internal/errors"
	userssvc "github.com/goldwen/matching-service/internal/service/users"
)

func setupService(t *testing.T) (*userssvc.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(config.New(), dbase, nil, logger) // the users service never touches Redis
	return userssvc.NewUsersService(appCtx), dbase
}

func validCreateRequest() userssvc.CreateUserRequest {
	return userssvc.CreateUserRequest{
		Email:        "alice@test.com",
		FirstName:    "Alice",
		Age:          29,
		Gender:       "female",
		LocationCity: "Paris",
	}
}

func answersFor(vector []int) []userssvc.QuestionnaireAnswer {
	answers := make([]userssvc.QuestionnaireAnswer, 0, len(vector))
	for q, v := range vector {
		answers = append(answers, userssvc.QuestionnaireAnswer{QuestionID: q + 1, Value: v})
	}
	return answers
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "alice@test.com", resp.Email)
	assert.True(t, resp.Active)
	assert.False(t, resp.Premium)

	got, err := svc.GetUser(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	req := validCreateRequest()
	req.Email = "  Alice@Test.COM "

	resp, err := svc.CreateUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", resp.Email)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	cases := map[string]func(*userssvc.CreateUserRequest){
		"missing email": func(r *userssvc.CreateUserRequest) { r.Email = "" },
		"bad email":     func(r *userssvc.CreateUserRequest) { r.Email = "not-an-email" },
		"underage":      func(r *userssvc.CreateUserRequest) { r.Age = 17 },
		"missing city":  func(r *userssvc.CreateUserRequest) { r.LocationCity = "  " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreateRequest()
			mutate(&req)

			_, err := svc.CreateUser(ctx, req)
			require.Error(t, err)
			var validation *svcErr.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	// Case and whitespace variants collide with the normalized original.
	req := validCreateRequest()
	req.Email = "ALICE@test.com"
	_, err = svc.CreateUser(ctx, req)
	require.Error(t, err)
	var validation *svcErr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.GetUser(ctx, 999)
	require.Error(t, err)
	var notFound *svcErr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSubmitQuestionnaire(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	responses, err := svc.SubmitQuestionnaire(ctx, user.ID, answersFor([]int{4, 3, 5, 2, 4, 3, 5, 1, 4, 3}))
	require.NoError(t, err)
	require.Len(t, responses, 10)
	for i, response := range responses {
		assert.Equal(t, i+1, response.QuestionID)
	}

	got, err := svc.GetQuestionnaire(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, responses, got)
}

func TestSubmitQuestionnaireReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	user, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.SubmitQuestionnaire(ctx, user.ID, answersFor([]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}))
	require.NoError(t, err)

	updated, err := svc.SubmitQuestionnaire(ctx, user.ID, answersFor([]int{5, 5, 5, 5, 5, 5, 5, 5, 5, 5}))
	require.NoError(t, err)
	for _, response := range updated {
		assert.Equal(t, 5, response.Value)
	}

	// Resubmission leaves exactly one row per question.
	var count int64
	require.NoError(t, dbase.Model(&db.PersonalityResponse{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(10), count)
}

func TestSubmitQuestionnaireValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	short := answersFor([]int{1, 2, 3})

	tooHigh := answersFor([]int{4, 3, 5, 2, 4, 3, 5, 1, 4, 3})
	tooHigh[0].Value = 6

	badID := answersFor([]int{4, 3, 5, 2, 4, 3, 5, 1, 4, 3})
	badID[9].QuestionID = 11

	duplicate := answersFor([]int{4, 3, 5, 2, 4, 3, 5, 1, 4, 3})
	duplicate[9].QuestionID = 1

	for name, answers := range map[string][]userssvc.QuestionnaireAnswer{
		"wrong count":              short,
		"value out of range":       tooHigh,
		"question id out of range": badID,
		"duplicate question id":    duplicate,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SubmitQuestionnaire(ctx, user.ID, answers)
			require.Error(t, err)
			var validation *svcErr.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestSetPremium(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	require.False(t, user.Premium)

	upgraded, err := svc.SetPremium(ctx, user.ID, true)
	require.NoError(t, err)
	assert.True(t, upgraded.Premium)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Premium)

	downgraded, err := svc.SetPremium(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, downgraded.Premium)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	user, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.SubmitQuestionnaire(ctx, user.ID, answersFor([]int{4, 3, 5, 2, 4, 3, 5, 1, 4, 3}))
	require.NoError(t, err)

	other := validCreateRequest()
	other.Email = "bob@test.com"
	bob, err := svc.CreateUser(ctx, other)
	require.NoError(t, err)

	// Engine data referencing the user in either direction.
	require.NoError(t, dbase.Create(&db.UserChoice{UserID: user.ID, ChosenUserID: bob.ID, ChoiceDate: "2024-05-01"}).Error)
	require.NoError(t, dbase.Create(&db.UserChoice{UserID: bob.ID, ChosenUserID: user.ID, ChoiceDate: "2024-05-02"}).Error)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.GetUser(ctx, user.ID)
	var notFound *svcErr.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	var responses, choices int64
	require.NoError(t, dbase.Model(&db.PersonalityResponse{}).Where("user_id = ?", user.ID).Count(&responses).Error)
	assert.Zero(t, responses)
	require.NoError(t, dbase.Model(&db.UserChoice{}).
		Where("user_id = ? OR chosen_user_id = ?", user.ID, user.ID).Count(&choices).Error)
	assert.Zero(t, choices)
}

func TestDeleteUserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	err := svc.DeleteUser(ctx, 999)
	require.Error(t, err)
	var notFound *svcErr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
