package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goldwen/matching-service/internal/app"
	"github.com/goldwen/matching-service/internal/cache"
	"github.com/goldwen/matching-service/internal/db"
	svcErr "github.com/goldwen/matching-service/internal/errors"
	engine "github.com/goldwen/matching-service/internal/matching"
	"github.com/goldwen/matching-service/internal/repository"
	"github.com/goldwen/matching-service/internal/utils/lock"
)

// Service implements the matching engine: daily selection generation,
// pairwise compatibility scoring, and choice/mutual-match tracking.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx     *app.AppContext
	users      *repository.UserRepository
	profiles   *repository.ProfileRepository
	selections *repository.SelectionRepository
	choices    *repository.ChoiceRepository
	scores     *cache.CompatibilityCache

	// genLocks serializes snapshot generation per (user, date), quotaLocks
	// the quota check-then-insert per (user, date), pairLocks the
	// mutual-match update per unordered pair.
	genLocks   *lock.Keyed
	quotaLocks *lock.Keyed
	pairLocks  *lock.Keyed

	// Clock supplies "today"; the engine never schedules anything itself.
	// Overridable in tests.
	Clock func() time.Time
}

// NewMatchingService creates a new matching service with dependencies from
// AppContext. The compatibility cache computes scores from questionnaire
// vectors on miss, with single-flight suppression per unordered pair.
func NewMatchingService(appCtx *app.AppContext) *Service {
	profiles := repository.NewProfileRepository(appCtx.DB)

	s := &Service{
		appCtx:     appCtx,
		users:      repository.NewUserRepository(appCtx.DB),
		profiles:   profiles,
		selections: repository.NewSelectionRepository(appCtx.DB),
		choices:    repository.NewChoiceRepository(appCtx.DB),
		genLocks:   lock.NewKeyed(),
		quotaLocks: lock.NewKeyed(),
		pairLocks:  lock.NewKeyed(),
		Clock:      time.Now,
	}

	s.scores = cache.NewCompatibilityCache(
		appCtx.RedisCache,
		appCtx.Config.Matching.ScoreCacheTTL,
		func(ctx context.Context, userA, userB uint64) (float64, error) {
			return s.computeScore(ctx, userA, userB)
		},
	)
	return s
}

// SelectionResponse is the wire shape of a daily selection snapshot.
type SelectionResponse struct {
	UserID            uint64                  `json:"user_id"`
	SelectionDate     string                  `json:"selection_date"`
	Candidates        []db.SelectionCandidate `json:"candidates"`
	MaxChoicesAllowed int                     `json:"max_choices_allowed"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

// ScoreResponse is the wire shape of a pairwise compatibility score.
type ScoreResponse struct {
	User1ID            uint64    `json:"user1_id"`
	User2ID            uint64    `json:"user2_id"`
	CompatibilityScore float64   `json:"compatibility_score"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

// ChoiceResponse is the wire shape of one recorded choice.
type ChoiceResponse struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"user_id"`
	ChosenUserID uint64 `json:"chosen_user_id"`
	ChoiceDate   string `json:"choice_date"`
	IsMatch      bool   `json:"is_match"`
}

// ChoiceListResponse is a page of choice history, most recent first.
type ChoiceListResponse struct {
	UserID        uint64           `json:"user_id"`
	Choices       []ChoiceResponse `json:"choices"`
	NextPageToken *string          `json:"next_page_token,omitempty"`
}

// Today returns the current calendar date in the snapshot key format.
func (s *Service) Today() string {
	return s.Clock().UTC().Format(db.DateLayout)
}

// DailySelection returns the snapshot for (user, date), generating one when
// absent. With force=true the snapshot is rebuilt and replaced atomically;
// without it an existing snapshot is returned unchanged (idempotent read).
func (s *Service) DailySelection(ctx context.Context, userID uint64, date string, force bool) (*SelectionResponse, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(db.DateLayout, date); err != nil {
		return nil, svcErr.Validation("date must be formatted as YYYY-MM-DD")
	}

	s.appCtx.Logger.Debug("DailySelection called", "user", userID, "date", date, "force", force)

	if !force {
		selection, candidates, err := s.selections.GetSelection(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		if selection != nil {
			return selectionResponse(selection, candidates), nil
		}
	}

	return s.generate(ctx, userID, date, force)
}

// generate builds and persists a fresh snapshot under the per-(user,date)
// lock. Two concurrent non-forced calls collapse into one write: the loser
// of the lock race re-reads and returns the winner's snapshot.
func (s *Service) generate(ctx context.Context, userID uint64, date string, force bool) (*SelectionResponse, error) {
	unlock := s.genLocks.Lock(fmt.Sprintf("%d:%s", userID, date))
	defer unlock()

	if !force {
		selection, candidates, err := s.selections.GetSelection(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		if selection != nil {
			return selectionResponse(selection, candidates), nil
		}
	}

	requester, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}

	vector, err := s.profiles.GetVector(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		return nil, svcErr.IncompleteProfile("user %d has not completed the personality questionnaire", userID)
	}

	excluded, err := s.exclusionSet(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	cfg := s.appCtx.Config.Matching
	// Same normalization as the eligibility predicate: the mapping is keyed
	// lowercase, records written outside CreateUser may not be.
	wantGender := cfg.GenderPairs[strings.ToLower(requester.Gender)]
	pool, err := s.users.ListCandidatePool(ctx, *requester, wantGender, cfg.MaxAgeGap, cfg.CandidatePoolLimit)
	if err != nil {
		return nil, err
	}

	poolIDs := make([]uint64, 0, len(pool))
	for _, candidate := range pool {
		poolIDs = append(poolIDs, candidate.ID)
	}
	withProfile, err := s.profiles.ProfileUserIDs(ctx, poolIDs)
	if err != nil {
		return nil, err
	}

	filterCfg := engine.FilterConfig{MaxAgeGap: cfg.MaxAgeGap, GenderPairs: cfg.GenderPairs}

	var scored []db.SelectionCandidate
	for _, candidate := range pool {
		_, hasProfile := withProfile[candidate.ID]
		if !engine.Eligible(filterCfg, *requester, candidate, hasProfile, excluded) {
			continue
		}

		entry, err := s.scores.GetOrCompute(ctx, userID, candidate.ID)
		if err != nil {
			// A candidate whose questionnaire vanished between the pool
			// query and scoring is skipped, not fatal.
			var incomplete *svcErr.IncompleteProfileError
			if errors.As(err, &incomplete) {
				continue
			}
			return nil, err
		}
		if entry.Score < cfg.CompatibilityThreshold {
			continue
		}
		scored = append(scored, db.SelectionCandidate{CandidateID: candidate.ID, Score: entry.Score})
	}

	// Score descending, candidate id ascending on ties, for determinism.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].CandidateID < scored[j].CandidateID
	})

	// No threshold relaxation: fewer than MinProfiles qualifying means a
	// short selection, never a lowered bar.
	if len(scored) > cfg.MaxProfiles {
		scored = scored[:cfg.MaxProfiles]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}

	maxChoices := cfg.FreeChoices
	if requester.Premium {
		maxChoices = cfg.PremiumChoices
	}

	selection, err := s.selections.SaveSelection(ctx, userID, date, scored, maxChoices, s.Clock().UTC())
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("daily selection generated",
		"user", userID, "date", date, "candidates", len(scored), "max_choices", maxChoices)

	return selectionResponse(selection, scored), nil
}

// exclusionSet unions everyone the user has ever chosen with everyone shown
// in their selections within the configured window (including today's prior
// snapshots).
func (s *Service) exclusionSet(ctx context.Context, userID uint64, date string) (map[uint64]struct{}, error) {
	excluded := make(map[uint64]struct{})

	chosen, err := s.choices.ChosenUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range chosen {
		excluded[id] = struct{}{}
	}

	day, err := time.Parse(db.DateLayout, date)
	if err != nil {
		return nil, svcErr.Validation("date must be formatted as YYYY-MM-DD")
	}
	since := day.AddDate(0, 0, -s.appCtx.Config.Matching.SelectionExclusionDays).Format(db.DateLayout)

	recent, err := s.selections.RecentCandidateIDs(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	for _, id := range recent {
		excluded[id] = struct{}{}
	}

	return excluded, nil
}

// CompatibilityScore returns the cached or freshly computed score for a
// pair of users.
func (s *Service) CompatibilityScore(ctx context.Context, user1ID, user2ID uint64) (*ScoreResponse, error) {
	s.appCtx.Logger.Debug("CompatibilityScore called", "user1", user1ID, "user2", user2ID)

	for _, id := range []uint64{user1ID, user2ID} {
		user, err := s.users.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, svcErr.NotFound("user %d not found", id)
		}
	}

	entry, err := s.scores.GetOrCompute(ctx, user1ID, user2ID)
	if err != nil {
		return nil, err
	}

	return &ScoreResponse{
		User1ID:            user1ID,
		User2ID:            user2ID,
		CompatibilityScore: entry.Score,
		CalculatedAt:       entry.ComputedAt,
	}, nil
}

// computeScore is the cache-miss path: fetch both questionnaire vectors and
// run the cosine scorer. userA < userB is guaranteed by the cache, so the
// float computation is identical regardless of the caller's argument order.
func (s *Service) computeScore(ctx context.Context, userA, userB uint64) (float64, error) {
	vectorA, err := s.profiles.GetVector(ctx, userA)
	if err != nil {
		return 0, err
	}
	if vectorA == nil {
		return 0, svcErr.IncompleteProfile("user %d has not completed the personality questionnaire", userA)
	}

	vectorB, err := s.profiles.GetVector(ctx, userB)
	if err != nil {
		return 0, err
	}
	if vectorB == nil {
		return 0, svcErr.IncompleteProfile("user %d has not completed the personality questionnaire", userB)
	}

	return engine.Score(vectorA, vectorB)
}

// RecordChoice records userID choosing chosenUserID from that date's
// selection snapshot, enforcing the daily quota and detecting a mutual
// match. When the reverse choice already exists, both records end up
// matched; the per-pair lock guarantees two reciprocal choices arriving
// together cannot both miss the other.
func (s *Service) RecordChoice(ctx context.Context, userID, chosenUserID uint64, date string) (*ChoiceResponse, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(db.DateLayout, date); err != nil {
		return nil, svcErr.Validation("date must be formatted as YYYY-MM-DD")
	}
	if userID == chosenUserID {
		return nil, svcErr.Validation("cannot choose yourself")
	}

	s.appCtx.Logger.Debug("RecordChoice called", "user", userID, "chosen", chosenUserID, "date", date)

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}

	chosen, err := s.users.GetUser(ctx, chosenUserID)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, svcErr.NotFound("user %d not found", chosenUserID)
	}

	// Choices are restricted to the snapshot actually shown.
	selection, candidates, err := s.selections.GetSelection(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if selection == nil {
		return nil, svcErr.InvalidChoice("no daily selection exists for %s", date)
	}
	inSnapshot := false
	for _, candidate := range candidates {
		if candidate.CandidateID == chosenUserID {
			inSnapshot = true
			break
		}
	}
	if !inSnapshot {
		return nil, svcErr.InvalidChoice("user %d is not in the daily selection for %s", chosenUserID, date)
	}

	// Quota: compare-then-insert under the (user, date) lock so two
	// concurrent attempts cannot both pass a stale count.
	unlockQuota := s.quotaLocks.Lock(fmt.Sprintf("%d:%s", userID, date))
	defer unlockQuota()

	count, err := s.choices.CountChoicesOn(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if count >= int64(selection.MaxChoices) {
		return nil, svcErr.QuotaExceeded("daily choice limit exceeded: %d choices allowed per day", selection.MaxChoices)
	}

	alreadyChosen, err := s.choices.HasChosen(ctx, userID, chosenUserID)
	if err != nil {
		return nil, err
	}
	if alreadyChosen {
		return nil, svcErr.InvalidChoice("user %d was already chosen", chosenUserID)
	}

	// Serialize the insert + reciprocal lookup per unordered pair so that
	// exactly one of two near-simultaneous reciprocal choices performs the
	// mark-both-matched update.
	unlockPair := s.pairLocks.Lock(pairLockKey(userID, chosenUserID))
	defer unlockPair()

	choice := &db.UserChoice{
		UserID:       userID,
		ChosenUserID: chosenUserID,
		ChoiceDate:   date,
	}
	if err := s.choices.CreateChoice(ctx, choice); err != nil {
		return nil, err
	}

	reciprocal, err := s.choices.FindReciprocal(ctx, userID, chosenUserID)
	if err != nil {
		return nil, err
	}
	if reciprocal != nil {
		if err := s.choices.MarkMatched(ctx, choice.ID, reciprocal.ID); err != nil {
			return nil, err
		}
		choice.IsMatch = true
		s.appCtx.Logger.Info("mutual match", "user", userID, "chosen", chosenUserID)
	}

	return &ChoiceResponse{
		ID:           choice.ID,
		UserID:       choice.UserID,
		ChosenUserID: choice.ChosenUserID,
		ChoiceDate:   choice.ChoiceDate,
		IsMatch:      choice.IsMatch,
	}, nil
}

// ListChoices returns the user's choice history, most recent first.
func (s *Service) ListChoices(ctx context.Context, userID uint64, pageToken *string, limit int) (*ChoiceListResponse, error) {
	s.appCtx.Logger.Debug("ListChoices called", "user", userID, "limit", limit)

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user %d not found", userID)
	}

	choices, nextToken, err := s.choices.ListChoices(ctx, userID, pageToken, limit)
	if err != nil {
		return nil, err
	}

	resp := &ChoiceListResponse{UserID: userID, Choices: make([]ChoiceResponse, 0, len(choices))}
	for _, choice := range choices {
		resp.Choices = append(resp.Choices, ChoiceResponse{
			ID:           choice.ID,
			UserID:       choice.UserID,
			ChosenUserID: choice.ChosenUserID,
			ChoiceDate:   choice.ChoiceDate,
			IsMatch:      choice.IsMatch,
		})
	}
	resp.NextPageToken = nextToken
	return resp, nil
}

func selectionResponse(selection *db.DailySelection, candidates []db.SelectionCandidate) *SelectionResponse {
	if candidates == nil {
		candidates = []db.SelectionCandidate{}
	}
	return &SelectionResponse{
		UserID:            selection.UserID,
		SelectionDate:     selection.SelectionDate,
		Candidates:        candidates,
		MaxChoicesAllowed: selection.MaxChoices,
		GeneratedAt:       selection.GeneratedAt,
	}
}

func pairLockKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
