package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	matchingsvc "github.com/goldwen/matching-service/internal/service/matching"
)

// MatchingHandler binds the matching engine endpoints to HTTP.
type MatchingHandler struct {
	svc *matchingsvc.Service
}

func NewMatchingHandler(svc *matchingsvc.Service) *MatchingHandler {
	return &MatchingHandler{svc: svc}
}

// GetDailySelection handles GET /matching/daily-selection/:userID.
// Optional ?date=YYYY-MM-DD (defaults to today). Returns the existing
// snapshot or generates one.
func (h *MatchingHandler) GetDailySelection(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	resp, err := h.svc.DailySelection(c.Request.Context(), userID, c.Query("date"), false)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// GenerateSelection handles POST /matching/generate-selection/:userID.
// Forces a full rebuild of the snapshot for the date.
func (h *MatchingHandler) GenerateSelection(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	resp, err := h.svc.DailySelection(c.Request.Context(), userID, c.Query("date"), true)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

type compatibilityScoreRequest struct {
	User1ID uint64 `json:"user1_id" binding:"required"`
	User2ID uint64 `json:"user2_id" binding:"required"`
}

// CompatibilityScore handles POST /matching/compatibility-score.
func (h *MatchingHandler) CompatibilityScore(c *gin.Context) {
	var req compatibilityScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "user1_id and user2_id are required")
		return
	}

	resp, err := h.svc.CompatibilityScore(c.Request.Context(), req.User1ID, req.User2ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

type userChoiceRequest struct {
	ChosenUserID uint64 `json:"chosen_user_id" binding:"required"`
}

// RecordChoice handles POST /matching/user-choice/:userID.
func (h *MatchingHandler) RecordChoice(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	var req userChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "chosen_user_id is required")
		return
	}

	resp, err := h.svc.RecordChoice(c.Request.Context(), userID, req.ChosenUserID, c.Query("date"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ListChoices handles GET /matching/user-choices/:userID with ?limit= and
// ?page_token=.
func (h *MatchingHandler) ListChoices(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			RespondBadRequest(c, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	var pageToken *string
	if raw := c.Query("page_token"); raw != "" {
		pageToken = &raw
	}

	resp, err := h.svc.ListChoices(c.Request.Context(), userID, pageToken, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

func parseUserID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		RespondBadRequest(c, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}
