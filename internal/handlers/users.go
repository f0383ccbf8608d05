package handlers

import (
	"github.com/gin-gonic/gin"

	userssvc "github.com/goldwen/matching-service/internal/service/users"
)

// UsersHandler binds the directory endpoints to HTTP.
type UsersHandler struct {
	svc *userssvc.Service
}

func NewUsersHandler(svc *userssvc.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// CreateUser handles POST /users.
func (h *UsersHandler) CreateUser(c *gin.Context) {
	var req userssvc.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "email, first_name, age, gender and location_city are required")
		return
	}

	resp, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// GetUser handles GET /users/:userID.
func (h *UsersHandler) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	resp, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

type questionnaireRequest struct {
	Responses []userssvc.QuestionnaireAnswer `json:"responses" binding:"required"`
}

// SubmitQuestionnaire handles POST /users/:userID/personality.
func (h *UsersHandler) SubmitQuestionnaire(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	var req questionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "responses array is required")
		return
	}

	responses, err := h.svc.SubmitQuestionnaire(c.Request.Context(), userID, req.Responses)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, responses)
}

// GetQuestionnaire handles GET /users/:userID/personality.
func (h *UsersHandler) GetQuestionnaire(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	responses, err := h.svc.GetQuestionnaire(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, responses)
}

type premiumRequest struct {
	Premium *bool `json:"is_premium" binding:"required"`
}

// SetPremium handles PUT /users/:userID/premium.
func (h *UsersHandler) SetPremium(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	var req premiumRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Premium == nil {
		RespondBadRequest(c, "is_premium is required")
		return
	}

	resp, err := h.svc.SetPremium(c.Request.Context(), userID, *req.Premium)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// DeleteUser handles DELETE /users/:userID.
func (h *UsersHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseUserID(c, "userID")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), userID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "user deleted"})
}
