package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/badges"
	"github.com/jime0083/BatsuGaku/calendar"
	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/models"
)

// RegisterUser creates the document for the authenticated user. Retrying
// is safe; re-registration of an existing id is a no-op.
func (h *Handler) RegisterUser(c *gin.Context) {
	uid := authedUserID(c)
	now := h.now()

	user := &models.User{
		UserID:    uid,
		CreatedAt: now,
		UpdatedAt: now,
		Notifications: models.NotificationSettings{
			StudyCompleted: true,
			SkipWarning:    true,
		},
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated user's document. Encrypted credentials
// never serialize.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), authedUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type goalRequest struct {
	TargetIncome int64  `json:"target_income" binding:"required"`
	IncomeType   string `json:"income_type" binding:"required"`
	Skill        string `json:"skill" binding:"required"`
}

// SetGoal replaces the user's declared goal.
func (h *Handler) SetGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperr.ErrBadRequest, err))
		return
	}
	if req.TargetIncome <= 0 {
		respondError(c, fmt.Errorf("%w: target_income must be positive", apperr.ErrBadRequest))
		return
	}
	if req.IncomeType != models.IncomeMonthly && req.IncomeType != models.IncomeYearly {
		respondError(c, fmt.Errorf("%w: income_type must be monthly or yearly", apperr.ErrBadRequest))
		return
	}

	goal := &models.Goal{
		TargetIncome: req.TargetIncome,
		IncomeType:   req.IncomeType,
		Skill:        req.Skill,
		SetAt:        h.now(),
	}
	if err := h.Store.SetGoal(c.Request.Context(), authedUserID(c), goal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type notificationRequest struct {
	StudyCompleted bool   `json:"study_completed"`
	SkipWarning    bool   `json:"skip_warning"`
	PushToken      string `json:"push_token"`
}

// UpdateNotifications replaces the notification preferences and push token.
func (h *Handler) UpdateNotifications(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperr.ErrBadRequest, err))
		return
	}

	settings := &models.NotificationSettings{
		StudyCompleted: req.StudyCompleted,
		SkipWarning:    req.SkipWarning,
		PushToken:      req.PushToken,
	}
	if err := h.Store.SetNotificationSettings(c.Request.Context(), authedUserID(c), settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Badges returns the badges the user's current stats have earned.
func (h *Handler) Badges(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), authedUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges.Earned(user.Stats)})
}

// Calendar renders one month of study/skip/future cells.
func (h *Handler) Calendar(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		respondError(c, fmt.Errorf("%w: invalid year", apperr.ErrBadRequest))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(c, fmt.Errorf("%w: invalid month", apperr.ErrBadRequest))
		return
	}

	uid := authedUserID(c)
	logs, err := h.Store.ListMonthLogs(c.Request.Context(), uid, year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}

	studied := make(map[string]bool, len(logs))
	for _, log := range logs {
		if log.Studied {
			studied[log.Date.Format("2006-01-02")] = true
		}
	}

	today := localdate.At(h.now(), h.Zone).Midnight()
	days := calendar.BuildMonth(year, time.Month(month), studied, today)
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "days": days})
}
