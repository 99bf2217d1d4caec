package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/puzzle-api/internal/service"
)

// BeginAttemptRequest представляет запрос на начало попытки.
// Nickname обязателен, но попыткой не сохраняется: он информационный
// и попадает в хранилище только вместе со сданным результатом.
type BeginAttemptRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Nickname string `json:"nickname" binding:"required,max=32"`
}

// SubmitScoreRequest представляет запрос на сдачу результата
type SubmitScoreRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Nickname string `json:"nickname" binding:"required,max=32"`
	Moves    int    `json:"moves" binding:"required,gt=0"`
	TimeMs   int64  `json:"timeMs" binding:"required,gt=0"`
}

// ScoreHandler обрабатывает запросы лидерборда и попыток
type ScoreHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewScoreHandler создает новый обработчик результатов
func NewScoreHandler(leaderboardService *service.LeaderboardService) *ScoreHandler {
	return &ScoreHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard обрабатывает запрос на получение лидерборда
func (h *ScoreHandler) GetLeaderboard(c *gin.Context) {
	// Некорректный limit не является ошибкой: сервис подставит значение
	// по умолчанию и ограничит диапазон
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil {
		limit = 0
	}

	rows, err := h.leaderboardService.GetLeaderboard(limit)
	if err != nil {
		respond(c, http.StatusInternalServerError, gin.H{"error": "Internal server error getting leaderboard"})
		return
	}

	respond(c, http.StatusOK, rows)
}

// BeginAttempt обрабатывает запрос на начало попытки
func (h *ScoreHandler) BeginAttempt(c *gin.Context) {
	var req BeginAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}

	count, err := h.leaderboardService.BeginAttempt(req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptLimitReached) {
			respond(c, http.StatusForbidden, gin.H{
				"ok":            false,
				"attemptsCount": count,
				"reason":        "limit",
			})
			return
		}
		respond(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	respond(c, http.StatusOK, gin.H{
		"ok":            true,
		"attemptsCount": count,
	})
}

// SubmitScore обрабатывает запрос на сдачу завершённого результата
func (h *ScoreHandler) SubmitScore(c *gin.Context) {
	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}

	if err := h.leaderboardService.SubmitScore(req.UserID, req.Nickname, req.Moves, req.TimeMs); err != nil {
		respond(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	respond(c, http.StatusCreated, gin.H{"ok": true})
}
