package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

func (a *API) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": a.Catalog.ListCategories(c.Request.Context())})
}

func (a *API) listQuestions(c *gin.Context) {
	difficulty, err := domain.ParseDifficulty(c.Query("difficulty"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	categoryID := c.Query("categoryId")
	if categoryID == "" {
		badRequest(c, "categoryId is required")
		return
	}
	questions := a.Quiz.Questions(c.Request.Context(), categoryID, difficulty)
	c.JSON(http.StatusOK, gin.H{"questions": newQuestionViews(questions)})
}

type startSessionRequest struct {
	UserID     string `json:"userId" binding:"required"`
	CategoryID string `json:"categoryId" binding:"required"`
	Difficulty string `json:"difficulty"`
}

func (a *API) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and categoryId are required")
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		a.respondError(c, err)
		return
	}
	session, err := a.Quiz.Start(c.Request.Context(), req.UserID, req.CategoryID, difficulty)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": newSessionView(session)})
}

func (a *API) getSession(c *gin.Context) {
	session, err := a.Quiz.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newSessionView(session)})
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option" binding:"required"`
}

func (a *API) answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "option is required")
		return
	}
	outcome, session, err := a.Quiz.Answer(c.Request.Context(), c.Param("id"), app.Submission{
		QuestionID: req.QuestionID,
		Option:     *req.Option,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "session": newSessionView(session)})
}

func (a *API) abandonSession(c *gin.Context) {
	if err := a.Quiz.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) listResults(c *gin.Context) {
	results, err := a.Results.History(c.Request.Context(), c.Query("userId"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (a *API) leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be a number")
			return
		}
		limit = n
	}
	body := gin.H{"leaderboard": a.Leaderboard.TopN(c.Request.Context(), limit)}

	if userID := c.Query("userId"); userID != "" {
		entry, err := a.Leaderboard.RankOf(c.Request.Context(), userID)
		switch {
		case err == nil:
			body["me"] = entry
		case !errors.Is(err, domain.ErrNotFound):
			a.Log.Warn("rank lookup failed", "userId", userID, "error", err)
		}
	}
	c.JSON(http.StatusOK, body)
}
