package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/models"
)

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      int    `json:"points" binding:"omitempty,min=1"`
}

type markRequest struct {
	Note string `json:"note"`
}

func (s *Server) listHabits(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		habits []models.Habit
		err    error
	)
	if c.Query("all") == "true" {
		habits, err = s.svc.ListHabits(ctx, s.owner)
	} else {
		habits, err = s.svc.ListActiveHabits(ctx, s.owner)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (s *Server) createHabit(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	h, err := s.svc.CreateHabit(ctx, s.owner, ledger.HabitInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Points:      req.Points,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (s *Server) getHabit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	h, err := s.svc.GetHabit(ctx, s.owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) deactivateHabit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	h, err := s.svc.DeactivateHabit(ctx, s.owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) habitStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	st, err := s.svc.GetHabitStats(ctx, s.owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) habitLog(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 366 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	marks, err := s.svc.HabitLog(ctx, s.owner, c.Param("id"), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": marks})
}

func (s *Server) markDone(c *gin.Context) {
	var req markRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}
	s.toggle(c, true, req.Note)
}

func (s *Server) undoDone(c *gin.Context) {
	s.toggle(c, false, "")
}

func (s *Server) toggle(c *gin.Context, completed bool, note string) {
	day, err := s.svc.ParseDay(c.Param("day"))
	if err != nil {
		writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	res, err := s.svc.Toggle(ctx, s.owner, c.Param("id"), day, completed, note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) accountSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	sum, err := s.svc.GetAccountSummary(ctx, s.owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) verifyAccount(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	d, err := s.svc.VerifyAccount(ctx, s.owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": d.Owner, "stored": d.Stored, "expected": d.Expected, "ok": d.OK()})
}

func (s *Server) listRewards(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		list []ledger.RewardStatus
		err  error
	)
	if c.Query("all") == "true" {
		list, err = s.svc.RewardProgress(ctx, s.owner)
	} else {
		list, err = s.svc.ListUnlockedRewards(ctx, s.owner)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": list})
}

func (s *Server) evaluateRewards(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	unlocked, err := s.svc.GetNewlyUnlockedRewards(ctx, s.owner)
	if err != nil {
		writeError(c, err)
		return
	}
	if unlocked == nil {
		unlocked = []models.Reward{}
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}
