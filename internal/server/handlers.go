package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mslcoach/internal/achievements"
	"mslcoach/internal/artifacts"
	"mslcoach/internal/bank"
	"mslcoach/internal/progress"
	"mslcoach/internal/xp"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": s.bank.Personas()})
}

func (s *Server) handlePersona(c *gin.Context) {
	p, ok := s.bank.Persona(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleQuestions(c *gin.Context) {
	filter := bank.Filter{
		PersonaID:  c.Query("persona_id"),
		Difficulty: bank.Difficulty(c.Query("difficulty")),
		Category:   c.Query("category"),
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown difficulty"})
		return
	}
	questions := s.bank.Questions(filter)
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

func (s *Server) handleQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question id must be an integer"})
		return
	}
	q, ok := s.bank.Question(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.bank.Categories()})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var session progress.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.submitter.SubmitSession(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidSession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("session submission failed",
			zap.String("user_id", session.UserID),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "session processing failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleModelAnswer(c *gin.Context) {
	id, variant, ok := s.artifactParams(c)
	if !ok {
		return
	}

	answer, cached, err := s.artifacts.ModelAnswer(c.Request.Context(), id, c.Query("persona_id"), variant)
	if err != nil {
		s.artifactError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer, "cached": cached})
}

func (s *Server) handleScenario(c *gin.Context) {
	id, variant, ok := s.artifactParams(c)
	if !ok {
		return
	}
	personaID := c.Query("persona_id")
	if personaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "persona_id is required"})
		return
	}

	scenario, cached, err := s.artifacts.Scenario(c.Request.Context(), id, personaID, variant)
	if err != nil {
		s.artifactError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenario": scenario, "cached": cached})
}

func (s *Server) artifactParams(c *gin.Context) (questionID, variant int, ok bool) {
	questionID, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question id must be an integer"})
		return 0, 0, false
	}
	if v := c.Query("variant"); v != "" {
		variant, err = strconv.Atoi(v)
		if err != nil || variant < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "variant must be a non-negative integer"})
			return 0, 0, false
		}
	}
	return questionID, variant, true
}

func (s *Server) artifactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artifacts.ErrUnknownQuestion), errors.Is(err, artifacts.ErrUnknownPersona):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("artifact generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "artifact generation failed"})
	}
}

func (s *Server) handleProgress(c *gin.Context) {
	userID := c.Param("user_id")
	snapshot, _, err := s.progress.Read(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("read progress", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read progress failed"})
		return
	}

	level := xp.LevelOf(snapshot.TotalXP)
	c.JSON(http.StatusOK, gin.H{
		"progress":      snapshot,
		"xp_into_level": level.XPIntoLevel,
		"xp_to_next":    level.XPToNext,
	})
}

func (s *Server) handleAchievements(c *gin.Context) {
	userID := c.Param("user_id")
	snapshot, _, err := s.progress.Read(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("read progress", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read progress failed"})
		return
	}

	all := achievements.AllWithStatus(snapshot)
	unlocked := 0
	out := make([]gin.H, 0, len(all))
	for _, st := range all {
		if st.Unlocked {
			unlocked++
		}
		out = append(out, gin.H{
			"id":          st.ID,
			"name":        st.Name,
			"description": st.Description,
			"bonus_xp":    st.BonusXP,
			"icon":        st.Icon,
			"unlocked":    st.Unlocked,
		})
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out, "unlocked": unlocked, "total": len(all)})
}

func (s *Server) handleSessions(c *gin.Context) {
	userID := c.Param("user_id")
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	recs, err := s.sessions.RecentByUser(c.Request.Context(), userID, limit)
	if err != nil {
		s.log.Error("read sessions", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read sessions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": recs, "count": len(recs)})
}
