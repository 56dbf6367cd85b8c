package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	ResumeText string `json:"resume_text" binding:"required"`
}

type startRoundRequest struct {
	Round string `json:"round" binding:"required"`
}

type answerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func (s *Server) listRounds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rounds": s.deps.Catalog.All()})
}

func (s *Server) createSession(c *gin.Context) {
	var (
		text string
		err  error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		text, err = s.uploadedResume(c)
	} else {
		var req createSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		text = req.ResumeText
	}

	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, resume.ErrNoText) || errors.Is(err, resume.ErrUnsupportedFormat) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	sess, err := session.New(text)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.store.add(sess)
	s.deps.Logger.Info("session created", zap.String("session_id", sess.ID()), zap.Int("sessions", s.store.len()))

	c.JSON(http.StatusCreated, newSessionView(sess))
}

// uploadedResume extracts the text of the multipart "resume" file.
func (s *Server) uploadedResume(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	file, err := c.FormFile("resume")
	if err != nil {
		return "", errors.New("multipart field \"resume\" is required")
	}

	dir, err := os.MkdirTemp("", "resume-upload-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "resume"+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}

	if s.deps.Resumes == nil {
		return "", resume.ErrUnsupportedFormat
	}

	return s.deps.Resumes.Extract(c.Request.Context(), path)
}

// getSession announces the current question the first time it is shown.
func (s *Server) getSession(c *gin.Context, e *entry) {
	s.deps.Interviewer.Announce(c.Request.Context(), e.session)
	c.JSON(http.StatusOK, newSessionView(e.session))
}

func (s *Server) startRound(c *gin.Context, e *entry) {
	var req startRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	round, err := s.deps.Catalog.Lookup(req.Round)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "rounds": s.deps.Catalog.Names()})
		return
	}

	if err := s.deps.Interviewer.StartRound(c.Request.Context(), e.session, round); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionView(e.session))
}

func (s *Server) answer(c *gin.Context, e *entry) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	_, err := s.deps.Interviewer.Answer(c.Request.Context(), e.session, req.Answer)
	if errors.Is(err, session.ErrInvalidTransition) {
		respondSessionError(c, err)
		return
	}

	// A feedback failure is part of the session view and can be retried.
	c.JSON(http.StatusOK, newSessionView(e.session))
}

func (s *Server) retryFeedback(c *gin.Context, e *entry) {
	err := s.deps.Interviewer.RetryFeedback(c.Request.Context(), e.session)
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		respondSessionError(c, err)
	case err != nil:
		c.JSON(http.StatusBadGateway, newSessionView(e.session))
	default:
		c.JSON(http.StatusOK, newSessionView(e.session))
	}
}

func (s *Server) nextRound(c *gin.Context, e *entry) {
	if err := e.session.NextRound(); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(e.session))
}

func (s *Server) terminateSession(c *gin.Context, e *entry) {
	if err := e.session.Terminate(); err != nil {
		respondSessionError(c, err)
		return
	}
	s.store.remove(c.Param("id"))
	s.deps.Logger.Info("session terminated", zap.String("session_id", c.Param("id")))
	c.Status(http.StatusNoContent)
}

func respondSessionError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoQuestions), errors.Is(err, rounds.ErrUnknownRound):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
