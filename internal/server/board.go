package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"decorops/internal/workflow"
)

type boardResponse struct {
	workflow.View
	CanMove bool `json:"canMove"`
}

// handleBoard returns the board with derived risk and the current advisory.
func (s *Server) handleBoard(c *gin.Context) {
	respondSuccess(c, http.StatusOK, boardResponse{
		View:    s.board.View(),
		CanMove: actorFrom(c).CanMoveEvents(),
	})
}

// handleMove applies one drag. A refused move answers 403; a move the data
// service rejected is rolled back and answered 200 with the advisory.
func (s *Server) handleMove(c *gin.Context) {
	var req workflow.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	a := actorFrom(c)
	req.Actor = a.Name

	res, err := s.board.Move(c.Request.Context(), a, req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	if res.Outcome == workflow.OutcomeRefused {
		c.AbortWithStatusJSON(http.StatusForbidden, res)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// handleReload refetches stages and events from the data service.
func (s *Server) handleReload(c *gin.Context) {
	s.board.Load(c.Request.Context(), s.data)
	respondSuccess(c, http.StatusOK, boardResponse{
		View:    s.board.View(),
		CanMove: actorFrom(c).CanMoveEvents(),
	})
}

// handleActivity lists journaled moves, optionally for one event.
func (s *Server) handleActivity(c *gin.Context) {
	if s.activity == nil {
		respondSuccess(c, http.StatusOK, gin.H{"moves": []any{}})
		return
	}

	if eventID := c.Query("event"); eventID != "" {
		moves, err := s.activity.EventMoves(c.Request.Context(), eventID)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{"moves": moves})
		return
	}

	limit, ok := parseLimit(c, "limit", 50)
	if !ok {
		return
	}
	moves, err := s.activity.ListMoves(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"moves": moves})
}
