package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"minesweeper_webapp/internal/domain"
	"minesweeper_webapp/internal/game"
	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/repository"
	"minesweeper_webapp/internal/service"
)

type SetupRequest struct {
	GridSize   int    `json:"grid_size"`
	Difficulty string `json:"difficulty"`
}

type CellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type NavigateRequest struct {
	Page string `json:"page"`
}

type CommandRequest struct {
	Text string `json:"text"`
}

// CreateInstance mints a new game instance owned by nobody; anyone with
// the id can play it.
func (h *Handler) CreateInstance(c *gin.Context) {
	id, err := h.Sessions.CreateInstance(c.Request.Context(), actorFrom(c))
	if err != nil {
		logger.Error("instance create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create instance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance_id": id})
}

// State returns the current snapshot; null when the instance was never
// created.
func (h *Handler) State(c *gin.Context) {
	snap, err := h.Sessions.State(c.Request.Context(), c.Param("id"))
	respondState(c, snap, err)
}

func (h *Handler) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := h.Sessions.Setup(c.Request.Context(), c.Param("id"), actorFrom(c), req.GridSize, req.Difficulty)
	respondState(c, snap, err)
}

func (h *Handler) Start(c *gin.Context) {
	snap, err := h.Sessions.StartGame(c.Request.Context(), c.Param("id"), actorFrom(c))
	respondState(c, snap, err)
}

func (h *Handler) Reveal(c *gin.Context) {
	var req CellRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := h.Sessions.Reveal(c.Request.Context(), c.Param("id"), actorFrom(c), req.Row, req.Col)
	respondState(c, snap, err)
}

func (h *Handler) Flag(c *gin.Context) {
	var req CellRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := h.Sessions.Flag(c.Request.Context(), c.Param("id"), actorFrom(c), req.Row, req.Col)
	respondState(c, snap, err)
}

func (h *Handler) Hint(c *gin.Context) {
	snap, err := h.Sessions.Hint(c.Request.Context(), c.Param("id"), actorFrom(c))
	respondState(c, snap, err)
}

func (h *Handler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := h.Sessions.Navigate(c.Request.Context(), c.Param("id"), actorFrom(c), domain.Page(req.Page))
	respondState(c, snap, err)
}

// InstanceLeaderboard returns the standings of one instance.
func (h *Handler) InstanceLeaderboard(c *gin.Context) {
	entries, markdown, err := h.Sessions.Leaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			c.JSON(http.StatusOK, gin.H{"entries": []struct{}{}, "markdown": ""})
			return
		}
		logger.Error("leaderboard failed", "instance", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "markdown": markdown})
}

// InstanceMatches lists the most recently archived games of an instance.
// Without a database behind the archive the list is always empty.
func (h *Handler) InstanceMatches(c *gin.Context) {
	matches, err := h.Sessions.Matches(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		logger.Error("match list failed", "instance", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if matches == nil {
		matches = []*repository.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// Command feeds one line of text through the command dispatcher, the
// same path the chat bot uses. The instance and player come from the
// URL and token, the reply is plain text ("" when the line was not a
// command).
func (h *Handler) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	actor := actorFrom(c)
	reply := h.Dispatcher.Handle(c.Request.Context(), c.Param("id"), actor.ID, actor.Username, req.Text)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// respondState is the shared reply shape of the session operations: the
// snapshot on success, state null for instances that do not exist, 400
// for rule rejections.
func respondState(c *gin.Context, snap *service.Snapshot, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"state": snap})
	case errors.Is(err, service.ErrNoSession):
		c.JSON(http.StatusOK, gin.H{"state": nil})
	case isRuleRejection(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("session op failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isRuleRejection(err error) bool {
	for _, target := range []error{
		game.ErrNoActiveGame,
		game.ErrGameOver,
		game.ErrOutOfBounds,
		game.ErrCellRevealed,
		game.ErrCellFlagged,
		game.ErrBadGridSize,
		game.ErrBadDifficulty,
		game.ErrBadTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
