package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/gin-gonic/gin"
)

type createChatRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) uploadParams(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := s.uploads.Sign(ctx)
	if err != nil {
		s.logger.Error(ctx, "upload signing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error signing upload!", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, params)
}

func (s *HTTPServer) createChat(c *gin.Context) {
	ctx := c.Request.Context()

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	id, err := s.chats.Create(ctx, userID(c), req.Text)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
			return
		}
		s.logger.Error(ctx, "create chat failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating chat!", "details": err.Error()})
		return
	}

	s.logger.Info(ctx, "chat created", "chat_id", id)
	c.String(http.StatusCreated, id)
}

func (s *HTTPServer) getChat(c *gin.Context) {
	ctx := c.Request.Context()

	chat, err := s.chats.Get(ctx, userID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		s.logger.Error(ctx, "get chat failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching chat!", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (s *HTTPServer) appendTurns(c *gin.Context) {
	ctx := c.Request.Context()

	var req services.AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answer too short or missing!"})
		return
	}

	res, err := s.chats.AppendTurns(ctx, userID(c), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Answer too short or missing!"})
			return
		}
		s.logger.Error(ctx, "append turns failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding conversation!", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) deleteChat(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.chats.Delete(ctx, userID(c), c.Param("id")); err != nil {
		s.logger.Error(ctx, "delete chat failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting chat", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) listChats(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := s.chats.List(ctx, userID(c))
	if err != nil {
		s.logger.Error(ctx, "list chats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching userchats!", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}
