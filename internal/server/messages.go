package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	messagedomain "github.com/smallbiznis/hushbox/internal/message/domain"
)

type UpdateMessageRequest struct {
	Status string `json:"status" binding:"required,oneof=active archived deleted"`
}

var updateMessageRules = []fieldRule{
	{Field: "Status", Tag: "required", Message: "Invalid status"},
	{Field: "Status", Tag: "oneof", Message: "Invalid status"},
}

type SendMessageRequest struct {
	Username string `json:"username" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

var sendMessageRules = []fieldRule{
	{Field: "Username", Tag: "required", Message: "Username and content are required"},
	{Field: "Content", Tag: "required", Message: "Username and content are required"},
}

func (s *Server) ListMessages(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	messages, err := s.messagesvc.List(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, failure(err, "Failed to fetch messages"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) UpdateMessage(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateMessageRequest
	if err := bindJSON(c, &req, updateMessageRules); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, messagedomain.ErrMessageNotFound)
		return
	}

	message, err := s.messagesvc.UpdateStatus(c.Request.Context(), userID, id, messagedomain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, messagedomain.ErrMessageNotFound), errors.Is(err, messagedomain.ErrInvalidStatus):
			AbortWithError(c, err)
		default:
			AbortWithError(c, failure(err, "Failed to update message"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// DeleteMessage succeeds when the message is missing or the id is malformed.
func (s *Server) DeleteMessage(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := s.messagesvc.Delete(c.Request.Context(), userID, id); err != nil {
		AbortWithError(c, failure(err, "Failed to delete message"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := bindJSON(c, &req, sendMessageRules); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	_, err := s.messagesvc.Send(ctx, messagedomain.SendRequest{
		Username: req.Username,
		Content:  req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, messagedomain.ErrContentRequired),
			errors.Is(err, messagedomain.ErrContentTooLong):
			s.obsMetrics.RecordMessageSent(ctx, "invalid")
			AbortWithError(c, err)
		case errors.Is(err, messagedomain.ErrRecipientNotFound):
			s.obsMetrics.RecordMessageSent(ctx, "unknown_recipient")
			AbortWithError(c, err)
		default:
			s.obsMetrics.RecordMessageSent(ctx, "error")
			AbortWithError(c, failure(err, "Failed to send message"))
		}
		return
	}
	s.obsMetrics.RecordMessageSent(ctx, "success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message sent successfully",
	})
}
