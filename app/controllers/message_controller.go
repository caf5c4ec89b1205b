package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/pkg/bind"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
	"github.com/shashiranjanraj/orderdesk/pkg/middleware"
	"github.com/shashiranjanraj/orderdesk/pkg/response"
	"github.com/shashiranjanraj/orderdesk/pkg/ws"
)

type MessageController struct {
	messages *repositories.MessageRepository
	feed     *ws.Hub
}

func NewMessageController() *MessageController {
	c := &MessageController{
		messages: repositories.NewMessageRepository(),
		feed:     ws.NewHub(),
	}
	go c.feed.Run()
	return c
}

// List handles GET /api/messages: the full retained log, no filtering.
func (c *MessageController) List(w http.ResponseWriter, r *http.Request) {
	messages, err := c.messages.All()
	if err != nil {
		logger.WithCtx(r.Context()).Error("message list failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.Success(w, map[string]interface{}{"messages": messages})
}

type postMessageInput struct {
	Username string `json:"username" validate:"nullable,max=64"`
	Message  string `json:"message" validate:"required,max=2000"`
}

// Post handles POST /api/messages. Anyone may post; the sender resolves to
// the explicit username field, then the session identity, then "guest".
func (c *MessageController) Post(w http.ResponseWriter, r *http.Request) {
	var body postMessageInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sender := strings.TrimSpace(body.Username)
	if sender == "" {
		sender = middleware.UserFromCtx(r.Context())
	}
	if sender == "" {
		sender = models.GuestSender
	}

	m, err := c.messages.Post(sender, strings.TrimSpace(body.Message))
	if err != nil {
		logger.WithCtx(r.Context()).Error("message post failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if payload, err := json.Marshal(m); err == nil {
		c.feed.Broadcast <- payload
	}
	response.Success(w, map[string]interface{}{"msg": m})
}

// Stream handles GET /api/messages/ws: upgrades to a WebSocket that
// receives every newly posted message as JSON.
func (c *MessageController) Stream(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, c.feed)
}
