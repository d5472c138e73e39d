package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// MessageController handles the contact inbox
type MessageController struct {
	Inbox *services.InboxService
}

// NewMessageController creates a new MessageController
func NewMessageController(inbox *services.InboxService) *MessageController {
	return &MessageController{Inbox: inbox}
}

// SubmitMessage stores a contact form submission
func (mc *MessageController) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req services.MessageInput
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	msg, err := mc.Inbox.Submit(ctx, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Message submitted successfully",
		"data":    msg,
	})
}

// GetAllMessages lists the inbox, newest first (Admin only)
func (mc *MessageController) GetAllMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	msgs, err := mc.Inbox.List(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": msgs,
	})
}

// UpdateMessageStatus marks a message pending, read or replied (Admin only)
func (mc *MessageController) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageId", "Message")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	msg, err := mc.Inbox.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message status updated successfully",
		"data":    msg,
	})
}
