package handler

import (
	feedbackapp "github.com/comufarm/backend/internal/application/feedback"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles the per-order message thread
type FeedbackHandler struct {
	BaseHandler
	feedback *feedbackapp.Service
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedback *feedbackapp.Service) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// AppendFeedbackRequest is a new message on an order thread
// @Description Request body for posting feedback
type AppendFeedbackRequest struct {
	Message string `json:"message" binding:"required" example:"Please deliver before noon"`
}

// Append godoc
// @ID           appendFeedback
// @Summary      Post a message on an order
// @Description  The sender type is the caller's role. Only the ordering company and the supplying farmer may post.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Order ID"
// @Param        request body AppendFeedbackRequest true "Message"
// @Success      201 {object} APIResponse[FeedbackResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/feedbacks [post]
func (h *FeedbackHandler) Append(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}

	var req AppendFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.DescribeBindingError(err))
		return
	}

	fb, err := h.feedback.Append(c.Request.Context(), feedbackapp.AppendInput{
		OrderID: orderID,
		Party:   party,
		Message: req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeedbackResponse(fb))
}

// Thread godoc
// @ID           getFeedbackThread
// @Summary      Read an order's messages
// @Description  Messages oldest first
// @Tags         feedback
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[[]FeedbackResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/feedbacks [get]
func (h *FeedbackHandler) Thread(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}

	thread, err := h.feedback.Thread(c.Request.Context(), orderID, party)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]FeedbackResponse, len(thread))
	for i := range thread {
		out[i] = toFeedbackResponse(&thread[i])
	}
	h.Success(c, out)
}
