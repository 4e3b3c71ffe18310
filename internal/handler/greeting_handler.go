package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateGreeting creates a new greeting card
func (h *Handlers) CreateGreeting(c *gin.Context) {
	var req GreetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	g, err := h.greetings.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err, "Failed to create greeting")
		return
	}

	c.JSON(http.StatusCreated, GreetingResponse{
		Success:  true,
		Greeting: g,
		Message:  "Greeting created successfully",
	})
}

// ListGreetings returns every greeting card
func (h *Handlers) ListGreetings(c *gin.Context) {
	greetings, err := h.greetings.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch greetings")
		return
	}

	c.JSON(http.StatusOK, GreetingListResponse{
		Success:   true,
		Greetings: greetings,
		Count:     len(greetings),
	})
}

// GetGreeting returns a single greeting card
func (h *Handlers) GetGreeting(c *gin.Context) {
	g, err := h.greetings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch greeting")
		return
	}

	c.JSON(http.StatusOK, GreetingResponse{Success: true, Greeting: g})
}

// UpdateGreeting replaces the editable fields of a greeting card
func (h *Handlers) UpdateGreeting(c *gin.Context) {
	var req GreetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	g, err := h.greetings.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, err, "Failed to update greeting")
		return
	}

	c.JSON(http.StatusOK, GreetingResponse{
		Success:  true,
		Greeting: g,
		Message:  "Greeting updated successfully",
	})
}

// DeleteGreeting removes a greeting card
func (h *Handlers) DeleteGreeting(c *gin.Context) {
	if err := h.greetings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete greeting")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Greeting deleted successfully",
	})
}
