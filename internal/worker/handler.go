package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"nightlog/internal/queue"
)

// WelcomeSender defines the interface for sending welcome emails.
// This abstracts the email service so workers don't depend on SMTP directly.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, email, username string) error
}

// Handler processes notification events from the queue.
type Handler struct {
	welcomeSender WelcomeSender
}

// NewHandler creates a new event handler.
func NewHandler(welcomeSender WelcomeSender) *Handler {
	return &Handler{welcomeSender: welcomeSender}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.NotificationEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventUserRegistered:
		err = h.handleUserRegistered(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleUserRegistered sends the welcome email for a fresh signup.
func (h *Handler) handleUserRegistered(ctx context.Context, event queue.NotificationEvent) error {
	log.Printf("[Worker] UserRegistered: user=%d email=%s", event.UserID, event.Email)

	if err := h.welcomeSender.SendWelcome(ctx, event.Email, event.Username); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}

	log.Printf("[Worker] UserRegistered DONE: welcome email sent to %s", event.Email)
	return nil
}
