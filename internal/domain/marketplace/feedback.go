package marketplace

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const maxFeedbackLength = 2000

// SenderType identifies which side of an order wrote a message
type SenderType string

const (
	SenderCompany SenderType = "company"
	SenderFarmer  SenderType = "farmer"
)

// IsValid checks if the sender type is known
func (s SenderType) IsValid() bool {
	switch s {
	case SenderCompany, SenderFarmer:
		return true
	}
	return false
}

// String returns the string representation of SenderType
func (s SenderType) String() string {
	return string(s)
}

// Feedback is one message in an order's thread
type Feedback struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	SenderType SenderType
	Message    string
	CreatedAt  time.Time
}

// NewFeedback creates a message for an order's thread
func NewFeedback(orderID uuid.UUID, sender SenderType, message string) (*Feedback, error) {
	message = strings.TrimSpace(message)
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order ID cannot be empty")
	}
	if !sender.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sender type must be company or farmer")
	}
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Message cannot be empty")
	}
	if utf8.RuneCountInString(message) > maxFeedbackLength {
		return nil, shared.NewDomainError(shared.CodeValidation, "Message cannot exceed 2000 characters")
	}

	return &Feedback{
		ID:         uuid.New(),
		OrderID:    orderID,
		SenderType: sender,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
