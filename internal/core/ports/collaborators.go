package ports

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/planwise/business-planner/internal/core/domain"
)

// BlogDraft is the raw article returned by the generator.
type BlogDraft struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
}

// GenerationService turns user input into documents. Calls may take seconds.
type GenerationService interface {
	GeneratePlan(ctx context.Context, form domain.FormData, tier domain.ModelTier) (string, error)
	GenerateSuggestions(ctx context.Context, keyword string) ([]string, error)
	ModerateContent(ctx context.Context, text, author string) (bool, error)
	GenerateBlogPost(ctx context.Context, topic string) (*BlogDraft, error)
}

// CheckoutRequest is sent to the payment collaborator. Name and Email must be non-empty.
type CheckoutRequest struct {
	UserID string
	Name   string
	Email  string
	Plan   domain.PlanTier
}

// CheckoutSession is the embeddable checkout handle returned to the client.
type CheckoutSession struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

// ReceiptPaid is the Receipt.Status of a completed payment.
const ReceiptPaid = "paid"

// Receipt is the payment collaborator's confirmation.
type Receipt struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PlanID    domain.PlanTier `json:"planId"`
	// UserID is the account the checkout was opened for, when known.
	UserID string `json:"-"`
}

// PaymentGateway is the remote payment collaborator. It has no offline substitute.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	FetchReceipt(ctx context.Context, reference string) (*Receipt, error)
}

// BlobStorage stores exported documents.
type BlobStorage interface {
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}
