package domain

import "time"

// SharedLink is a read-only snapshot of plan text addressed by an opaque token.
type SharedLink struct {
	ID        string    `json:"id" bson:"_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func (s SharedLink) EntityID() string { return s.ID }

// BlogPost is either seeded content or an automated AI generation.
type BlogPost struct {
	ID       string `json:"id" bson:"_id"`
	Title    string `json:"title" bson:"title"`
	Excerpt  string `json:"excerpt" bson:"excerpt"`
	Content  string `json:"content" bson:"content"`
	Category string `json:"category" bson:"category"`
	Author   string `json:"author" bson:"author"`
	Date     string `json:"date" bson:"date"`
	Image    string `json:"image,omitempty" bson:"image,omitempty"`
	IsAI     bool   `json:"isAi" bson:"is_ai"`
}

func (b BlogPost) EntityID() string { return b.ID }

func (b BlogPost) EntityCategory() string { return b.Category }

// Testimonial is a public submission gated by moderation.
type Testimonial struct {
	ID       string `json:"id" bson:"_id"`
	Author   string `json:"author" bson:"author"`
	Role     string `json:"role" bson:"role"`
	Content  string `json:"content" bson:"content"`
	Image    string `json:"image" bson:"image"`
	Approved bool   `json:"approved" bson:"approved"`
	Date     string `json:"date" bson:"date"`
}

func (t Testimonial) EntityID() string { return t.ID }

// ModerationOutcome is the business result of a testimonial submission.
type ModerationOutcome string

const (
	ModerationAccepted ModerationOutcome = "accepted"
	ModerationRejected ModerationOutcome = "rejected"
)

// Transaction records a completed payment receipt.
type Transaction struct {
	ID        string   `json:"id" bson:"_id"`
	UserID    string   `json:"userId" bson:"user_id"`
	Reference string   `json:"reference" bson:"reference"`
	Status    string   `json:"status" bson:"status"`
	Amount    int64    `json:"amount" bson:"amount"`
	Currency  string   `json:"currency" bson:"currency"`
	PlanID    PlanTier `json:"planId" bson:"plan_id"`
	Date      string   `json:"date" bson:"date"`
}

func (t Transaction) EntityID() string { return t.ID }
