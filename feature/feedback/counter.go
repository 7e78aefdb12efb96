package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidVote is returned for votes other than yes and no.
	ErrInvalidVote = errors.New("vote must be \"yes\" or \"no\"")
	// ErrMissingContentID is returned when no content id is given.
	ErrMissingContentID = errors.New("content id is required")
)

// Counter increments vote tallies.
type Counter struct {
	db *gorm.DB
}

// NewCounter creates a counter on db.
func NewCounter(db *gorm.DB) *Counter {
	return &Counter{db: db}
}

// Prepare migrates the vote_tallies table.
func (c *Counter) Prepare() error {
	return c.db.AutoMigrate(&VoteTally{})
}

// Increment adds one to field of contentID, creating the tally on first vote.
// It runs as one INSERT ... ON CONFLICT statement.
func (c *Counter) Increment(ctx context.Context, contentID string, field Field) error {
	if contentID == "" {
		return ErrMissingContentID
	}

	tally := &VoteTally{ContentID: contentID}
	switch field {
	case FieldHelpfulYes:
		tally.HelpfulYes = 1
	case FieldHelpfulNo:
		tally.HelpfulNo = 1
	default:
		return ErrInvalidVote
	}

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			string(field): gorm.Expr(fmt.Sprintf("%s.%s + 1", VoteTally{}.TableName(), field)),
			"updated_at":  time.Now(),
		}),
	}).Create(tally).Error
	if err != nil {
		return fmt.Errorf("failed to record vote for %s: %w", contentID, err)
	}
	return nil
}

// Get returns the tally of contentID. Items without votes have a zero tally.
func (c *Counter) Get(ctx context.Context, contentID string) (*VoteTally, error) {
	var tally VoteTally
	err := c.db.WithContext(ctx).First(&tally, "content_id = ?", contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VoteTally{ContentID: contentID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &tally, nil
}
