package feedback

import "time"

// VoteTally holds the vote counts of one content item.
type VoteTally struct {
	ContentID  string    `gorm:"primaryKey;size:191" json:"documentId"`
	HelpfulYes int64     `gorm:"not null;default:0" json:"helpful_yes"`
	HelpfulNo  int64     `gorm:"not null;default:0" json:"helpful_no"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name.
func (VoteTally) TableName() string {
	return "vote_tallies"
}

// Field is a counter column of VoteTally.
type Field string

const (
	FieldHelpfulYes Field = "helpful_yes"
	FieldHelpfulNo  Field = "helpful_no"
)

// FieldForVote maps a "yes" or "no" vote to its counter column.
func FieldForVote(vote string) (Field, error) {
	switch vote {
	case "yes":
		return FieldHelpfulYes, nil
	case "no":
		return FieldHelpfulNo, nil
	default:
		return "", ErrInvalidVote
	}
}
