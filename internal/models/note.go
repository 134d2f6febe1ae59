package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:100;not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	Subject      string    `json:"subject" gorm:"size:50;not null"`
	ResourceLink string    `json:"resource_link" gorm:"size:255"`
	UserID       uuid.UUID `json:"-" gorm:"type:varchar(36);index;not null"`
	Tags         []Tag     `json:"tags" gorm:"many2many:note_tags;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Case-folded copies for the list filters. SQLite's LOWER() only folds
	// ASCII, so folding happens in Go on both sides.
	TitleFolded   string `json:"-" gorm:"column:title_lc;size:100"`
	ContentFolded string `json:"-" gorm:"column:content_lc;type:text"`
	SubjectFolded string `json:"-" gorm:"column:subject_lc;size:50"`
}

// TagNames returns the names of the note's tags in their current order.
func (n Note) TagNames() []string {
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	return names
}

// FoldCase is the case folding shared by stored notes and filter input.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

// Fold refreshes the case-folded columns from the visible fields.
func (n *Note) Fold() {
	n.TitleFolded = FoldCase(n.Title)
	n.ContentFolded = FoldCase(n.Content)
	n.SubjectFolded = FoldCase(n.Subject)
}

func (n *Note) BeforeSave(tx *gorm.DB) error {
	n.Fold()
	return nil
}
