package repositories

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohits-web03/notevault/internal/models"
)

// Notes is the note store and the query/filter engine over it.
type Notes struct {
	db *gorm.DB
}

// NoteFilter selects one owner's notes. Empty strings disable a filter.
// PageSize <= 0 returns every match on a single page.
type NoteFilter struct {
	OwnerID  uuid.UUID
	Search   string
	Subject  string
	Tag      string
	Page     int
	PageSize int
}

// NotePage is one page of a filtered note listing.
type NotePage struct {
	Items      []models.Note `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
}

func (p NotePage) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

func (p NotePage) NextPage() int {
	return p.Page + 1
}

// Create inserts the note and its tag associations. Tags must already exist.
func (r *Notes) Create(note *models.Note) error {
	if err := r.db.Omit("Tags.*").Create(note).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	sortTags(note)
	return nil
}

// ByID returns the note with its tags, or gorm.ErrRecordNotFound.
func (r *Notes) ByID(id uint) (*models.Note, error) {
	var note models.Note
	if err := r.db.Preload("Tags").Where("id = ?", id).First(&note).Error; err != nil {
		return nil, err
	}
	sortTags(&note)
	return &note, nil
}

// Replace overwrites title, subject, content and link, and swaps the tag set.
func (r *Notes) Replace(note *models.Note, tags []models.Tag) error {
	note.Fold()
	err := r.db.Model(note).Updates(map[string]any{
		"title":         note.Title,
		"subject":       note.Subject,
		"content":       note.Content,
		"resource_link": note.ResourceLink,
		"title_lc":      note.TitleFolded,
		"subject_lc":    note.SubjectFolded,
		"content_lc":    note.ContentFolded,
	}).Error
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	assoc := r.db.Model(note).Omit("Tags.*").Association("Tags")
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return fmt.Errorf("replace note tags: %w", err)
	}
	note.Tags = tags
	sortTags(note)
	return nil
}

// SetResourceLink updates only the resource link.
func (r *Notes) SetResourceLink(note *models.Note, link string) error {
	if err := r.db.Model(note).Update("resource_link", link).Error; err != nil {
		return fmt.Errorf("set resource link: %w", err)
	}
	return nil
}

// Delete removes the note and its tag associations.
func (r *Notes) Delete(note *models.Note) error {
	if err := r.db.Model(note).Association("Tags").Clear(); err != nil {
		return fmt.Errorf("clear note tags: %w", err)
	}
	if err := r.db.Delete(note).Error; err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// CountByOwner counts a user's notes.
func (r *Notes) CountByOwner(owner uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Note{}).Where("user_id = ?", owner).Count(&count).Error
	return count, err
}

// List runs the filter and returns the requested page, newest first.
func (r *Notes) List(f NoteFilter) (NotePage, error) {
	q := r.db.Model(&models.Note{}).Where("user_id = ?", f.OwnerID)

	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where("(title_lc LIKE ? ESCAPE '!' OR content_lc LIKE ? ESCAPE '!')", p, p)
	}
	if s := strings.TrimSpace(f.Subject); s != "" {
		q = q.Where("subject_lc LIKE ? ESCAPE '!'", likePattern(s))
	}
	if s := strings.TrimSpace(f.Tag); s != "" {
		// A subquery rather than a join keeps a note matching several tags
		// from appearing more than once.
		tagged := r.db.Table("note_tags").
			Select("note_tags.note_id").
			Joins("JOIN tag ON tag.id = note_tags.tag_id").
			Where("tag.name LIKE ? ESCAPE '!'", likePattern(s))
		q = q.Where("id IN (?)", tagged)
	}
	q = q.Session(&gorm.Session{})

	page := NotePage{Page: max(f.Page, 1), PageSize: f.PageSize}
	if err := q.Count(&page.Total).Error; err != nil {
		return NotePage{}, fmt.Errorf("count notes: %w", err)
	}

	find := q.Preload("Tags").Order("id DESC")
	if f.PageSize > 0 {
		page.TotalPages = int((page.Total + int64(f.PageSize) - 1) / int64(f.PageSize))
		find = find.Offset((page.Page - 1) * f.PageSize).Limit(f.PageSize)
	} else if page.Total > 0 {
		page.TotalPages = 1
	}

	items := []models.Note{}
	if page.Page <= page.TotalPages {
		if err := find.Find(&items).Error; err != nil {
			return NotePage{}, fmt.Errorf("list notes: %w", err)
		}
	}
	for i := range items {
		sortTags(&items[i])
	}
	page.Items = items
	page.HasPrev = page.Page > 1
	page.HasNext = page.Page < page.TotalPages
	return page, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a case-folded substring pattern for LIKE ... ESCAPE '!'.
// It is matched against the folded columns and the lowercased tag names.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(models.FoldCase(s)) + "%"
}

// sortTags orders tags by id, which is their creation order.
func sortTags(note *models.Note) {
	slices.SortFunc(note.Tags, func(a, b models.Tag) int {
		return int(a.ID) - int(b.ID)
	})
}
