package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/utils"
	"github.com/rohits-web03/notevault/internal/validation"
)

const maxResourceLinkLength = 255

type NoteInput struct {
	Title        string `form:"title" validate:"required,max=100"`
	Subject      string `form:"subject" validate:"required,max=50"`
	Content      string `form:"content" validate:"required"`
	ResourceLink string `form:"resource_link" validate:"max=255"`
	Tags         string `form:"tags"`
}

// ListParams are the user-facing list filters. A zero Page lists every
// match without pagination.
type ListParams struct {
	Search  string
	Subject string
	Tag     string
	Page    int
}

// NoteService manages notes on behalf of their owner.
type NoteService struct {
	store     *repositories.Store
	objects   repositories.ObjectStore
	validator *validation.Validator
	pageSize  int
	log       *zap.Logger
}

// NewNoteService builds the service. objects may be nil, in which case
// attachments are rejected.
func NewNoteService(
	store *repositories.Store,
	objects repositories.ObjectStore,
	v *validation.Validator,
	pageSize int,
	log *zap.Logger,
) *NoteService {
	return &NoteService{
		store:     store,
		objects:   objects,
		validator: v,
		pageSize:  pageSize,
		log:       log,
	}
}

// AttachmentsEnabled reports whether an object store is configured.
func (s *NoteService) AttachmentsEnabled() bool {
	return s.objects != nil
}

func (s *NoteService) prepare(in NoteInput) (NoteInput, []string, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Content = strings.TrimSpace(in.Content)
	in.ResourceLink = strings.TrimSpace(in.ResourceLink)
	if err := s.validator.Validate(in); err != nil {
		return in, nil, err
	}
	tags, err := ParseTags(in.Tags)
	if err != nil {
		return in, nil, err
	}
	return in, tags, nil
}

// ownedNote loads a note and checks that owner may touch it.
func ownedNote(r repositories.Repos, owner uuid.UUID, id uint) (*models.Note, error) {
	note, err := r.Notes.ByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.NotFound("Note not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	if note.UserID != owner {
		return nil, domainerrors.Forbidden("You do not have access to this note.")
	}
	return note, nil
}

// Create stores a new note with its tags. Unknown tags are created.
func (s *NoteService) Create(ctx context.Context, owner uuid.UUID, in NoteInput) (*models.Note, error) {
	in, tagNames, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		Title:        in.Title,
		Subject:      in.Subject,
		Content:      in.Content,
		ResourceLink: in.ResourceLink,
		UserID:       owner,
	}
	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		tags, err := r.Tags.UpsertAll(tagNames)
		if err != nil {
			return err
		}
		note.Tags = tags
		return r.Notes.Create(note)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("note created", zap.Uint("note_id", note.ID), zap.String("user_id", owner.String()))
	return note, nil
}

// Get returns one of owner's notes.
func (s *NoteService) Get(ctx context.Context, owner uuid.UUID, id uint) (*models.Note, error) {
	return ownedNote(s.store.Read(ctx), owner, id)
}

// Update replaces every field of the note and its tag set.
func (s *NoteService) Update(ctx context.Context, owner uuid.UUID, id uint, in NoteInput) (*models.Note, error) {
	in, tagNames, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	var note *models.Note
	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		if note, err = ownedNote(r, owner, id); err != nil {
			return err
		}
		tags, err := r.Tags.UpsertAll(tagNames)
		if err != nil {
			return err
		}
		note.Title = in.Title
		note.Subject = in.Subject
		note.Content = in.Content
		note.ResourceLink = in.ResourceLink
		return r.Notes.Replace(note, tags)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes the note. Its tags stay in the registry.
func (s *NoteService) Delete(ctx context.Context, owner uuid.UUID, id uint) error {
	return s.store.Transaction(ctx, func(r repositories.Repos) error {
		note, err := ownedNote(r, owner, id)
		if err != nil {
			return err
		}
		return r.Notes.Delete(note)
	})
}

// List filters owner's notes, newest first.
func (s *NoteService) List(ctx context.Context, owner uuid.UUID, p ListParams) (repositories.NotePage, error) {
	f := repositories.NoteFilter{
		OwnerID: owner,
		Search:  p.Search,
		Subject: p.Subject,
		Tag:     p.Tag,
		Page:    p.Page,
	}
	if p.Page > 0 {
		f.PageSize = s.pageSize
	}
	return s.store.Read(ctx).Notes.List(f)
}

// Attachment is an uploaded file to link from a note.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachResource uploads a file and points the note's resource link at it.
func (s *NoteService) AttachResource(ctx context.Context, owner uuid.UUID, id uint, file Attachment) (*models.Note, error) {
	if s.objects == nil {
		return nil, domainerrors.Unavailable("Attachment uploads are not configured.")
	}
	if _, err := ownedNote(s.store.Read(ctx), owner, id); err != nil {
		return nil, err
	}

	key := utils.ObjectKey(fmt.Sprintf("notes/%d", id), file.Filename)
	if key == "" {
		return nil, domainerrors.FieldValidation("file", "Choose a file to upload.")
	}

	link, err := s.objects.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "Upload failed. Please try again.")
	}
	if len(link) > maxResourceLinkLength {
		return nil, domainerrors.FieldValidation("file", "The file name is too long.")
	}

	var note *models.Note
	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		if note, err = ownedNote(r, owner, id); err != nil {
			return err
		}
		if err := r.Notes.SetResourceLink(note, link); err != nil {
			return err
		}
		note.ResourceLink = link
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("attachment uploaded", zap.Uint("note_id", id), zap.String("key", key))
	return note, nil
}
