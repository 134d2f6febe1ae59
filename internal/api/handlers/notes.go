package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rohits-web03/notevault/internal/api/flash"
	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/views"
)

const maxUploadSize = 10 << 20

func pageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func listParams(q url.Values) services.ListParams {
	return services.ListParams{
		Search:  strings.TrimSpace(q.Get("q")),
		Subject: strings.TrimSpace(q.Get("subject")),
		Tag:     strings.TrimSpace(q.Get("tag")),
	}
}

func pageURL(f views.Filters, page int) string {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Subject != "" {
		v.Set("subject", f.Subject)
	}
	if f.Tag != "" {
		v.Set("tag", f.Tag)
	}
	v.Set("page", strconv.Itoa(page))
	return "/notes?" + v.Encode()
}

func pageLinks(f views.Filters, p repositories.NotePage) views.PageLinks {
	links := views.PageLinks{Page: p.Page, TotalPages: p.TotalPages, Total: p.Total}
	if p.HasPrev {
		links.PrevURL = pageURL(f, p.PrevPage())
	}
	if p.HasNext {
		links.NextURL = pageURL(f, p.NextPage())
	}
	return links
}

// GET /notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listParams(q)
	params.Page = pageParam(q.Get("page"))

	page, err := h.notes.List(r.Context(), principal(r).UserID, params)
	if err != nil {
		h.failPage(w, r, err)
		return
	}

	cards := make([]views.NoteCard, 0, len(page.Items))
	for _, n := range page.Items {
		cards = append(cards, noteCard(n))
	}
	filters := views.Filters{Query: params.Search, Subject: params.Subject, Tag: params.Tag}
	h.render(w, r, http.StatusOK, views.ViewData{
		Title:           "Your notes",
		ContentTemplate: "notes",
		Notes:           cards,
		Filters:         filters,
		Pages:           pageLinks(filters, page),
	})
}

func noteInput(r *http.Request) services.NoteInput {
	return services.NoteInput{
		Title:        r.PostForm.Get("title"),
		Subject:      r.PostForm.Get("subject"),
		Content:      r.PostForm.Get("content"),
		ResourceLink: r.PostForm.Get("resource_link"),
		Tags:         r.PostForm.Get("tags"),
	}
}

func noteForm(in services.NoteInput) map[string]string {
	return map[string]string{
		"title":         in.Title,
		"subject":       in.Subject,
		"content":       in.Content,
		"resource_link": in.ResourceLink,
		"tags":          in.Tags,
	}
}

func inputFromNote(n *models.Note) services.NoteInput {
	return services.NoteInput{
		Title:        n.Title,
		Subject:      n.Subject,
		Content:      n.Content,
		ResourceLink: n.ResourceLink,
		Tags:         strings.Join(n.TagNames(), ", "),
	}
}

func newNotePage() views.ViewData {
	return views.ViewData{Title: "New note", ContentTemplate: "note_form", Action: "/notes/new"}
}

func (h *Handler) editNotePage(n *models.Note, in services.NoteInput) views.ViewData {
	card := noteCard(*n)
	return views.ViewData{
		Title:           "Edit note",
		ContentTemplate: "note_form",
		Action:          fmt.Sprintf("/notes/%d/edit", n.ID),
		Form:            noteForm(in),
		Note:            &card,
		UploadsEnabled:  h.notes.AttachmentsEnabled(),
	}
}

// GET /notes/new
func (h *Handler) NewNoteForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newNotePage())
}

// POST /notes/new
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := noteInput(r)

	if _, err := h.notes.Create(r.Context(), principal(r).UserID, input); err != nil {
		data := newNotePage()
		data.Form = noteForm(input)
		h.failForm(w, r, err, data)
		return
	}

	flash.Add(w, r, flash.Success, "Note created!")
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// GET /notes/{id}/edit
func (h *Handler) EditNoteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	note, err := h.notes.Get(r.Context(), principal(r).UserID, id)
	if err != nil {
		h.failPage(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, h.editNotePage(note, inputFromNote(note)))
}

// POST /notes/{id}/edit
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := noteInput(r)
	owner := principal(r).UserID

	if _, err := h.notes.Update(r.Context(), owner, id, input); err != nil {
		if domainerrors.CodeOf(err) != domainerrors.CodeValidation {
			h.failPage(w, r, err)
			return
		}
		note, getErr := h.notes.Get(r.Context(), owner, id)
		if getErr != nil {
			h.failPage(w, r, getErr)
			return
		}
		h.failForm(w, r, err, h.editNotePage(note, input))
		return
	}

	flash.Add(w, r, flash.Success, "Note updated!")
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// GET /notes/{id}/delete
func (h *Handler) DeleteNoteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	note, err := h.notes.Get(r.Context(), principal(r).UserID, id)
	if err != nil {
		h.failPage(w, r, err)
		return
	}
	card := noteCard(*note)
	h.render(w, r, http.StatusOK, views.ViewData{
		Title:           "Delete note",
		ContentTemplate: "note_delete",
		Note:            &card,
	})
}

// POST /notes/{id}/delete
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.notes.Delete(r.Context(), principal(r).UserID, id); err != nil {
		h.failPage(w, r, err)
		return
	}

	flash.Add(w, r, flash.Success, "Note deleted.")
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// POST /notes/{id}/attachment
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	editURL := fmt.Sprintf("/notes/%d/edit", id)
	back := func(category, msg string) {
		flash.Add(w, r, category, msg)
		http.Redirect(w, r, editURL, http.StatusSeeOther)
	}

	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			back(flash.Danger, "The file is too large (max 10 MB).")
			return
		}
		back(flash.Danger, "Choose a file to upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		back(flash.Danger, "Choose a file to upload.")
		return
	}
	defer file.Close()
	if header.Size > maxUploadSize {
		back(flash.Danger, "The file is too large (max 10 MB).")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = h.notes.AttachResource(r.Context(), principal(r).UserID, id, services.Attachment{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeUnavailable:
		var domainErr *domainerrors.Error
		errors.As(err, &domainErr)
		msg := domainErr.Message
		if fields := domainErr.FieldErrors(); fields["file"] != "" {
			msg = fields["file"]
		}
		back(flash.Danger, msg)
		return
	}
	if err != nil {
		h.failPage(w, r, err)
		return
	}

	back(flash.Success, "File attached.")
}
