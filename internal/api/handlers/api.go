package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rohits-web03/notevault/internal/api/dto"
	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/utils"
)

// apiError writes the JSON error envelope. A note owned by someone else is
// reported exactly like a missing one.
func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	code := domainerrors.CodeOf(err)
	switch code {
	case domainerrors.CodeNotFound, domainerrors.CodeForbidden:
		utils.Fail(w, http.StatusNotFound, "Note not found", nil)
	case domainerrors.CodeInternal:
		h.log.Error("api request failed", zap.String("path", r.URL.Path), zap.Error(err))
		utils.Fail(w, http.StatusInternalServerError, "Internal server error", nil)
	default:
		var domainErr *domainerrors.Error
		domainerrors.As(err, &domainErr)
		utils.Fail(w, code.HTTPStatus(), domainErr.Message, domainErr.FieldErrors())
	}
}

// APIUser godoc
// @Summary      Current user
// @Description  Returns the authenticated user.
// @Tags         user
// @Produce      json
// @Success      200 {object} utils.Payload{data=dto.User}
// @Failure      401 {object} utils.Payload
// @Router       /user [get]
func (h *Handler) APIUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.User(r.Context(), principal(r).UserID)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	utils.OK(w, "User retrieved", dto.UserFromModel(*user))
}

// APIListNotes godoc
// @Summary      List notes
// @Description  Lists the caller's notes, newest first. Without page every match is returned.
// @Tags         notes
// @Produce      json
// @Param        q        query string false "Search title and content"
// @Param        subject  query string false "Subject contains"
// @Param        tag      query string false "Tag name contains"
// @Param        page     query int    false "Page number (page size is fixed)"
// @Success      200 {object} utils.Payload{data=dto.NoteList}
// @Failure      401 {object} utils.Payload
// @Router       /notes [get]
func (h *Handler) APIListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listParams(q)
	if q.Has("page") {
		params.Page = pageParam(q.Get("page"))
	}

	page, err := h.notes.List(r.Context(), principal(r).UserID, params)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	utils.OK(w, "Notes retrieved", dto.NoteListFromPage(page))
}

// APIGetNote godoc
// @Summary      Get a note
// @Tags         notes
// @Produce      json
// @Param        id   path int true "Note ID"
// @Success      200 {object} utils.Payload{data=dto.Note}
// @Failure      401 {object} utils.Payload
// @Failure      404 {object} utils.Payload
// @Router       /notes/{id} [get]
func (h *Handler) APIGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.apiError(w, r, domainerrors.ErrNotFound)
		return
	}

	note, err := h.notes.Get(r.Context(), principal(r).UserID, id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	utils.OK(w, "Note retrieved", dto.NoteFromModel(*note))
}
