// Package dto holds the JSON shapes of the API.
package dto

import (
	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Note struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Subject      string   `json:"subject"`
	Tags         []string `json:"tags"`
	ResourceLink string   `json:"resource_link"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type NoteList struct {
	Notes      []Note     `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

// UserFromModel never includes the password hash.
func UserFromModel(u models.User) User {
	return User{ID: u.ID.String(), Username: u.Username, Email: u.Email}
}

func NoteFromModel(n models.Note) Note {
	return Note{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		Subject:      n.Subject,
		Tags:         n.TagNames(),
		ResourceLink: n.ResourceLink,
	}
}

func NoteListFromPage(p repositories.NotePage) NoteList {
	notes := make([]Note, 0, len(p.Items))
	for _, n := range p.Items {
		notes = append(notes, NoteFromModel(n))
	}
	return NoteList{
		Notes: notes,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasPrev:    p.HasPrev,
			HasNext:    p.HasNext,
		},
	}
}
