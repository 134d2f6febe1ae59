// Package flash carries one-shot messages across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
)

const cookieName = "flash"

// Categories used by the templates for styling.
const (
	Success = "success"
	Info    = "info"
	Danger  = "danger"
)

type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Add queues a message for the next page the client renders. Messages
// already queued, on r or earlier in this response, are kept and an
// identical message is not repeated.
func Add(w http.ResponseWriter, r *http.Request, category, text string) {
	msg := Message{Category: category, Text: text}
	msgs, pending := queued(w)
	if !pending {
		msgs = read(r)
	}
	if slices.Contains(msgs, msg) {
		return
	}
	msgs = append(msgs, msg)
	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	dropPending(w)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := read(r)
	if _, err := r.Cookie(cookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return msgs
}

func read(r *http.Request) []Message {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	return decode(c.Value)
}

// queued reports the flash cookie already set on w, if any. A clearing
// cookie counts as an empty queue.
func queued(w http.ResponseWriter) ([]Message, bool) {
	var msgs []Message
	found := false
	for _, line := range w.Header().Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil || c.Name != cookieName {
			continue
		}
		found = true
		msgs = nil
		if c.MaxAge >= 0 {
			msgs = decode(c.Value)
		}
	}
	return msgs, found
}

func dropPending(w http.ResponseWriter) {
	h := w.Header()
	var kept []string
	for _, line := range h.Values("Set-Cookie") {
		if c, err := http.ParseSetCookie(line); err == nil && c.Name == cookieName {
			continue
		}
		kept = append(kept, line)
	}
	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
}

func decode(value string) []Message {
	if value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
