// Package models holds the documents persisted by the server.
package models

import "time"

// Part is one content part of a turn. Turns currently carry exactly one.
type Part struct {
	Text string `json:"text"`
}

// Turn is a single message of a transcript.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
	Img   string `json:"img,omitempty"`
}

// NewTurn builds a one-part turn.
func NewTurn(role, text, img string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}, Img: img}
}

// Text returns the text of the first part, or "" if there is none.
func (t Turn) Text() string {
	if len(t.Parts) == 0 {
		return ""
	}
	return t.Parts[0].Text
}

// Chat is a transcript: an append-only list of turns owned by one user.
type Chat struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	History   []Turn    `json:"history"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatIndexEntry is one item of a user's conversation index.
type ChatIndexEntry struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// UpdateResult acknowledges an append. MatchedCount is 0 when the chat does
// not exist or belongs to someone else.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
