package project

import "time"

const MaxMessageLength = 5000

// Message is a note exchanged between the participants of a project.
// Content is stored with markup removed; ContentHTML is rendered from it.
type Message struct {
	ID          string
	ProjectID   string
	SenderID    string
	Content     string
	ContentHTML string
	IsRead      bool
	CreatedAt   time.Time
}
