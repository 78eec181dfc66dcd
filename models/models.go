package models

import "time"

// QuestionKind is the canonical question type advertised to the client.
type QuestionKind string

const (
	KindText   QuestionKind = "TEXT"
	KindChoice QuestionKind = "CHOICE"
	KindYesNo  QuestionKind = "YES/NO"
)

// QuestionEnvelope is a normalized question handed to the client. Options is
// populated only for CHOICE questions and is never empty when present.
type QuestionEnvelope struct {
	Type    QuestionKind `json:"type"`
	Text    string       `json:"text"`
	Options []string     `json:"options,omitempty"`
}

// MessageKind tags an entry in the local transcript so synthesis can pair
// questions with answers without relying on list position.
type MessageKind string

const (
	MessageSeed     MessageKind = "seed"
	MessageQuestion MessageKind = "question"
	MessageAnswer   MessageKind = "answer"
)

// Message is one entry in an interview's local transcript, appended in
// chronological order.
type Message struct {
	Role  string      `json:"role"` // user or assistant
	Text  string      `json:"text"`
	Round int         `json:"round"`
	Kind  MessageKind `json:"kind"`
}

// Interview is the per-session record for one coaching conversation, keyed by
// the remote thread ID. Round counts questions asked so far and never
// decreases; Done flips exactly once when the resolution has been generated.
type Interview struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"thread_id"`
	QuestionerID string    `json:"questioner_id"`
	ComposerID   string    `json:"composer_id"`
	Round        int       `json:"round"`
	Done         bool      `json:"done"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
}
