package store

import (
	"fmt"
	"time"

	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
)

// Type identifies a record kind. The set is closed: every record in the
// corpus is either a message or a movie, with a fixed schema of searchable
// and display fields decided here rather than inferred at query time.
type Type string

const (
	TypeMessages Type = "messages"
	TypeMovies   Type = "movies"
)

// Record is a corpus document of one of the closed record types.
// SearchText returns the searchable fields in their fixed schema order;
// every other field is display-only and passed through verbatim to results.
type Record interface {
	DocID() string
	SearchText() []string
	Validate() error
}

// Message is a chat message. Searchable fields, in order: message text,
// author name. CreatedAt is display-only.
type Message struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func (m Message) DocID() string { return m.ID }

func (m Message) SearchText() []string { return []string{m.Text, m.UserName} }

func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: message id", apperrors.ErrMissingField)
	}
	if m.Text == "" {
		return fmt.Errorf("%w: message %s has no text", apperrors.ErrMissingField, m.ID)
	}
	return nil
}

// Movie is a catalogue entry. Searchable fields, in order: title,
// description. Year and Rating are display-only.
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Year        int     `json:"year,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

func (m Movie) DocID() string { return m.ID }

func (m Movie) SearchText() []string { return []string{m.Title, m.Description} }

func (m Movie) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: movie id", apperrors.ErrMissingField)
	}
	if m.Title == "" {
		return fmt.Errorf("%w: movie %s has no title", apperrors.ErrMissingField, m.ID)
	}
	return nil
}
