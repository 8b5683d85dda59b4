package store

import (
	"errors"
	"testing"

	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
)

func TestNewTable(t *testing.T) {
	messages := []Message{
		{ID: "1", UserName: "alice", Text: "pizza tonight?"},
		{ID: "2", UserName: "bob", Text: "meeting at noon"},
	}
	tbl, err := NewTable(messages)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}

	rec, ok := tbl.Get("2")
	if !ok {
		t.Fatal("Get(2) not found")
	}
	if rec.UserName != "bob" {
		t.Errorf("Get(2).UserName = %q, want %q", rec.UserName, "bob")
	}
	if _, ok := tbl.Get("missing"); ok {
		t.Error("Get(missing) found a record")
	}
}

func TestNewTableRejectsDuplicateID(t *testing.T) {
	messages := []Message{
		{ID: "1", UserName: "alice", Text: "first"},
		{ID: "1", UserName: "bob", Text: "second"},
	}
	if _, err := NewTable(messages); !errors.Is(err, apperrors.ErrDuplicateDocument) {
		t.Errorf("err = %v, want ErrDuplicateDocument", err)
	}
}

func TestNewTableRejectsInvalidRecord(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
	}{
		{"missing id", []Message{{UserName: "alice", Text: "hi"}}},
		{"missing text", []Message{{ID: "1", UserName: "alice"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.messages); !errors.Is(err, apperrors.ErrMissingField) {
				t.Errorf("err = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestMovieValidate(t *testing.T) {
	if err := (Movie{ID: "m1", Title: "Alien"}).Validate(); err != nil {
		t.Errorf("valid movie rejected: %v", err)
	}
	if err := (Movie{ID: "m1"}).Validate(); !errors.Is(err, apperrors.ErrMissingField) {
		t.Errorf("movie without title: err = %v, want ErrMissingField", err)
	}
}

func TestEnumerateInsertionOrder(t *testing.T) {
	movies := []Movie{
		{ID: "9", Title: "last alphabetically first inserted"},
		{ID: "1", Title: "first alphabetically last inserted"},
	}
	tbl, err := NewTable(movies)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	var ids []string
	tbl.Enumerate(func(m Movie) { ids = append(ids, m.ID) })
	if len(ids) != 2 || ids[0] != "9" || ids[1] != "1" {
		t.Errorf("Enumerate order = %v, want [9 1]", ids)
	}
}
