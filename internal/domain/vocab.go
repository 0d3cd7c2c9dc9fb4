package domain

import "time"

// VocabFolder groups vocabulary items into a playable unit.
type VocabFolder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VocabItem is one flashcard: a term, its meaning, and an optional example
// sentence. Each text carries its own language code; ExampleLanguage may be
// empty, in which case the example falls back to the term language.
type VocabItem struct {
	ID       string `json:"id"`
	FolderID string `json:"folder_id"`

	Term         string `json:"term"`
	TermLanguage string `json:"term_language"`

	Meaning         string `json:"meaning"`
	MeaningLanguage string `json:"meaning_language"`

	Example         string `json:"example,omitempty"`
	ExampleLanguage string `json:"example_language,omitempty"`

	// Position orders items inside their folder.
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
