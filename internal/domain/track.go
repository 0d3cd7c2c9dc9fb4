// Package domain contains the core data model for the Lectio playback engine.
package domain

// TrackType discriminates the two kinds of playlist entries.
type TrackType string

const (
	// TrackTypeBook is a multi-chapter long-form work.
	TrackTypeBook TrackType = "book"
	// TrackTypeVocab is a flashcard-style vocabulary folder.
	TrackTypeVocab TrackType = "vocab"
)

// Track is one playlist entry: either a book with its content attached, or a
// reference to a vocabulary folder whose items are fetched on demand.
// Identity is ID; a playlist never holds two tracks with the same ID.
type Track struct {
	ID    string    `json:"id"`
	Type  TrackType `json:"type"`
	Title string    `json:"title"`

	// Book-only fields. Book is nil for vocab tracks.
	Book               *BookContent `json:"book,omitempty"`
	PrimaryLanguage    string       `json:"primary_language,omitempty"`
	SecondaryLanguage  string       `json:"secondary_language,omitempty"`
	AvailableLanguages []string     `json:"available_languages,omitempty"`
}

// IsBook reports whether the track is a book.
func (t Track) IsBook() bool { return t.Type == TrackTypeBook }

// Bilingual reports whether a book track alternates between two languages.
// Vocab tracks carry their languages per item and are never bilingual here.
func (t Track) Bilingual() bool {
	return t.Type == TrackTypeBook && t.SecondaryLanguage != "" && t.SecondaryLanguage != t.PrimaryLanguage
}

// Stripped returns a copy of the track without the heavy content payload.
// Persisted playlists store only track identity and metadata; content is
// re-supplied by the caller on the next play command.
func (t Track) Stripped() Track {
	c := t
	c.Book = nil
	return c
}

// BookContent is the pre-parsed content of a book, produced upstream by the
// content parser. The engine never derives it from raw text.
type BookContent struct {
	Chapters []Chapter `json:"chapters"`
}

// Chapter is one ordered unit of a book.
type Chapter struct {
	ID       string           `json:"id"`
	Title    string           `json:"title,omitempty"`
	Segments []ContentSegment `json:"segments"`
}

// ContentSegment is an author-defined content unit (sentence or paragraph)
// with its text keyed by language code. A bilingual segment carries entries
// for both the primary and secondary language.
type ContentSegment struct {
	ID   string            `json:"id"`
	Text map[string]string `json:"text"`
}

// TextIn returns the segment text for a language, or "" if absent.
func (s ContentSegment) TextIn(lang string) string {
	return s.Text[lang]
}
