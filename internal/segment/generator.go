// Package segment converts playlist content into ordered speakable units.
//
// The output of this package is cache-only: the engine rebuilds it on every
// track or chapter load and never persists it.
package segment

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/lectio/lectio-server/internal/domain"
)

// SpeechSegment is one atomic spoken utterance. A bilingual content segment
// yields two adjacent speech segments sharing the same OriginalSegmentID.
type SpeechSegment struct {
	Text              string
	Lang              string
	OriginalSegmentID string
}

// BookStats holds cumulative per-chapter segment counts for O(1) progress
// computation. CumulativePerChapter[i] is the total number of speech
// segments through chapter i inclusive.
type BookStats struct {
	TotalSegments        int
	CumulativePerChapter []int
}

// SegmentsBefore returns the number of speech segments in all chapters
// preceding chapterIndex.
func (s BookStats) SegmentsBefore(chapterIndex int) int {
	if chapterIndex <= 0 || len(s.CumulativePerChapter) == 0 {
		return 0
	}
	if chapterIndex > len(s.CumulativePerChapter) {
		chapterIndex = len(s.CumulativePerChapter)
	}
	return s.CumulativePerChapter[chapterIndex-1]
}

// NormalizeLang canonicalizes a BCP 47 language code ("DE", "en_US") so that
// segment languages and per-language voice settings always agree on a key.
// Unparseable codes are lowercased as-is.
func NormalizeLang(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// BookChapter generates the speech segments for one chapter of a book track,
// applying the bilingual alternation rule: primary-language text first, then
// the secondary-language text of the same content segment when the track is
// bilingual and the segment carries it.
func BookChapter(track domain.Track, chapterIndex int) ([]SpeechSegment, error) {
	if !track.IsBook() || track.Book == nil {
		return nil, fmt.Errorf("track %s has no book content", track.ID)
	}
	if chapterIndex < 0 || chapterIndex >= len(track.Book.Chapters) {
		return nil, fmt.Errorf("chapter %d out of range for track %s", chapterIndex, track.ID)
	}

	primary := NormalizeLang(track.PrimaryLanguage)
	secondary := NormalizeLang(track.SecondaryLanguage)
	bilingual := track.Bilingual()

	chapter := track.Book.Chapters[chapterIndex]
	segments := make([]SpeechSegment, 0, len(chapter.Segments))

	for _, cs := range chapter.Segments {
		if text := cs.TextIn(track.PrimaryLanguage); text != "" {
			segments = append(segments, SpeechSegment{
				Text:              text,
				Lang:              primary,
				OriginalSegmentID: cs.ID,
			})
		}
		if bilingual {
			if text := cs.TextIn(track.SecondaryLanguage); text != "" {
				segments = append(segments, SpeechSegment{
					Text:              text,
					Lang:              secondary,
					OriginalSegmentID: cs.ID,
				})
			}
		}
	}

	return segments, nil
}

// StatsFor computes the cumulative per-chapter segment counts of a book
// track under the same generation rules as BookChapter.
func StatsFor(track domain.Track) BookStats {
	if !track.IsBook() || track.Book == nil {
		return BookStats{}
	}

	stats := BookStats{
		CumulativePerChapter: make([]int, len(track.Book.Chapters)),
	}

	bilingual := track.Bilingual()
	total := 0
	for i, chapter := range track.Book.Chapters {
		for _, cs := range chapter.Segments {
			if cs.TextIn(track.PrimaryLanguage) != "" {
				total++
			}
			if bilingual && cs.TextIn(track.SecondaryLanguage) != "" {
				total++
			}
		}
		stats.CumulativePerChapter[i] = total
	}
	stats.TotalSegments = total

	return stats
}

// VocabItems generates the speech segments for a vocabulary folder: per item,
// term then meaning then the example sentence when present. Items without an
// example contribute two segments; indexing downstream stays gapless because
// the slice is dense.
func VocabItems(items []domain.VocabItem) []SpeechSegment {
	segments := make([]SpeechSegment, 0, len(items)*3)

	for _, item := range items {
		segments = append(segments,
			SpeechSegment{
				Text:              item.Term,
				Lang:              NormalizeLang(item.TermLanguage),
				OriginalSegmentID: item.ID,
			},
			SpeechSegment{
				Text:              item.Meaning,
				Lang:              NormalizeLang(item.MeaningLanguage),
				OriginalSegmentID: item.ID,
			},
		)

		if item.Example == "" {
			continue
		}
		lang := item.ExampleLanguage
		if lang == "" {
			lang = item.TermLanguage
		}
		segments = append(segments, SpeechSegment{
			Text:              item.Example,
			Lang:              NormalizeLang(lang),
			OriginalSegmentID: item.ID,
		})
	}

	return segments
}
