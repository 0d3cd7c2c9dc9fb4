package engine

// Progress reports overall progress through the current track in percent.
// For books it counts segments across all chapters using the precomputed
// cumulative totals, so it is O(1) per query. For vocabulary folders it is
// the fraction of the folder's speech segments spoken so far. Without an
// active track it is zero.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *Engine) progressLocked() float64 {
	track, ok := e.currentTrackLocked()
	if !ok || len(e.cache) == 0 {
		return 0
	}

	if track.IsBook() {
		if e.stats.TotalSegments == 0 {
			return 0
		}
		ch := 0
		if e.position.ChapterIndex != nil {
			ch = *e.position.ChapterIndex
		}
		done := e.stats.SegmentsBefore(ch) + e.position.SegmentIndex
		return float64(done) / float64(e.stats.TotalSegments) * 100
	}

	return float64(e.position.SegmentIndex+1) / float64(len(e.cache)) * 100
}
