package engine_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/clock"
	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/speech"
)

type noticeRecorder struct {
	mu      sync.Mutex
	notices []string
}

func (r *noticeRecorder) notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, title+": "+message)
}

func (r *noticeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	copy(out, r.notices)
	return out
}

func newSleepRig(t *testing.T) (*engine.Engine, *speech.Mock, *clock.Mock, *noticeRecorder) {
	t.Helper()
	synth := speech.NewMock()
	cl := clock.NewMock(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))
	rec := &noticeRecorder{}
	e := engine.New(engine.Options{
		Synth:  synth,
		Clock:  cl,
		Notify: rec.notify,
	})
	return e, synth, cl, rec
}

func TestSleepTimer_PausesOnExpiry(t *testing.T) {
	e, synth, cl, rec := newSleepRig(t)
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 1
	e.SetSleepTimer(&m)

	cl.Advance(59 * time.Second)
	assert.True(t, e.GetState().Status.IsPlaying())

	cl.Advance(2 * time.Second)

	state := e.GetState()
	assert.True(t, state.Status.IsPaused())
	assert.True(t, synth.Paused())
	// Expiry clears the stored setting.
	assert.Nil(t, state.Settings.SleepTimer.DurationMin)
	assert.Nil(t, state.Settings.SleepTimer.StartedAt)
	assert.Equal(t, []string{"Sleep timer: Playback paused"}, rec.all())
}

func TestSleepTimer_PauseSuspendsCountdown(t *testing.T) {
	e, _, cl, rec := newSleepRig(t)
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 2
	e.SetSleepTimer(&m)
	cl.Advance(time.Minute)
	e.Pause()

	// While paused the countdown is disarmed; time passing changes nothing.
	cl.Advance(10 * time.Minute)
	state := e.GetState()
	assert.True(t, state.Status.IsPaused())
	require.NotNil(t, state.Settings.SleepTimer.DurationMin)
	assert.Empty(t, rec.all())
}

func TestSleepTimer_ResumeRearmsForRemainingTime(t *testing.T) {
	e, _, cl, rec := newSleepRig(t)
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 2
	e.SetSleepTimer(&m)
	cl.Advance(90 * time.Second)
	e.Pause()
	e.Resume()

	// 30 seconds of the original two minutes remain.
	cl.Advance(29 * time.Second)
	assert.True(t, e.GetState().Status.IsPlaying())

	cl.Advance(2 * time.Second)
	assert.True(t, e.GetState().Status.IsPaused())
	assert.Len(t, rec.all(), 1)
}

func TestSleepTimer_ClearDisarms(t *testing.T) {
	e, _, cl, rec := newSleepRig(t)
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 1
	e.SetSleepTimer(&m)
	e.SetSleepTimer(nil)

	cl.Advance(10 * time.Minute)
	state := e.GetState()
	assert.True(t, state.Status.IsPlaying())
	assert.Nil(t, state.Settings.SleepTimer.DurationMin)
	assert.Empty(t, rec.all())
}

func TestSleepTimer_TrackChangeKeepsSettingButExpiresOnSchedule(t *testing.T) {
	e, _, cl, _ := newSleepRig(t)
	e.AddToPlaylist(monoBook("book_b"))
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 2
	e.SetSleepTimer(&m)
	cl.Advance(time.Minute)

	e.JumpToTrack(0)
	waitPlaying(t, e)

	// The countdown survives the track change with its original deadline.
	cl.Advance(61 * time.Second)
	assert.True(t, e.GetState().Status.IsPaused())
}

func TestSleepTimer_StopDisarmsCountdown(t *testing.T) {
	e, _, cl, rec := newSleepRig(t)
	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)

	m := 1
	e.SetSleepTimer(&m)
	e.Stop()

	cl.Advance(10 * time.Minute)
	assert.Equal(t, domain.StatusIdle, e.GetState().Status.Kind)
	assert.Empty(t, rec.all())
}
