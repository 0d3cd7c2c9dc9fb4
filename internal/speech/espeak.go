package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ESpeak is a Synthesizer backed by the espeak-ng (or espeak) command-line
// tool. It produces no word-boundary events; completion is reported when the
// process exits.
type ESpeak struct {
	path string

	mu        sync.Mutex
	cmd       *exec.Cmd
	cancelled bool
	paused    bool
}

// NewESpeak locates the espeak executable and verifies it runs.
func NewESpeak() (*ESpeak, error) {
	path, err := findESpeak()
	if err != nil {
		return nil, err
	}
	if err := exec.Command(path, "--version").Run(); err != nil {
		return nil, fmt.Errorf("espeak check failed: %w", err)
	}
	return &ESpeak{path: path}, nil
}

func findESpeak() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("espeak executable not found in PATH")
}

// Speak implements Synthesizer. Any in-flight utterance is cancelled first.
func (e *ESpeak) Speak(u Utterance) error {
	e.mu.Lock()
	e.killLocked()

	args := e.buildArgs(u)
	cmd := exec.Command(e.path, args...)
	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("start espeak: %w", err)
	}
	e.cmd = cmd
	e.cancelled = false
	e.paused = false
	e.mu.Unlock()

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		// A newer Speak or an explicit Cancel owns the state now.
		stale := e.cmd != cmd || e.cancelled
		if !stale {
			e.cmd = nil
		}
		e.mu.Unlock()

		if stale {
			return
		}
		if err != nil {
			if u.OnError != nil {
				u.OnError(fmt.Errorf("espeak: %w", err))
			}
			return
		}
		if u.OnEnd != nil {
			u.OnEnd()
		}
	}()

	return nil
}

func (e *ESpeak) buildArgs(u Utterance) []string {
	var args []string

	// Voice selection: explicit voice file wins, else the language code.
	switch {
	case u.VoiceURI != "":
		args = append(args, "-v", u.VoiceURI)
	case u.Lang != "":
		args = append(args, "-v", u.Lang)
	}

	// espeak speaks at 175 wpm by default; rate is a multiplier.
	rate := u.Rate
	if rate <= 0 {
		rate = 1.0
	}
	args = append(args, "-s", strconv.Itoa(int(175*rate)))

	// Pitch range is 0-99 with 50 as neutral.
	pitch := u.Pitch
	if pitch <= 0 {
		pitch = 1.0
	}
	p := int(50 * pitch)
	if p > 99 {
		p = 99
	}
	args = append(args, "-p", strconv.Itoa(p))

	return append(args, u.Text)
}

// Pause implements Synthesizer by suspending the espeak process.
func (e *ESpeak) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil || e.paused {
		return nil
	}
	if err := suspendProcess(e.cmd); err != nil {
		return err
	}
	e.paused = true
	return nil
}

// Resume implements Synthesizer.
func (e *ESpeak) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil || !e.paused {
		return nil
	}
	if err := resumeProcess(e.cmd); err != nil {
		return err
	}
	e.paused = false
	return nil
}

// Cancel implements Synthesizer. The killed utterance's callbacks are
// suppressed.
func (e *ESpeak) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.killLocked()
	return nil
}

func (e *ESpeak) killLocked() {
	if e.cmd != nil && e.cmd.Process != nil {
		e.cancelled = true
		_ = e.cmd.Process.Kill() //nolint:errcheck // already exited is fine
	}
	e.cmd = nil
	e.paused = false
}

// Voices implements Synthesizer by parsing `espeak --voices`.
func (e *ESpeak) Voices() ([]Voice, error) {
	out, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list espeak voices: %w", err)
	}
	return parseVoices(string(out)), nil
}

// parseVoices reads the tabular `--voices` output. Each line after the
// header is: Pty Language Age/Gender VoiceName File Other-Languages.
func parseVoices(output string) []Voice {
	lines := strings.Split(output, "\n")
	voices := make([]Voice, 0, len(lines))

	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		voices = append(voices, Voice{
			Name:     fields[3],
			Lang:     fields[1],
			VoiceURI: fields[4],
		})
	}

	return voices
}
