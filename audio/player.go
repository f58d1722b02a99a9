// Package audio plays story narration through an ffplay subprocess and
// reports what the player actually did as workflow media events.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"sketch2story/workflow"
)

// DefaultCommand is the player binary looked up on PATH
const DefaultCommand = "ffplay"

// Player is a workflow.MediaElement backed by ffplay
type Player struct {
	command string
	dir     string
	logger  *slog.Logger
	events  chan workflow.MediaEvent

	mu         sync.Mutex
	path       string
	generation uint64
	proc       *process
}

// process is one ffplay run
type process struct {
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
	paused  bool
	stopped bool
}

var _ workflow.MediaElement = (*Player)(nil)

// Option configures a Player
type Option func(*Player)

// WithCommand sets the player binary
func WithCommand(command string) Option {
	return func(p *Player) {
		if command != "" {
			p.command = command
		}
	}
}

// WithTempDir sets where decoded narration files are written
func WithTempDir(dir string) Option {
	return func(p *Player) {
		p.dir = dir
	}
}

// WithLogger sets the player's logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlayer creates an idle player
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		command: DefaultCommand,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		events:  make(chan workflow.MediaEvent, 16),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events delivers play, pause and ended notifications
func (p *Player) Events() <-chan workflow.MediaEvent {
	return p.events
}

// Load writes the narration to a temp file and makes it current
func (p *Player) Load(asset *workflow.AudioAsset, generation uint64) error {
	if asset == nil || len(asset.Data) == 0 {
		return fmt.Errorf("no narration data")
	}

	f, err := os.CreateTemp(p.dir, "sketch2story-narration-*"+extensionFor(asset.MediaType))
	if err != nil {
		return fmt.Errorf("failed to create narration file: %w", err)
	}
	if _, err := f.Write(asset.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write narration file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("failed to write narration file: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.removeLocked()
	p.path = f.Name()
	p.generation = generation
	p.logger.Debug("narration loaded", "path", p.path, "bytes", len(asset.Data), "generation", generation)
	return nil
}

// Path returns the file of the current narration
func (p *Player) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Play starts the narration, or resumes it when paused
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.path == "" {
		return workflow.ErrNoAudio
	}

	if p.proc != nil {
		if p.proc.paused {
			if err := resume(p.proc.cmd.Process); err != nil {
				return fmt.Errorf("failed to resume narration: %w", err)
			}
			p.proc.paused = false
		}
		p.emit(workflow.MediaEvent{Kind: workflow.MediaPlay, Generation: p.generation})
		return nil
	}

	args := []string{"-nodisp", "-autoexit", "-loglevel", "error", p.path}
	cmd := exec.Command(p.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.command, err)
	}

	proc := &process{cmd: cmd, stderr: &stderr}
	p.proc = proc
	p.logger.Debug("narration started", "command", p.command, "pid", cmd.Process.Pid)
	go p.wait(proc, p.generation)

	p.emit(workflow.MediaEvent{Kind: workflow.MediaPlay, Generation: p.generation})
	return nil
}

// Pause suspends the narration. Where the process cannot be suspended the
// run is stopped and the next Play starts from the beginning.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.proc == nil || p.proc.paused {
		return nil
	}

	if canSuspend {
		if err := suspend(p.proc.cmd.Process); err != nil {
			return fmt.Errorf("failed to pause narration: %w", err)
		}
		p.proc.paused = true
	} else {
		p.stopLocked()
	}
	p.emit(workflow.MediaEvent{Kind: workflow.MediaPause, Generation: p.generation})
	return nil
}

// Stop ends the current run without emitting an event
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Close stops playback and removes the narration file
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.removeLocked()
	return nil
}

func (p *Player) wait(proc *process, generation uint64) {
	err := proc.cmd.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if proc.stopped {
		return
	}
	if p.proc == proc {
		p.proc = nil
	}

	ev := workflow.MediaEvent{Kind: workflow.MediaEnded, Generation: generation}
	if err != nil {
		msg := strings.TrimSpace(proc.stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		ev.Err = err
		p.logger.Warn("narration player exited with error", "error", err)
	} else {
		p.logger.Debug("narration finished", "generation", generation)
	}
	p.emit(ev)
}

func (p *Player) stopLocked() {
	if p.proc == nil {
		return
	}
	p.proc.stopped = true
	if p.proc.cmd.Process != nil {
		if err := p.proc.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.logger.Warn("failed to stop narration player", "error", err)
		}
	}
	p.proc = nil
}

func (p *Player) removeLocked() {
	if p.path == "" {
		return
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("failed to remove narration file", "path", p.path, "error", err)
	}
	p.path = ""
}

// emit never blocks; a full buffer drops the event
func (p *Player) emit(ev workflow.MediaEvent) {
	select {
	case p.events <- ev:
	default:
		p.logger.Warn("media event dropped", "kind", ev.Kind, "generation", ev.Generation)
	}
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".mp3"
	}
}
