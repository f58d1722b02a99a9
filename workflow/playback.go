package workflow

import "fmt"

// PlaybackState is the narration player state as last confirmed by the media element
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

func (p PlaybackState) String() string {
	switch p {
	case PlaybackIdle:
		return "idle"
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return fmt.Sprintf("playback(%d)", int(p))
	}
}

// MediaEventKind is a notification from the media element
type MediaEventKind int

const (
	MediaPlay MediaEventKind = iota
	MediaPause
	MediaEnded
)

// MediaEvent reports that the media element actually started, paused or finished.
// Generation is the value passed to Load for the asset the event belongs to.
type MediaEvent struct {
	Kind       MediaEventKind
	Generation uint64
	Err        error
}

// MediaElement plays a narration and reports what it did on Events
type MediaElement interface {
	Load(asset *AudioAsset, generation uint64) error
	Play() error
	Pause() error
	Stop() error
	Events() <-chan MediaEvent
}

// Playback tracks narration for the current result. Its state only moves on
// media events; Toggle asks the element to act and waits to be told.
type Playback struct {
	media      MediaElement
	state      PlaybackState
	narrating  bool
	available  bool
	generation uint64
}

// NewPlayback creates a controller over media (NopMedia when nil)
func NewPlayback(media MediaElement) *Playback {
	if media == nil {
		media = NopMedia{}
	}
	return &Playback{media: media}
}

// State returns the confirmed playback state
func (p *Playback) State() PlaybackState { return p.state }

// Narrating reports whether the media element last confirmed it is playing
func (p *Playback) Narrating() bool { return p.narrating }

// Available reports whether a narration is loaded
func (p *Playback) Available() bool { return p.available }

// Generation identifies the currently loaded asset
func (p *Playback) Generation() uint64 { return p.generation }

// Media returns the underlying element
func (p *Playback) Media() MediaElement { return p.media }

// Load stops whatever was playing and loads asset in Idle. A nil asset leaves
// playback unavailable.
func (p *Playback) Load(asset *AudioAsset) error {
	p.Stop()
	if asset == nil {
		return nil
	}
	if err := p.media.Load(asset, p.generation); err != nil {
		return fmt.Errorf("failed to load narration: %w", err)
	}
	p.available = true
	return nil
}

// Stop halts narration and invalidates events from the previous asset
func (p *Playback) Stop() {
	if p.available {
		_ = p.media.Stop()
	}
	p.generation++
	p.state = PlaybackIdle
	p.narrating = false
	p.available = false
}

// Toggle issues Play from Idle or Paused and Pause from Playing
func (p *Playback) Toggle() error {
	if !p.available {
		return ErrNoAudio
	}
	if p.state == PlaybackPlaying {
		return p.media.Pause()
	}
	return p.media.Play()
}

// Handle applies a media event. It returns false for events from an older asset.
func (p *Playback) Handle(ev MediaEvent) bool {
	if !p.available || ev.Generation != p.generation {
		return false
	}
	switch ev.Kind {
	case MediaPlay:
		p.state = PlaybackPlaying
		p.narrating = true
	case MediaPause, MediaEnded:
		p.state = PlaybackPaused
		p.narrating = false
	default:
		return false
	}
	return true
}

// NopMedia is a media element that never plays anything
type NopMedia struct{}

func (NopMedia) Load(*AudioAsset, uint64) error { return nil }
func (NopMedia) Play() error                    { return ErrNoAudio }
func (NopMedia) Pause() error                   { return nil }
func (NopMedia) Stop() error                    { return nil }
func (NopMedia) Events() <-chan MediaEvent      { return nil }
