// Package workflow holds the client-side story session: the upload, configure and
// result steps, the parameters a user adjusts between them, the two backend
// requests that move the session forward, and the narration playback state.
package workflow

import "fmt"

// Step identifies where the session is in the upload → configure → result flow
type Step int

const (
	StepUpload Step = iota
	StepConfigure
	StepResult
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepConfigure:
		return "configure"
	case StepResult:
		return "result"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ViewMode selects which tab of a result is shown
type ViewMode int

const (
	ViewStory ViewMode = iota
	ViewVocabulary
)

func (v ViewMode) String() string {
	if v == ViewVocabulary {
		return "vocabulary"
	}
	return "story"
}

// StoryLength is the requested story size
type StoryLength string

const (
	LengthShort StoryLength = "short"
	LengthLong  StoryLength = "long"
)

// Valid reports whether the backend accepts l
func (l StoryLength) Valid() bool {
	return l == LengthShort || l == LengthLong
}

// Defaults applied to a fresh session
const (
	DefaultVocabularyLevel = "intermediate"
	DefaultVoice           = "nova"
)

// File describes the selected image
type File struct {
	Path      string
	Name      string
	MediaType string
	Size      int64
}

// Parameters are the user-adjustable generation settings
type Parameters struct {
	Keywords        string
	StoryLength     StoryLength
	VocabularyLevel string
	GenerateAudio   bool
	Voice           string
}

// DefaultParameters returns the settings a new session starts with
func DefaultParameters() Parameters {
	return Parameters{
		StoryLength:     LengthShort,
		VocabularyLevel: DefaultVocabularyLevel,
		Voice:           DefaultVoice,
	}
}

// Voice is a narration voice from the backend catalog
type Voice struct {
	ID          string
	Name        string
	Description string
}

// Level is a vocabulary difficulty level from the backend catalog
type Level struct {
	Key          string
	Name         string
	Description  string
	TargetLength string
	Examples     string
}

// Catalogs are the reference lists fetched once per session
type Catalogs struct {
	Voices []Voice
	Levels []Level

	voicesLoaded bool
	levelsLoaded bool
}

// VoicesLoaded reports whether the voice catalog was fetched successfully
func (c Catalogs) VoicesLoaded() bool { return c.voicesLoaded }

// LevelsLoaded reports whether the level catalog was fetched successfully
func (c Catalogs) LevelsLoaded() bool { return c.levelsLoaded }

// Voice looks up a voice by id
func (c Catalogs) Voice(id string) (Voice, bool) {
	for _, v := range c.Voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// Level looks up a vocabulary level by key
func (c Catalogs) Level(key string) (Level, bool) {
	for _, l := range c.Levels {
		if l.Key == key {
			return l, true
		}
	}
	return Level{}, false
}

// VocabularyWord is one learning entry of a result
type VocabularyWord struct {
	Word            string
	Definition      string
	SourceSentence  string
	ExampleSentence string
}

// AudioAsset is a decoded narration
type AudioAsset struct {
	MediaType string
	Data      []byte
	Voice     string
}

// Result is what a successful generation produced
type Result struct {
	Story           string
	VocabularyWords []VocabularyWord
	Audio           *AudioAsset

	// AudioNotice is set when narration was requested but not delivered
	AudioNotice string

	Model           string
	Keywords        string
	VocabularyLevel string
	Caption         string
}

// HasAudio reports whether the result carries a narration
func (r *Result) HasAudio() bool {
	return r != nil && r.Audio != nil
}
