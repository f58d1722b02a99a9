// Package backend provides a Go client for the sketch2story generation backend.
// The backend captions an uploaded image, writes a children's story from the caption
// and keywords, and can narrate the story as mp3 audio.
package backend

// Story lengths accepted by the backend
const (
	StoryLengthShort = "short"
	StoryLengthLong  = "long"
)

// StoryRequest is the JSON body of POST /generate-story
type StoryRequest struct {
	// ImageDescription is the caption returned by /process-image
	ImageDescription string `json:"imageDescription"`

	// Keywords is the story theme or moral lesson
	Keywords string `json:"keywords"`

	// StoryLength is "short" or "long"
	StoryLength string `json:"storyLength"`

	// VocabularyLevel is a key from /vocabulary-levels, omitted to use the backend default
	VocabularyLevel string `json:"vocabularyLevel,omitempty"`

	// GenerateAudio asks the backend to narrate the story
	GenerateAudio bool `json:"generateAudio"`

	// Voice is a voice id from /voices
	Voice string `json:"voice"`
}

// VocabularyWord is a single learning entry extracted from a story
type VocabularyWord struct {
	Word            string `json:"word"`
	Definition      string `json:"definition"`
	StorySentence   string `json:"story_sentence"`
	ExampleSentence string `json:"example_sentence"`
}

// StoryResponse is the 200 response of POST /generate-story
type StoryResponse struct {
	Success          bool             `json:"success"`
	Story            string           `json:"story"`
	ImageDescription string           `json:"imageDescription,omitempty"`
	Keywords         string           `json:"keywords,omitempty"`
	VocabularyLevel  string           `json:"vocabularyLevel,omitempty"`
	VocabularyWords  []VocabularyWord `json:"vocabularyWords,omitempty"`
	Model            string           `json:"model,omitempty"`

	// AudioGenerated is true when AudioData carries a narration
	AudioGenerated bool `json:"audioGenerated"`

	// AudioData is a data URL, e.g. "data:audio/mp3;base64,..."
	AudioData string `json:"audioData,omitempty"`

	// AudioError explains why narration was requested but not produced
	AudioError string `json:"audioError,omitempty"`

	Voice string `json:"voice,omitempty"`
}

// ProcessImageResponse is the 200 response of POST /process-image
type ProcessImageResponse struct {
	Success bool   `json:"success"`
	Caption string `json:"caption"`
}

// Voice describes a narration voice offered by the backend
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VoicesResponse is the response of GET /voices
type VoicesResponse struct {
	Success     bool    `json:"success"`
	Voices      []Voice `json:"voices"`
	Recommended string  `json:"recommended"`
}

// VocabularyLevel describes a vocabulary difficulty level
type VocabularyLevel struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TargetLength string `json:"target_length,omitempty"`
	Examples     string `json:"examples,omitempty"`
}

// LevelsResponse is the response of GET /vocabulary-levels
type LevelsResponse struct {
	Success bool                       `json:"success"`
	Levels  map[string]VocabularyLevel `json:"levels"`
	Default string                     `json:"default"`
}

// HealthResponse is the response of GET /health
type HealthResponse struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	OpenAIConfigured bool     `json:"openai_configured"`
	Features         []string `json:"features"`
}

// APIError is a structured error payload returned by the backend
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}
