package workflow

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"sketch2story/backend"
)

// AnalyzeRequest is an in-flight caption request
type AnalyzeRequest struct {
	Path string

	id      uint64
	fileGen uint64
}

// GenerateRequest is an in-flight story request. Body is what gets sent; the
// audio preference is captured in it and not re-read at completion.
type GenerateRequest struct {
	Body backend.StoryRequest

	id      uint64
	fileGen uint64
}

// Session is the single live story workflow. It is not safe for concurrent
// use; callers deliver completions to it one at a time.
type Session struct {
	baseURL string

	step     Step
	viewMode ViewMode

	file    *File
	fileGen uint64
	preview string
	caption string

	params     Parameters
	defaults   Parameters
	voiceSet   bool
	levelSet   bool
	catalogs   Catalogs
	result     *Result
	err        error
	analyzing  bool
	generating bool

	// id of the request currently in flight, 0 when idle
	inflight uint64
	nextID   uint64

	playback *Playback
}

// NewSession creates a session in the Upload step. baseURL only appears in
// network error messages.
func NewSession(baseURL string, media MediaElement) *Session {
	if baseURL == "" {
		baseURL = backend.DefaultBaseURL
	}
	return &Session{
		baseURL:  baseURL,
		params:   DefaultParameters(),
		defaults: DefaultParameters(),
		playback: NewPlayback(media),
	}
}

func (s *Session) Step() Step             { return s.step }
func (s *Session) ViewMode() ViewMode     { return s.viewMode }
func (s *Session) File() *File            { return s.file }
func (s *Session) FileGeneration() uint64 { return s.fileGen }
func (s *Session) Preview() string        { return s.preview }
func (s *Session) Caption() string        { return s.caption }
func (s *Session) Parameters() Parameters { return s.params }
func (s *Session) Catalogs() Catalogs     { return s.catalogs }
func (s *Session) Result() *Result        { return s.result }
func (s *Session) Err() error             { return s.err }
func (s *Session) AnalyzingImage() bool   { return s.analyzing }
func (s *Session) GeneratingStory() bool  { return s.generating }
func (s *Session) Busy() bool             { return s.analyzing || s.generating }
func (s *Session) Playback() *Playback    { return s.playback }
func (s *Session) Narrating() bool        { return s.playback.Narrating() }
func (s *Session) BaseURL() string        { return s.baseURL }

// ErrorMessage returns the active error text, or ""
func (s *Session) ErrorMessage() string {
	if s.err == nil {
		return ""
	}
	return s.err.Error()
}

// SelectFile runs f through validation. A rejected file sets the error and
// keeps the previous selection; an accepted one starts the workflow over.
func (s *Session) SelectFile(f *File) error {
	if err := Validate(f); err != nil {
		s.err = err
		return err
	}

	s.playback.Stop()
	s.file = f
	s.fileGen++
	s.preview = ""
	s.caption = ""
	s.result = nil
	s.err = nil
	s.step = StepUpload
	s.viewMode = ViewStory
	return nil
}

// SetPreview stores a rendered preview if it still belongs to the selected file
func (s *Session) SetPreview(fileGen uint64, preview string) bool {
	if s.file == nil || fileGen != s.fileGen {
		return false
	}
	s.preview = preview
	return true
}

// BeginAnalyze marks a caption request as started. It reports false when there
// is no file, the session has left the Upload step or another request is in
// flight.
func (s *Session) BeginAnalyze() (AnalyzeRequest, bool) {
	if s.file == nil || s.step != StepUpload || s.Busy() {
		return AnalyzeRequest{}, false
	}
	s.nextID++
	s.inflight = s.nextID
	s.analyzing = true
	s.err = nil
	return AnalyzeRequest{Path: s.file.Path, id: s.inflight, fileGen: s.fileGen}, true
}

// FinishAnalyze applies the outcome of a caption request. It reports whether
// the outcome changed the session.
func (s *Session) FinishAnalyze(req AnalyzeRequest, caption string, err error) bool {
	if req.id == 0 || req.id != s.inflight {
		return false
	}
	s.inflight = 0
	s.analyzing = false
	s.err = nil

	if req.fileGen != s.fileGen {
		return false
	}

	if err == nil && strings.TrimSpace(caption) == "" {
		err = &backend.APIError{Message: opAnalyze}
	}
	if err != nil {
		s.err = classify(opAnalyze, s.baseURL, err)
		return true
	}

	s.caption = caption
	s.step = StepConfigure
	return true
}

// BeginGenerate marks a story request as started. It reports false, changing
// nothing, when there is no caption, the keywords are blank or a request is in
// flight.
func (s *Session) BeginGenerate() (GenerateRequest, bool) {
	keywords := strings.TrimSpace(s.params.Keywords)
	if s.caption == "" || keywords == "" || s.Busy() {
		return GenerateRequest{}, false
	}
	s.nextID++
	s.inflight = s.nextID
	s.generating = true
	s.err = nil

	body := backend.StoryRequest{
		ImageDescription: s.caption,
		Keywords:         keywords,
		StoryLength:      string(s.params.StoryLength),
		VocabularyLevel:  s.params.VocabularyLevel,
		GenerateAudio:    s.params.GenerateAudio,
		Voice:            s.params.Voice,
	}
	return GenerateRequest{Body: body, id: s.inflight, fileGen: s.fileGen}, true
}

// FinishGenerate applies the outcome of a story request
func (s *Session) FinishGenerate(req GenerateRequest, resp *backend.StoryResponse, err error) bool {
	if req.id == 0 || req.id != s.inflight {
		return false
	}
	s.inflight = 0
	s.generating = false
	s.err = nil

	if req.fileGen != s.fileGen {
		return false
	}

	if err == nil && (resp == nil || strings.TrimSpace(resp.Story) == "") {
		err = &backend.APIError{Message: opGenerate}
	}
	if err != nil {
		s.err = classify(opGenerate, s.baseURL, err)
		return true
	}

	result := &Result{
		Story:           resp.Story,
		VocabularyWords: make([]VocabularyWord, 0, len(resp.VocabularyWords)),
		Model:           resp.Model,
		Keywords:        req.Body.Keywords,
		VocabularyLevel: req.Body.VocabularyLevel,
		Caption:         req.Body.ImageDescription,
	}
	for _, w := range resp.VocabularyWords {
		result.VocabularyWords = append(result.VocabularyWords, VocabularyWord{
			Word:            w.Word,
			Definition:      w.Definition,
			SourceSentence:  w.StorySentence,
			ExampleSentence: w.ExampleSentence,
		})
	}

	if req.Body.GenerateAudio {
		switch {
		case resp.AudioGenerated && resp.AudioData != "":
			asset, perr := ParseAudioDataURL(resp.AudioData)
			if perr != nil {
				result.AudioNotice = fmt.Sprintf("Narration could not be decoded: %v", perr)
				break
			}
			asset.Voice = resp.Voice
			if asset.Voice == "" {
				asset.Voice = req.Body.Voice
			}
			result.Audio = asset
		case resp.AudioError != "":
			result.AudioNotice = resp.AudioError
		default:
			result.AudioNotice = "Narration was not generated"
		}
	}

	s.result = result
	s.step = StepResult
	s.viewMode = ViewStory
	if err := s.playback.Load(result.Audio); err != nil {
		result.Audio = nil
		result.AudioNotice = err.Error()
	}
	return true
}

// Back returns from Result to Configure, keeping the caption, parameters and
// preview
func (s *Session) Back() bool {
	if s.step != StepResult {
		return false
	}
	s.playback.Stop()
	s.result = nil
	s.err = nil
	s.step = StepConfigure
	s.viewMode = ViewStory
	return true
}

// Reset returns every field except the catalogs to its initial value. Any
// in-flight request is orphaned and its completion ignored.
func (s *Session) Reset() {
	s.playback.Stop()
	s.step = StepUpload
	s.viewMode = ViewStory
	s.file = nil
	s.fileGen++
	s.preview = ""
	s.caption = ""
	s.params = s.defaults
	s.voiceSet = false
	s.levelSet = false
	s.result = nil
	s.err = nil
	s.analyzing = false
	s.generating = false
	s.inflight = 0
}

// SetKeywords sets the story theme
func (s *Session) SetKeywords(keywords string) error {
	if s.Busy() {
		return ErrNotEditable
	}
	s.params.Keywords = keywords
	return nil
}

// SetStoryLength accepts only "short" or "long"
func (s *Session) SetStoryLength(length StoryLength) error {
	if s.Busy() {
		return ErrNotEditable
	}
	if !length.Valid() {
		return fmt.Errorf("unknown story length %q", length)
	}
	s.params.StoryLength = length
	return nil
}

// SetVocabularyLevel selects a level; once the catalog is loaded the key must exist in it
func (s *Session) SetVocabularyLevel(key string) error {
	if s.Busy() {
		return ErrNotEditable
	}
	if s.catalogs.levelsLoaded {
		if _, ok := s.catalogs.Level(key); !ok {
			return fmt.Errorf("unknown vocabulary level %q", key)
		}
	}
	s.params.VocabularyLevel = key
	s.levelSet = true
	return nil
}

// SetGenerateAudio toggles narration for the next request
func (s *Session) SetGenerateAudio(on bool) error {
	if s.Busy() {
		return ErrNotEditable
	}
	s.params.GenerateAudio = on
	return nil
}

// SetVoice selects a narration voice; once the catalog is loaded the id must exist in it
func (s *Session) SetVoice(id string) error {
	if s.Busy() {
		return ErrNotEditable
	}
	if s.catalogs.voicesLoaded {
		if _, ok := s.catalogs.Voice(id); !ok {
			return fmt.Errorf("unknown voice %q", id)
		}
	}
	s.params.Voice = id
	s.voiceSet = true
	return nil
}

// ApplyVoices stores the voice catalog. A failed fetch leaves the catalog
// empty and the default voice in place. The catalog is only taken once.
func (s *Session) ApplyVoices(resp *backend.VoicesResponse, err error) {
	if err != nil || resp == nil || s.catalogs.voicesLoaded {
		return
	}
	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, Voice{ID: v.ID, Name: v.Name, Description: v.Description})
	}
	s.catalogs.Voices = voices
	s.catalogs.voicesLoaded = true

	if resp.Recommended != "" {
		s.defaults.Voice = resp.Recommended
		if !s.voiceSet {
			s.params.Voice = resp.Recommended
		}
	}
}

// ApplyLevels stores the vocabulary level catalog, ordered from easiest to hardest
func (s *Session) ApplyLevels(resp *backend.LevelsResponse, err error) {
	if err != nil || resp == nil || s.catalogs.levelsLoaded {
		return
	}
	levels := make([]Level, 0, len(resp.Levels))
	for key, l := range resp.Levels {
		levels = append(levels, Level{
			Key:          key,
			Name:         l.Name,
			Description:  l.Description,
			TargetLength: l.TargetLength,
			Examples:     l.Examples,
		})
	}
	sortLevels(levels)
	s.catalogs.Levels = levels
	s.catalogs.levelsLoaded = true

	if resp.Default != "" {
		s.defaults.VocabularyLevel = resp.Default
		if !s.levelSet {
			s.params.VocabularyLevel = resp.Default
		}
	}
}

var levelOrder = []string{"beginner", "intermediate", "advanced"}

func sortLevels(levels []Level) {
	rank := func(key string) int {
		if i := slices.Index(levelOrder, key); i >= 0 {
			return i
		}
		return len(levelOrder)
	}
	sort.SliceStable(levels, func(i, j int) bool {
		ri, rj := rank(levels[i].Key), rank(levels[j].Key)
		if ri != rj {
			return ri < rj
		}
		return levels[i].Key < levels[j].Key
	})
}

// SetViewMode switches between the story and vocabulary tabs of a result
func (s *Session) SetViewMode(mode ViewMode) bool {
	if s.step != StepResult {
		return false
	}
	s.viewMode = mode
	return true
}

// ToggleView flips between the story and vocabulary tabs
func (s *Session) ToggleView() bool {
	if s.viewMode == ViewStory {
		return s.SetViewMode(ViewVocabulary)
	}
	return s.SetViewMode(ViewStory)
}

// TogglePlayback asks the media element to play or pause the narration
func (s *Session) TogglePlayback() error {
	if s.step != StepResult || !s.result.HasAudio() {
		return ErrNoAudio
	}
	return s.playback.Toggle()
}

// HandleMediaEvent applies a media event, ignoring events for older results.
// A playback error reported by the element becomes the session error.
func (s *Session) HandleMediaEvent(ev MediaEvent) bool {
	if !s.playback.Handle(ev) {
		return false
	}
	if ev.Err != nil && !errors.Is(ev.Err, ErrNoAudio) {
		s.err = fmt.Errorf("narration playback failed: %w", ev.Err)
	}
	return true
}
