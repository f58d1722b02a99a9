package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch2story/backend"
)

// fakeMedia records calls and lets tests push events
type fakeMedia struct {
	loads  []uint64
	plays  int
	pauses int
	stops  int
	events chan MediaEvent
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{events: make(chan MediaEvent, 8)}
}

func (m *fakeMedia) Load(_ *AudioAsset, gen uint64) error {
	m.loads = append(m.loads, gen)
	return nil
}

func (m *fakeMedia) Play() error {
	m.plays++
	return nil
}

func (m *fakeMedia) Pause() error {
	m.pauses++
	return nil
}

func (m *fakeMedia) Stop() error {
	m.stops++
	return nil
}

func (m *fakeMedia) Events() <-chan MediaEvent { return m.events }

func pngFile(size int64) *File {
	return &File{Path: "/tmp/sketch.png", Name: "sketch.png", MediaType: "image/png", Size: size}
}

// toConfigure drives a session to the Configure step with a caption
func toConfigure(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SelectFile(pngFile(1024)))
	req, ok := s.BeginAnalyze()
	require.True(t, ok)
	s.FinishAnalyze(req, "a child drawing a sun", nil)
	require.Equal(t, StepConfigure, s.Step())
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("", nil)

	assert.Equal(t, StepUpload, s.Step())
	assert.Equal(t, ViewStory, s.ViewMode())
	assert.Equal(t, backend.DefaultBaseURL, s.BaseURL())

	p := s.Parameters()
	assert.Equal(t, "", p.Keywords)
	assert.Equal(t, LengthShort, p.StoryLength)
	assert.Equal(t, "intermediate", p.VocabularyLevel)
	assert.False(t, p.GenerateAudio)
	assert.Equal(t, "nova", p.Voice)
}

func TestSelectFile_RejectsNonImages(t *testing.T) {
	types := []string{"application/pdf", "text/plain", "video/mp4", "", "application/octet-stream"}
	for _, mt := range types {
		t.Run(mt, func(t *testing.T) {
			s := NewSession("", nil)
			err := s.SelectFile(&File{Path: "/tmp/x", MediaType: mt, Size: 10})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Please select a valid image file", verr.Message)
			assert.Nil(t, s.File())
			assert.Equal(t, "Please select a valid image file", s.ErrorMessage())
		})
	}
}

func TestSelectFile_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"exactly 10MiB", MaxFileSize, false},
		{"one byte over", MaxFileSize + 1, true},
		{"far over", 50 * 1024 * 1024, true},
		{"empty", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("", nil)
			err := s.SelectFile(pngFile(tt.size))
			if tt.wantErr {
				assert.EqualError(t, err, "File size must be less than 10MB")
				assert.Nil(t, s.File())
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s.File())
		})
	}
}

func TestSelectFile_RejectionKeepsPriorSelection(t *testing.T) {
	s := NewSession("", nil)
	toConfigure(t, s)
	prior := s.File()

	err := s.SelectFile(&File{Path: "/tmp/doc.pdf", MediaType: "application/pdf", Size: 10})
	require.Error(t, err)

	assert.Same(t, prior, s.File())
	assert.Equal(t, "a child drawing a sun", s.Caption())
	assert.Equal(t, StepConfigure, s.Step())
}

func TestSelectFile_AcceptanceStartsOver(t *testing.T) {
	s := NewSession("", nil)
	toConfigure(t, s)
	gen := s.FileGeneration()

	require.NoError(t, s.SelectFile(pngFile(2048)))

	assert.Equal(t, StepUpload, s.Step())
	assert.Empty(t, s.Caption())
	assert.Empty(t, s.Preview())
	assert.Nil(t, s.Result())
	assert.NoError(t, s.Err())
	assert.Greater(t, s.FileGeneration(), gen)
}

func TestSetPreview_DropsStale(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))
	first := s.FileGeneration()
	require.NoError(t, s.SelectFile(pngFile(20)))

	assert.False(t, s.SetPreview(first, "old"))
	assert.Empty(t, s.Preview())

	assert.True(t, s.SetPreview(s.FileGeneration(), "new"))
	assert.Equal(t, "new", s.Preview())

	s.Reset()
	assert.Empty(t, s.Preview())
}

func TestAnalyze_FlagsNeverOverlap(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))

	req, ok := s.BeginAnalyze()
	require.True(t, ok)
	assert.True(t, s.AnalyzingImage())

	// second trigger while in flight is a no-op
	_, ok = s.BeginAnalyze()
	assert.False(t, ok)
	_, ok = s.BeginGenerate()
	assert.False(t, ok)
	assert.False(t, s.AnalyzingImage() && s.GeneratingStory())

	s.FinishAnalyze(req, "a cat", nil)
	assert.False(t, s.AnalyzingImage())

	require.NoError(t, s.SetKeywords("friendship"))
	greq, ok := s.BeginGenerate()
	require.True(t, ok)
	assert.True(t, s.GeneratingStory())

	_, ok = s.BeginAnalyze()
	assert.False(t, ok)
	_, ok = s.BeginGenerate()
	assert.False(t, ok)
	assert.False(t, s.AnalyzingImage() && s.GeneratingStory())

	s.FinishGenerate(greq, &backend.StoryResponse{Success: true, Story: "Once"}, nil)
	assert.False(t, s.GeneratingStory())
}

func TestBeginAnalyze_OnlyFromUpload(t *testing.T) {
	media := newFakeMedia()
	s := NewSession("", media)
	toConfigure(t, s)

	_, ok := s.BeginAnalyze()
	assert.False(t, ok, "configure already has a caption")

	require.NoError(t, s.SetKeywords("kindness"))
	require.NoError(t, s.SetGenerateAudio(true))
	req, ok := s.BeginGenerate()
	require.True(t, ok)
	s.FinishGenerate(req, &backend.StoryResponse{Story: "Once", AudioGenerated: true, AudioData: "data:audio/mp3;base64,SUQz"}, nil)
	require.Equal(t, StepResult, s.Step())

	_, ok = s.BeginAnalyze()
	assert.False(t, ok)
	assert.False(t, s.AnalyzingImage())
	assert.Equal(t, StepResult, s.Step())
	assert.NotNil(t, s.Result())
	assert.True(t, s.Playback().Available())

	// leaving Result goes through Back, which clears the result and narration
	s.Back()
	assert.Equal(t, StepConfigure, s.Step())
	assert.Nil(t, s.Result())
	assert.False(t, s.Playback().Available())

	// a fresh selection can be analyzed again
	require.NoError(t, s.SelectFile(pngFile(20)))
	_, ok = s.BeginAnalyze()
	assert.True(t, ok)
}

func TestFinishAnalyze_Success(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))
	req, _ := s.BeginAnalyze()

	s.FinishAnalyze(req, "  a dog under a tree ", nil)

	assert.Equal(t, StepConfigure, s.Step())
	assert.Equal(t, "  a dog under a tree ", s.Caption())
	assert.NoError(t, s.Err())
}

func TestFinishAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		err     error
		want    string
	}{
		{"backend message", "", &backend.APIError{StatusCode: 400, Message: "File must be an image"}, "File must be an image"},
		{"backend without message", "", &backend.APIError{StatusCode: 500}, "Failed to process image"},
		{"transport", "", errors.New("request failed: connection refused"), "Network error. Make sure the story backend is running at http://stories.test"},
		{"empty caption", "", nil, "Failed to process image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("http://stories.test", nil)
			require.NoError(t, s.SelectFile(pngFile(10)))
			req, _ := s.BeginAnalyze()

			s.FinishAnalyze(req, tt.caption, tt.err)

			assert.Equal(t, StepUpload, s.Step())
			assert.False(t, s.AnalyzingImage())
			assert.Equal(t, tt.want, s.ErrorMessage())
		})
	}
}

func TestFinishAnalyze_ErrorTypes(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))

	req, _ := s.BeginAnalyze()
	s.FinishAnalyze(req, "", &backend.APIError{StatusCode: 400, Message: "No image file provided"})
	var rerr *RequestError
	require.ErrorAs(t, s.Err(), &rerr)
	assert.Equal(t, 400, rerr.StatusCode)

	req, _ = s.BeginAnalyze()
	assert.NoError(t, s.Err(), "starting a request clears the previous error")
	cause := errors.New("dial tcp: refused")
	s.FinishAnalyze(req, "", cause)
	var terr *TransportError
	require.ErrorAs(t, s.Err(), &terr)
	assert.ErrorIs(t, s.Err(), cause)
}

func TestFinishAnalyze_StaleFileDiscarded(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))
	req, _ := s.BeginAnalyze()

	require.NoError(t, s.SelectFile(pngFile(20)))
	changed := s.FinishAnalyze(req, "caption for the old file", nil)

	assert.False(t, changed)
	assert.False(t, s.AnalyzingImage())
	assert.Empty(t, s.Caption())
	assert.Equal(t, StepUpload, s.Step())
}

func TestFinishAnalyze_AfterResetIgnored(t *testing.T) {
	s := NewSession("", nil)
	require.NoError(t, s.SelectFile(pngFile(10)))
	old, _ := s.BeginAnalyze()

	s.Reset()
	require.NoError(t, s.SelectFile(pngFile(20)))
	current, ok := s.BeginAnalyze()
	require.True(t, ok)

	assert.False(t, s.FinishAnalyze(old, "late", nil))
	assert.True(t, s.AnalyzingImage(), "a late completion must not release the new request")

	s.FinishAnalyze(current, "fresh", nil)
	assert.Equal(t, "fresh", s.Caption())
}

func TestBeginGenerate_BlankKeywordsNoOp(t *testing.T) {
	for _, kw := range []string{"", "   ", "\t\n"} {
		s := NewSession("", nil)
		toConfigure(t, s)
		require.NoError(t, s.SetKeywords(kw))
		before := *s

		_, ok := s.BeginGenerate()

		assert.False(t, ok)
		assert.False(t, s.GeneratingStory())
		assert.Equal(t, before, *s)
	}
}

func TestBeginGenerate_RequestBody(t *testing.T) {
	s := NewSession("", nil)
	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("  kindness "))
	require.NoError(t, s.SetStoryLength(LengthLong))
	require.NoError(t, s.SetGenerateAudio(true))

	req, ok := s.BeginGenerate()
	require.True(t, ok)

	assert.Equal(t, backend.StoryRequest{
		ImageDescription: "a child drawing a sun",
		Keywords:         "kindness",
		StoryLength:      "long",
		VocabularyLevel:  "intermediate",
		GenerateAudio:    true,
		Voice:            "nova",
	}, req.Body)
}

func TestFinishGenerate_AudioOnlyWhenRequested(t *testing.T) {
	s := NewSession("", newFakeMedia())
	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("kindness"))

	req, _ := s.BeginGenerate()
	s.FinishGenerate(req, &backend.StoryResponse{
		Success:        true,
		Story:          "Once upon a time",
		AudioGenerated: true,
		AudioData:      "data:audio/mp3;base64,SUQz",
	}, nil)

	require.Equal(t, StepResult, s.Step())
	assert.Nil(t, s.Result().Audio)
	assert.False(t, s.Playback().Available())
}

func TestFinishGenerate_AudioFlagCapturedAtRequest(t *testing.T) {
	s := NewSession("", newFakeMedia())
	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("kindness"))
	require.NoError(t, s.SetGenerateAudio(true))

	req, _ := s.BeginGenerate()
	// the session is busy, so the preference cannot be changed underneath the request
	assert.ErrorIs(t, s.SetGenerateAudio(false), ErrNotEditable)

	s.FinishGenerate(req, &backend.StoryResponse{
		Story:          "Once upon a time",
		AudioGenerated: true,
		AudioData:      "data:audio/mp3;base64,SUQz",
		Voice:          "nova",
	}, nil)

	require.NotNil(t, s.Result().Audio)
	assert.Equal(t, []byte("ID3"), s.Result().Audio.Data)
	assert.Equal(t, "audio/mp3", s.Result().Audio.MediaType)
	assert.Equal(t, "nova", s.Result().Audio.Voice)
}

func TestFinishGenerate_AudioNotice(t *testing.T) {
	tests := []struct {
		name string
		resp backend.StoryResponse
		want string
	}{
		{"backend reason", backend.StoryResponse{Story: "s", AudioError: "TTS quota exceeded"}, "TTS quota exceeded"},
		{"silently missing", backend.StoryResponse{Story: "s"}, "Narration was not generated"},
		{"undecodable", backend.StoryResponse{Story: "s", AudioGenerated: true, AudioData: "not a data url"}, "Narration could not be decoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("", newFakeMedia())
			toConfigure(t, s)
			require.NoError(t, s.SetKeywords("kindness"))
			require.NoError(t, s.SetGenerateAudio(true))
			req, _ := s.BeginGenerate()

			resp := tt.resp
			s.FinishGenerate(req, &resp, nil)

			require.Equal(t, StepResult, s.Step())
			assert.Nil(t, s.Result().Audio)
			assert.Contains(t, s.Result().AudioNotice, tt.want)
			assert.NoError(t, s.Err())
		})
	}
}

func TestFinishGenerate_Failure(t *testing.T) {
	s := NewSession("", nil)
	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("kindness"))

	req, _ := s.BeginGenerate()
	s.FinishGenerate(req, nil, &backend.APIError{StatusCode: 500, Message: "OpenAI API error"})

	assert.Equal(t, StepConfigure, s.Step())
	assert.Nil(t, s.Result())
	assert.Equal(t, "OpenAI API error", s.ErrorMessage())

	req, _ = s.BeginGenerate()
	s.FinishGenerate(req, &backend.StoryResponse{Success: true}, nil)
	assert.Equal(t, "Failed to generate story", s.ErrorMessage())
	assert.Equal(t, StepConfigure, s.Step())
}

func TestBackThenRegenerate_NoStaleVocabulary(t *testing.T) {
	s := NewSession("", nil)
	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("kindness"))

	req, _ := s.BeginGenerate()
	s.FinishGenerate(req, &backend.StoryResponse{
		Story: "first",
		VocabularyWords: []backend.VocabularyWord{
			{Word: "brave", Definition: "not afraid"},
		},
	}, nil)
	require.Len(t, s.Result().VocabularyWords, 1)
	require.True(t, s.SetViewMode(ViewVocabulary))

	require.True(t, s.Back())
	assert.Equal(t, StepConfigure, s.Step())
	assert.Equal(t, ViewStory, s.ViewMode())
	assert.Nil(t, s.Result())
	assert.Equal(t, "a child drawing a sun", s.Caption())
	assert.Equal(t, "kindness", s.Parameters().Keywords)

	req, _ = s.BeginGenerate()
	s.FinishGenerate(req, &backend.StoryResponse{Story: "second"}, nil)

	assert.Equal(t, "second", s.Result().Story)
	assert.NotNil(t, s.Result().VocabularyWords)
	assert.Empty(t, s.Result().VocabularyWords)
}

func TestBack_OnlyFromResult(t *testing.T) {
	s := NewSession("", nil)
	assert.False(t, s.Back())
	toConfigure(t, s)
	assert.False(t, s.Back())
	assert.Equal(t, StepConfigure, s.Step())
}

func TestReset_FromEveryStep(t *testing.T) {
	catalogs := func(s *Session) {
		s.ApplyVoices(&backend.VoicesResponse{Voices: []backend.Voice{{ID: "alloy"}, {ID: "nova"}}, Recommended: "nova"}, nil)
		s.ApplyLevels(&backend.LevelsResponse{Levels: map[string]backend.VocabularyLevel{"beginner": {}, "intermediate": {}}, Default: "intermediate"}, nil)
	}

	setups := map[string]func(t *testing.T, s *Session){
		"upload": func(t *testing.T, s *Session) {
			require.NoError(t, s.SelectFile(pngFile(10)))
			s.SetPreview(s.FileGeneration(), "preview")
		},
		"analyzing": func(t *testing.T, s *Session) {
			require.NoError(t, s.SelectFile(pngFile(10)))
			_, ok := s.BeginAnalyze()
			require.True(t, ok)
		},
		"configure": func(t *testing.T, s *Session) {
			toConfigure(t, s)
			require.NoError(t, s.SetKeywords("kindness"))
			require.NoError(t, s.SetVoice("alloy"))
			require.NoError(t, s.SetVocabularyLevel("beginner"))
			require.NoError(t, s.SetGenerateAudio(true))
		},
		"result with audio": func(t *testing.T, s *Session) {
			toConfigure(t, s)
			require.NoError(t, s.SetKeywords("kindness"))
			require.NoError(t, s.SetGenerateAudio(true))
			req, _ := s.BeginGenerate()
			s.FinishGenerate(req, &backend.StoryResponse{Story: "s", AudioGenerated: true, AudioData: "data:audio/mp3;base64,SUQz"}, nil)
			s.SetViewMode(ViewVocabulary)
		},
		"error": func(t *testing.T, s *Session) {
			_ = s.SelectFile(&File{MediaType: "text/plain"})
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			media := newFakeMedia()
			s := NewSession("", media)
			catalogs(s)
			setup(t, s)

			s.Reset()

			assert.Equal(t, StepUpload, s.Step())
			assert.Equal(t, ViewStory, s.ViewMode())
			assert.Nil(t, s.File())
			assert.Empty(t, s.Preview())
			assert.Empty(t, s.Caption())
			assert.Nil(t, s.Result())
			assert.NoError(t, s.Err())
			assert.False(t, s.AnalyzingImage())
			assert.False(t, s.GeneratingStory())
			assert.False(t, s.Narrating())
			assert.Equal(t, PlaybackIdle, s.Playback().State())
			assert.Equal(t, DefaultParameters(), s.Parameters())
			assert.Len(t, s.Catalogs().Voices, 2)
			assert.Len(t, s.Catalogs().Levels, 2)
		})
	}
}

func TestSetters(t *testing.T) {
	s := NewSession("", nil)

	assert.Error(t, s.SetStoryLength("medium"))
	assert.Equal(t, LengthShort, s.Parameters().StoryLength)

	// before the catalogs load any key is accepted
	require.NoError(t, s.SetVoice("shimmer"))
	require.NoError(t, s.SetVocabularyLevel("expert"))

	s = NewSession("", nil)
	s.ApplyVoices(&backend.VoicesResponse{Voices: []backend.Voice{{ID: "alloy"}, {ID: "nova"}}}, nil)
	s.ApplyLevels(&backend.LevelsResponse{Levels: map[string]backend.VocabularyLevel{"beginner": {}}}, nil)

	assert.Error(t, s.SetVoice("shimmer"))
	assert.Equal(t, "nova", s.Parameters().Voice)
	assert.NoError(t, s.SetVoice("alloy"))

	assert.Error(t, s.SetVocabularyLevel("expert"))
	assert.NoError(t, s.SetVocabularyLevel("beginner"))
}

func TestApplyCatalogs(t *testing.T) {
	t.Run("recommended and default applied", func(t *testing.T) {
		s := NewSession("", nil)
		s.ApplyVoices(&backend.VoicesResponse{
			Voices:      []backend.Voice{{ID: "alloy", Name: "Alloy"}, {ID: "echo", Name: "Echo"}},
			Recommended: "echo",
		}, nil)
		s.ApplyLevels(&backend.LevelsResponse{
			Levels: map[string]backend.VocabularyLevel{
				"advanced":     {Name: "Advanced"},
				"beginner":     {Name: "Beginner", TargetLength: "1-2 syllables"},
				"intermediate": {Name: "Intermediate"},
			},
			Default: "beginner",
		}, nil)

		assert.Equal(t, "echo", s.Parameters().Voice)
		assert.Equal(t, "beginner", s.Parameters().VocabularyLevel)

		var keys []string
		for _, l := range s.Catalogs().Levels {
			keys = append(keys, l.Key)
		}
		assert.Equal(t, []string{"beginner", "intermediate", "advanced"}, keys)
		lvl, ok := s.Catalogs().Level("beginner")
		require.True(t, ok)
		assert.Equal(t, "1-2 syllables", lvl.TargetLength)
	})

	t.Run("user choice kept", func(t *testing.T) {
		s := NewSession("", nil)
		require.NoError(t, s.SetVoice("alloy"))
		require.NoError(t, s.SetVocabularyLevel("advanced"))

		s.ApplyVoices(&backend.VoicesResponse{Voices: []backend.Voice{{ID: "alloy"}}, Recommended: "nova"}, nil)
		s.ApplyLevels(&backend.LevelsResponse{Levels: map[string]backend.VocabularyLevel{"advanced": {}}, Default: "intermediate"}, nil)

		assert.Equal(t, "alloy", s.Parameters().Voice)
		assert.Equal(t, "advanced", s.Parameters().VocabularyLevel)
	})

	t.Run("failure keeps defaults", func(t *testing.T) {
		s := NewSession("", nil)
		s.ApplyVoices(nil, errors.New("boom"))
		s.ApplyLevels(nil, errors.New("boom"))

		assert.Empty(t, s.Catalogs().Voices)
		assert.False(t, s.Catalogs().VoicesLoaded())
		assert.Equal(t, DefaultParameters(), s.Parameters())
		assert.NoError(t, s.Err())
	})

	t.Run("fetched once", func(t *testing.T) {
		s := NewSession("", nil)
		s.ApplyVoices(&backend.VoicesResponse{Voices: []backend.Voice{{ID: "alloy"}}}, nil)
		s.ApplyVoices(&backend.VoicesResponse{Voices: []backend.Voice{{ID: "echo"}, {ID: "fable"}}}, nil)
		assert.Len(t, s.Catalogs().Voices, 1)
	})
}

func TestViewMode(t *testing.T) {
	s := NewSession("", nil)
	assert.False(t, s.SetViewMode(ViewVocabulary))
	assert.False(t, s.ToggleView())
	assert.Equal(t, ViewStory, s.ViewMode())

	toConfigure(t, s)
	require.NoError(t, s.SetKeywords("k"))
	req, _ := s.BeginGenerate()
	s.FinishGenerate(req, &backend.StoryResponse{Story: "s"}, nil)

	assert.True(t, s.ToggleView())
	assert.Equal(t, ViewVocabulary, s.ViewMode())
	assert.True(t, s.ToggleView())
	assert.Equal(t, ViewStory, s.ViewMode())
}

func TestParseAudioDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"valid", "data:audio/mp3;base64,SUQz", ""},
		{"not data url", "https://example.com/a.mp3", "not a data URL"},
		{"no payload", "data:audio/mp3;base64", "no payload"},
		{"not base64", "data:audio/mp3,abc", "not base64"},
		{"not audio", "data:image/png;base64,SUQz", "unexpected audio media type"},
		{"bad base64", "data:audio/mp3;base64,***", "failed to decode"},
		{"empty", "data:audio/mp3;base64,", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := ParseAudioDataURL(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "audio/mp3", asset.MediaType)
			assert.Equal(t, []byte("ID3"), asset.Data)
		})
	}
}
