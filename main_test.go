package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch2story/backend"
	"sketch2story/config"
	"sketch2story/workflow"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{10 * 1024 * 1024, "10.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}

	for _, tt := range tests {
		if got := formatFileSize(tt.bytes); got != tt.want {
			t.Errorf("formatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestIsRelease(t *testing.T) {
	assert.True(t, isRelease("1.2.3"))
	assert.True(t, isRelease("v0.4.0"))
	assert.False(t, isRelease("dev"))
	assert.False(t, isRelease(""))
}

func TestVersionString(t *testing.T) {
	s := versionString()
	assert.Contains(t, s, version)
	assert.Contains(t, s, commit)
}

func TestNewLogger_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "off.log")
	logger, closeLog, err := newLogger(config.LogConfig{File: path}, "abc")
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closeLog())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no log file without --debug")
}

func TestNewLogger_Debug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	logger, closeLog, err := newLogger(config.LogConfig{Debug: true, File: path}, "session-42")
	require.NoError(t, err)
	logger.Debug("caption received", "words", 7)
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "caption received")
	assert.Contains(t, string(data), "session=session-42")
}

func newCatalogSession() *workflow.Session {
	s := workflow.NewSession("http://backend", nil)
	s.ApplyVoices(&backend.VoicesResponse{
		Voices: []backend.Voice{
			{ID: "alloy", Name: "Alloy", Description: "Neutral"},
			{ID: "nova", Name: "Nova", Description: "Warm"},
		},
		Recommended: "nova",
	}, nil)
	s.ApplyLevels(&backend.LevelsResponse{
		Levels: map[string]backend.VocabularyLevel{
			"beginner":     {Name: "Beginner", Description: "Ages 4-6"},
			"intermediate": {Name: "Intermediate", Description: "Ages 7-9", TargetLength: "3-4 words"},
		},
		Default: "intermediate",
	}, nil)
	return s
}

func TestApplyGenerateOptions(t *testing.T) {
	s := newCatalogSession()
	err := applyGenerateOptions(s, generateOptions{
		keywords: "sharing",
		length:   "long",
		level:    "beginner",
		audio:    true,
		voice:    "alloy",
	})
	require.NoError(t, err)

	p := s.Parameters()
	assert.Equal(t, "sharing", p.Keywords)
	assert.Equal(t, workflow.LengthLong, p.StoryLength)
	assert.Equal(t, "beginner", p.VocabularyLevel)
	assert.True(t, p.GenerateAudio)
	assert.Equal(t, "alloy", p.Voice)
}

func TestApplyGenerateOptions_Defaults(t *testing.T) {
	s := newCatalogSession()
	require.NoError(t, applyGenerateOptions(s, generateOptions{keywords: "kindness", length: "short"}))

	p := s.Parameters()
	assert.Equal(t, "intermediate", p.VocabularyLevel)
	assert.Equal(t, "nova", p.Voice)
	assert.False(t, p.GenerateAudio)
}

func TestApplyGenerateOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts generateOptions
		want string
	}{
		{"blank keywords", generateOptions{keywords: "   ", length: "short"}, "--keywords"},
		{"bad length", generateOptions{keywords: "a", length: "medium"}, "--length"},
		{"bad level", generateOptions{keywords: "a", length: "short", level: "expert"}, "--level"},
		{"bad voice", generateOptions{keywords: "a", length: "short", voice: "robot"}, "--voice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyGenerateOptions(newCatalogSession(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLevelAndVoiceOptions(t *testing.T) {
	s := newCatalogSession()

	levels := levelOptions(s.Catalogs(), "intermediate")
	require.Len(t, levels, 2)
	assert.Equal(t, "beginner", levels[0].Value)
	assert.Equal(t, "Beginner - Ages 4-6", levels[0].Key)

	voices := voiceOptions(s.Catalogs(), "nova")
	require.Len(t, voices, 2)
	assert.Equal(t, "alloy", voices[0].Value)

	// Without catalogs only the current value is offered
	empty := workflow.Catalogs{}
	fallback := levelOptions(empty, "intermediate")
	require.Len(t, fallback, 1)
	assert.Equal(t, "intermediate", fallback[0].Value)
	assert.Len(t, voiceOptions(empty, "nova"), 1)
}

func TestPrintCatalogs(t *testing.T) {
	s := newCatalogSession()

	var voices bytes.Buffer
	printVoices(&voices, s.Catalogs().Voices, "nova")
	out := voices.String()
	assert.Contains(t, out, "alloy")
	assert.Contains(t, out, "Neutral")
	assert.Contains(t, out, "(recommended)")
	assert.Equal(t, 1, strings.Count(out, "(recommended)"))

	var levels bytes.Buffer
	printLevels(&levels, s.Catalogs().Levels, "intermediate")
	out = levels.String()
	assert.Less(t, strings.Index(out, "beginner"), strings.Index(out, "intermediate"))
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "Length: 3-4 words")
}

func TestPrintResult(t *testing.T) {
	res := &workflow.Result{
		Keywords: "sharing",
		Story:    "Once upon a time a sun shared its light.",
		VocabularyWords: []workflow.VocabularyWord{
			{Word: "shared", Definition: "gave part of something", SourceSentence: "a sun shared its light"},
		},
		AudioNotice: "quota exceeded",
	}

	var buf bytes.Buffer
	printResult(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "A Story About sharing")
	assert.Contains(t, out, "1. shared")
	assert.Contains(t, out, "In the story: a sun shared its light")
	assert.Contains(t, out, "quota exceeded")
}

// newStoryBackend serves the four endpoints the generate command calls
func newStoryBackend(t *testing.T) (*httptest.Server, *backend.StoryRequest) {
	t.Helper()
	var got backend.StoryRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/voices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(backend.VoicesResponse{
			Success:     true,
			Voices:      []backend.Voice{{ID: "nova", Name: "Nova"}},
			Recommended: "nova",
		})
	})
	mux.HandleFunc("/vocabulary-levels", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(backend.LevelsResponse{
			Success: true,
			Levels:  map[string]backend.VocabularyLevel{"beginner": {Name: "Beginner"}},
			Default: "beginner",
		})
	})
	mux.HandleFunc("/process-image", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(backend.ProcessImageResponse{Success: true, Caption: "a yellow sun over a house"})
	})
	mux.HandleFunc("/generate-story", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(backend.StoryResponse{
			Success: true,
			Story:   "The sun smiled at the little house.",
			VocabularyWords: []backend.VocabularyWord{
				{Word: "smiled", Definition: "looked happy"},
			},
			Model: "gpt-4o-mini",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &got
}

func writeDrawing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sun.png")
	// PNG signature is enough for the descriptor; the backend is faked
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0644))
	return path
}

func TestRunGenerate(t *testing.T) {
	server, got := newStoryBackend(t)
	out := t.TempDir()

	a := &app{cfg: config.Load()}
	a.cfg.Backend.URL = server.URL
	a.cfg.Output.Dir = out

	var buf bytes.Buffer
	err := a.runGenerate(context.Background(), &buf, writeDrawing(t), generateOptions{
		keywords: "sharing",
		length:   "short",
	})
	require.NoError(t, err)

	assert.Equal(t, "a yellow sun over a house", got.ImageDescription)
	assert.Equal(t, "sharing", got.Keywords)
	assert.Equal(t, "short", got.StoryLength)
	assert.Equal(t, "beginner", got.VocabularyLevel)
	assert.False(t, got.GenerateAudio)

	printed := buf.String()
	assert.Contains(t, printed, "Caption: a yellow sun over a house")
	assert.Contains(t, printed, "The sun smiled at the little house.")
	assert.Contains(t, printed, "Saved to:")

	matches, err := filepath.Glob(filepath.Join(out, "*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "smiled")
}

func TestRunGenerate_RejectsNonImage(t *testing.T) {
	server, _ := newStoryBackend(t)

	a := &app{cfg: config.Load()}
	a.cfg.Backend.URL = server.URL
	a.cfg.Output.Dir = t.TempDir()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a drawing"), 0644))

	err := a.runGenerate(context.Background(), &bytes.Buffer{}, path, generateOptions{keywords: "a", length: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"backend", "debug", "log-file", "out", "overwrite"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing persistent flag --%s", name)
	}
	assert.NotNil(t, cmd.Flags().Lookup("plain"))

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "voices", "levels", "health", "update"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"a.png", "b.png"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestGenerateCommand_RequiresKeywords(t *testing.T) {
	t.Setenv("STORY_OUTPUT_DIR", t.TempDir())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate", "sun.png"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords")
}

func TestSetup_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("STORY_BACKEND_URL", "http://env:5000")
	t.Setenv("STORY_OUTPUT_DIR", "env-stories")

	a := &app{backendURL: "http://flag:9000/", outputDir: "flag-stories"}
	require.NoError(t, a.setup())
	defer a.close()

	assert.Equal(t, "http://flag:9000", a.cfg.Backend.URL)
	assert.Equal(t, "flag-stories", a.cfg.Output.Dir)
	assert.NotEmpty(t, a.sessionID)
}
