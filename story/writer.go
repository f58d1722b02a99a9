// Package story exports a finished story as markdown with YAML front matter,
// alongside its narration when one was generated.
package story

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"sketch2story/workflow"
)

// WriteOptions configures story export
type WriteOptions struct {
	// OutputDir is the directory to write files to
	OutputDir string

	// Name is the base filename; derived from the keywords when empty
	Name string

	// Overwrite allows overwriting existing files
	Overwrite bool

	// Voice is recorded in the front matter when narration is written
	Voice string

	// Now stamps the export; time.Now when nil
	Now func() time.Time
}

// WriteResult contains information about written files
type WriteResult struct {
	StoryPath  string
	AudioPath  string
	TotalBytes int64
}

// FrontMatter is the YAML header of an exported story
type FrontMatter struct {
	Title           string    `yaml:"title"`
	Keywords        string    `yaml:"keywords"`
	Caption         string    `yaml:"caption,omitempty"`
	VocabularyLevel string    `yaml:"vocabulary_level,omitempty"`
	Model           string    `yaml:"model,omitempty"`
	Generated       time.Time `yaml:"generated"`
	Words           int       `yaml:"vocabulary_words"`
	Audio           string    `yaml:"audio,omitempty"`
	Voice           string    `yaml:"voice,omitempty"`
}

// Write exports result to opts.OutputDir
func Write(result *workflow.Result, opts WriteOptions) (*WriteResult, error) {
	if result == nil || strings.TrimSpace(result.Story) == "" {
		return nil, fmt.Errorf("no story to write")
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	generated := now()

	name := opts.Name
	if name == "" {
		name = BaseName(result.Keywords, generated)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out := &WriteResult{
		StoryPath: filepath.Join(opts.OutputDir, name+".md"),
	}
	if result.HasAudio() {
		out.AudioPath = filepath.Join(opts.OutputDir, name+".mp3")
	}

	if !opts.Overwrite {
		for _, path := range []string{out.StoryPath, out.AudioPath} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("file exists: %s (use --overwrite to replace)", path)
			}
		}
	}

	voice := opts.Voice
	if result.HasAudio() && result.Audio.Voice != "" {
		voice = result.Audio.Voice
	}
	fm := FrontMatter{
		Title:           Title(result.Keywords),
		Keywords:        result.Keywords,
		Caption:         result.Caption,
		VocabularyLevel: result.VocabularyLevel,
		Model:           result.Model,
		Generated:       generated,
		Words:           len(result.VocabularyWords),
	}
	if out.AudioPath != "" {
		fm.Audio = filepath.Base(out.AudioPath)
		fm.Voice = voice
	}

	content, err := buildDocumentContent(result, fm)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out.StoryPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out.StoryPath, err)
	}
	out.TotalBytes += int64(len(content))

	if out.AudioPath != "" {
		if err := os.WriteFile(out.AudioPath, result.Audio.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out.AudioPath, err)
		}
		out.TotalBytes += int64(len(result.Audio.Data))
	}

	return out, nil
}

// buildDocumentContent renders front matter, story and vocabulary table
func buildDocumentContent(result *workflow.Result, fm FrontMatter) (string, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")

	sb.WriteString("# " + fm.Title + "\n\n")
	sb.WriteString(strings.TrimSpace(result.Story))
	sb.WriteString("\n")

	if len(result.VocabularyWords) > 0 {
		sb.WriteString("\n## Vocabulary\n\n")
		sb.WriteString("| Word | Definition | In the story | Example |\n")
		sb.WriteString("|------|------------|--------------|---------|\n")
		for _, w := range result.VocabularyWords {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				cell(w.Word), cell(w.Definition), cell(w.SourceSentence), cell(w.ExampleSentence)))
		}
	}

	if fm.Audio != "" {
		sb.WriteString(fmt.Sprintf("\n*Narration: [%s](%s)*\n", fm.Audio, fm.Audio))
	}

	return sb.String(), nil
}

// Title builds a story title from its keywords
func Title(keywords string) string {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return "A Sketch Story"
	}
	return "A Story About " + keywords
}

const maxStemBytes = 40

// BaseName derives a filesystem-safe file stem from the keywords and time
func BaseName(keywords string, t time.Time) string {
	stem := sanitizeFilename(strings.ToLower(keywords))
	if stem == "" {
		stem = "story"
	}
	if len(stem) > maxStemBytes {
		stem = strings.TrimRight(truncateUTF8(stem, maxStemBytes), "_")
	}
	return stem + "_" + t.Format("20060102-150405")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	end := 0
	for end < len(s) {
		_, size := utf8.DecodeRuneInString(s[end:])
		if end+size > n {
			break
		}
		end += size
	}
	return s[:end]
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		",", "_",
		".", "_",
		" ", "_",
	)
	result := replacer.Replace(s)

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	return strings.Trim(result, "_")
}

// cell escapes text for a markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
