package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sketch2story/story"
	"sketch2story/workflow"
)

// generateOptions holds the flags of the generate command
type generateOptions struct {
	keywords string
	length   string
	level    string
	audio    bool
	voice    string
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate IMAGE",
		Short: "Write a story for an image without any prompts",
		Long: `Captions IMAGE, generates a story for the given keywords and saves it as
markdown (plus an mp3 when --audio is set) in the output directory.`,
		Example: `  sketch2story generate sun.png --keywords "sharing"
  sketch2story generate cat.jpg -k kindness --length long --level beginner --audio --voice nova`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.keywords, "keywords", "k", "", "Story theme or moral lesson")
	f.StringVar(&opts.length, "length", string(workflow.LengthShort), "Story length: short or long")
	f.StringVar(&opts.level, "level", "", "Vocabulary level key (backend default when empty)")
	f.BoolVar(&opts.audio, "audio", false, "Narrate the story and save the mp3")
	f.StringVar(&opts.voice, "voice", "", "Narration voice id (backend recommendation when empty)")
	_ = cmd.MarkFlagRequired("keywords")

	return cmd
}

func (a *app) runGenerate(ctx context.Context, w io.Writer, path string, opts generateOptions) error {
	orch, cleanup, err := a.newOrchestrator(false)
	if err != nil {
		return err
	}
	defer cleanup()
	s := orch.Session()

	file, err := workflow.DescribeFile(path)
	if err != nil {
		return err
	}
	if err := s.SelectFile(file); err != nil {
		return err
	}

	// Catalogs first so --level and --voice are checked against them
	orch.LoadCatalogs(ctx)
	if err := applyGenerateOptions(s, opts); err != nil {
		return err
	}

	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Analyzing %s (%s)...", file.Name, formatFileSize(file.Size))))
	if err := orch.Analyze(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, infoStyle.Render("Caption: "+s.Caption()))

	fmt.Fprintln(w, infoStyle.Render("Writing the story..."))
	if err := orch.Generate(ctx); err != nil {
		return err
	}

	res := s.Result()
	printResult(w, res)

	wopts := story.WriteOptions{OutputDir: a.cfg.Output.Dir, Overwrite: a.overwrite}
	if res.Audio != nil {
		wopts.Voice = res.Audio.Voice
	}
	written, err := story.Write(res, wopts)
	if err != nil {
		return err
	}
	printSaved(w, written)
	return nil
}

func applyGenerateOptions(s *workflow.Session, opts generateOptions) error {
	if strings.TrimSpace(opts.keywords) == "" {
		return fmt.Errorf("--keywords must not be blank")
	}
	if err := s.SetKeywords(opts.keywords); err != nil {
		return err
	}
	if err := s.SetStoryLength(workflow.StoryLength(opts.length)); err != nil {
		return fmt.Errorf("invalid --length: %w", err)
	}
	if opts.level != "" {
		if err := s.SetVocabularyLevel(opts.level); err != nil {
			return fmt.Errorf("invalid --level: %w", err)
		}
	}
	if err := s.SetGenerateAudio(opts.audio); err != nil {
		return err
	}
	if opts.voice != "" {
		if err := s.SetVoice(opts.voice); err != nil {
			return fmt.Errorf("invalid --voice: %w", err)
		}
	}
	return nil
}

// printResult writes the story and its vocabulary list
func printResult(w io.Writer, res *workflow.Result) {
	wrap := lipgloss.NewStyle().Width(72)

	var b strings.Builder
	b.WriteString(titleStyle.Render(story.Title(res.Keywords)))
	b.WriteString("\n")
	b.WriteString(wrap.Render(res.Story))
	fmt.Fprintln(w, boxStyle.Render(b.String()))

	if len(res.VocabularyWords) > 0 {
		fmt.Fprintln(w, subtitleStyle.Render("Vocabulary"))
		for i, v := range res.VocabularyWords {
			fmt.Fprintf(w, "%s %s\n", wordStyle.Render(fmt.Sprintf("%d. %s", i+1, v.Word)), v.Definition)
			if v.SourceSentence != "" {
				fmt.Fprintln(w, infoStyle.Render("   In the story: "+v.SourceSentence))
			}
			if v.ExampleSentence != "" {
				fmt.Fprintln(w, infoStyle.Render("   Example: "+v.ExampleSentence))
			}
		}
		fmt.Fprintln(w)
	}

	if res.AudioNotice != "" {
		fmt.Fprintln(w, errorStyle.Render("Narration unavailable: ")+res.AudioNotice)
	}
}

func printSaved(w io.Writer, written *story.WriteResult) {
	lines := []string{"Saved to: " + written.StoryPath}
	if written.AudioPath != "" {
		lines = append(lines, "Narration: "+written.AudioPath)
	}
	lines = append(lines, "Size: "+formatFileSize(written.TotalBytes))
	fmt.Fprintln(w, successStyle.Render(strings.Join(lines, "\n")))
}
