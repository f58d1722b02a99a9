package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"sketch2story/story"
	"sketch2story/workflow"
)

var imageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// next steps offered after a story is shown
const (
	choicePlay     = "play"
	choiceSave     = "save"
	choiceKeywords = "keywords"
	choiceAnother  = "another"
	choiceExit     = "exit"
)

// plainFlow runs the workflow as a sequence of huh prompts
type plainFlow struct {
	app     *app
	orch    *workflow.Orchestrator
	session *workflow.Session
	ctx     context.Context
}

func (a *app) runPlain(ctx context.Context, initial string) error {
	orch, cleanup, err := a.newOrchestrator(true)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println(titleStyle.Render(logo))

	var catalogs workflow.CatalogResult
	_ = spinner.New().
		Title("Loading voices and vocabulary levels...").
		Action(func() {
			catalogs = orch.FetchCatalogs(ctx)
		}).
		Run()
	orch.Apply(catalogs)
	if catalogs.VoicesErr != nil || catalogs.LevelsErr != nil {
		fmt.Println(infoStyle.Render("Could not load the backend catalogs; using default voice and level."))
	}

	p := &plainFlow{app: a, orch: orch, session: orch.Session(), ctx: ctx}
	a.log().Info("interactive session", "mode", "plain", "image", initial)

	path := initial
	for p.runStory(path) {
		path = ""
		p.session.Reset()
	}

	fmt.Println(subtitleStyle.Render("\nThanks for using sketch2story! Bye bye!"))
	return nil
}

// runStory takes one drawing from upload to result. It reports whether the
// user wants another story.
func (p *plainFlow) runStory(path string) bool {
	s := p.session

	// Step 1: Select image
	if path == "" {
		var err error
		path, err = pickImage()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false
			}
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			return askToContinue()
		}
	}

	file, err := workflow.DescribeFile(path)
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return askToContinue()
	}
	if err := s.SelectFile(file); err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return askToContinue()
	}

	fmt.Println(boxStyle.Render(fmt.Sprintf("%s\n%s, %s", file.Name, file.MediaType, formatFileSize(file.Size))))

	// Step 2: Caption
	err = spinner.New().
		Title("Looking at your drawing...").
		Action(func() {
			_ = p.orch.Analyze(p.ctx)
		}).
		Run()
	if err == nil {
		err = s.Err()
	}
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return askToContinue()
	}
	fmt.Println(boxStyle.Render("Image description\n\n" + s.Caption()))

	for {
		// Step 3: Theme and options
		if err := p.configure(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return askToContinue()
			}
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			return askToContinue()
		}

		// Step 4: Story
		err = spinner.New().
			Title("Writing your story...").
			Action(func() {
				_ = p.orch.Generate(p.ctx)
			}).
			Run()
		if err == nil {
			err = s.Err()
		}
		if err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			if !askRetry() {
				return askToContinue()
			}
			continue
		}

		printResult(os.Stdout, s.Result())

		switch p.afterStory() {
		case choiceKeywords:
			s.Back()
			continue
		case choiceAnother:
			return true
		default:
			return false
		}
	}
}

func pickImage() (string, error) {
	var path string
	startDir, _ := os.Getwd()

	filePicker := huh.NewFilePicker().
		Title("Select a drawing").
		Description("PNG, JPG, GIF, WebP or BMP, up to 10MB").
		Picking(true).
		CurrentDirectory(startDir).
		ShowHidden(false).
		ShowPermissions(false).
		ShowSize(true).
		Height(15).
		AllowedTypes(imageTypes).
		Value(&path)

	err := huh.NewForm(huh.NewGroup(filePicker)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
	return path, err
}

// configure asks for keywords and generation options and stores them
func (p *plainFlow) configure() error {
	s := p.session
	params := s.Parameters()

	keywords := params.Keywords
	length := string(params.StoryLength)
	level := params.VocabularyLevel
	narrate := params.GenerateAudio

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Story theme").
				Description("Keywords or a moral lesson, e.g. \"sharing is caring\"").
				Placeholder("kindness").
				CharLimit(200).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("please enter a theme for the story")
					}
					return nil
				}).
				Value(&keywords),
			huh.NewSelect[string]().
				Title("Story length").
				Options(
					huh.NewOption("Short (2-3 paragraphs)", string(workflow.LengthShort)),
					huh.NewOption("Long (4-5 paragraphs)", string(workflow.LengthLong)),
				).
				Value(&length),
			huh.NewSelect[string]().
				Title("Vocabulary level").
				Options(levelOptions(s.Catalogs(), level)...).
				Value(&level),
			huh.NewConfirm().
				Title("Read the story aloud?").
				Affirmative("Yes").
				Negative("No").
				Value(&narrate),
		),
	).WithTheme(huh.ThemeCatppuccin()).Run()
	if err != nil {
		return err
	}

	voice := params.Voice
	if narrate {
		err = huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Narration voice").
				Options(voiceOptions(s.Catalogs(), voice)...).
				Value(&voice),
		)).WithTheme(huh.ThemeCatppuccin()).Run()
		if err != nil {
			return err
		}
	}

	return errors.Join(
		s.SetKeywords(keywords),
		s.SetStoryLength(workflow.StoryLength(length)),
		s.SetVocabularyLevel(level),
		s.SetGenerateAudio(narrate),
		s.SetVoice(voice),
	)
}

// levelOptions lists the catalog levels, or only the current key when the
// catalog could not be loaded
func levelOptions(c workflow.Catalogs, current string) []huh.Option[string] {
	if len(c.Levels) == 0 {
		return []huh.Option[string]{huh.NewOption(current, current)}
	}
	opts := make([]huh.Option[string], 0, len(c.Levels))
	for _, l := range c.Levels {
		label := l.Name
		if l.Description != "" {
			label += " - " + l.Description
		}
		opts = append(opts, huh.NewOption(label, l.Key))
	}
	return opts
}

func voiceOptions(c workflow.Catalogs, current string) []huh.Option[string] {
	if len(c.Voices) == 0 {
		return []huh.Option[string]{huh.NewOption(current, current)}
	}
	opts := make([]huh.Option[string], 0, len(c.Voices))
	for _, v := range c.Voices {
		label := v.Name
		if v.Description != "" {
			label += " - " + v.Description
		}
		opts = append(opts, huh.NewOption(label, v.ID))
	}
	return opts
}

// afterStory offers playback and saving until the user moves on
func (p *plainFlow) afterStory() string {
	s := p.session
	for {
		var options []huh.Option[string]
		if s.Result().HasAudio() {
			options = append(options, huh.NewOption("Play narration", choicePlay))
		}
		options = append(options,
			huh.NewOption("Save story", choiceSave),
			huh.NewOption("Try different keywords", choiceKeywords),
			huh.NewOption("New drawing", choiceAnother),
			huh.NewOption("Exit", choiceExit),
		)

		var choice string
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What next?").
				Options(options...).
				Value(&choice),
		)).WithTheme(huh.ThemeCatppuccin()).Run()
		if err != nil {
			return choiceExit
		}

		switch choice {
		case choicePlay:
			if err := p.playNarration(); err != nil {
				fmt.Println(errorStyle.Render("Error: " + err.Error()))
			}
		case choiceSave:
			p.save()
		default:
			return choice
		}
	}
}

// playNarration plays until the narration ends or the spinner is dismissed
func (p *plainFlow) playNarration() error {
	s := p.session
	pb := s.Playback()
	events := pb.Media().Events()

	if err := s.TogglePlayback(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(p.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				s.HandleMediaEvent(ev)
				if ev.Kind == workflow.MediaEnded {
					return
				}
			}
		}
	}()

	_ = spinner.New().
		Title("Playing narration... (ctrl+c to stop)").
		Context(ctx).
		Run()
	cancel()
	<-done

	if pb.State() != workflow.PlaybackPlaying {
		return s.Err()
	}
	if err := s.TogglePlayback(); err != nil {
		return err
	}
	for pb.State() == workflow.PlaybackPlaying {
		select {
		case ev := <-events:
			s.HandleMediaEvent(ev)
		case <-time.After(2 * time.Second):
			return nil
		}
	}
	return nil
}

func (p *plainFlow) save() {
	res := p.session.Result()
	opts := story.WriteOptions{
		OutputDir: p.app.cfg.Output.Dir,
		Overwrite: p.app.overwrite,
	}
	if res.Audio != nil {
		opts.Voice = res.Audio.Voice
	}

	written, err := story.Write(res, opts)
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return
	}
	printSaved(os.Stdout, written)
}

func askRetry() bool {
	var retry bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Try again?").
			Affirmative("Yes").
			Negative("No").
			Value(&retry),
	)).WithTheme(huh.ThemeCatppuccin()).Run()
	return err == nil && retry
}

func askToContinue() bool {
	var choice string
	selectNext := huh.NewSelect[string]().
		Title("What next?").
		Options(
			huh.NewOption("Start with another drawing", choiceAnother),
			huh.NewOption("Exit", choiceExit),
		).
		Value(&choice)

	err := huh.NewForm(huh.NewGroup(selectNext)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()

	if err != nil {
		return false
	}

	return choice == choiceAnother
}
