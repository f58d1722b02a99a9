package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sketch2story/audio"
	"sketch2story/backend"
	"sketch2story/preview"
	"sketch2story/story"
	"sketch2story/workflow"
)

// Options configures the interactive model
type Options struct {
	// OutputDir is where saved stories are written
	OutputDir string

	// Overwrite replaces an existing export on save
	Overwrite bool

	// InitialPath is an image selected at startup
	InitialPath string

	// StartDir is where the file picker opens
	StartDir string
}

// focusField is a control of the configure step
type focusField int

const (
	focusKeywords focusField = iota
	focusLength
	focusLevel
	focusAudio
	focusVoice
	focusGenerate
	focusCount
)

// Model is the Bubble Tea model of the story workflow
type Model struct {
	orch    *workflow.Orchestrator
	session *workflow.Session
	opts    Options

	filepicker filepicker.Model
	keywords   textinput.Model
	spinner    spinner.Model
	result     viewport.Model
	feed       *Feed

	picking  bool
	focus    focusField
	notice   string
	saved    *story.WriteResult
	duration time.Duration

	width    int
	height   int
	quitting bool

	ctx    context.Context
	cancel context.CancelFunc

	// cancels the caption or story request in flight
	cancelRequest context.CancelFunc
}

// Messages
type (
	catalogsMsg struct {
		result  workflow.CatalogResult
		latency time.Duration
	}

	fileSelectedMsg string

	fileDescribedMsg struct {
		file *workflow.File
		err  error
	}

	previewMsg struct {
		generation uint64
		thumbnail  *preview.Thumbnail
		err        error
	}

	analyzeDoneMsg struct {
		req     workflow.AnalyzeRequest
		caption string
		err     error
		latency time.Duration
	}

	generateDoneMsg struct {
		req     workflow.GenerateRequest
		resp    *backend.StoryResponse
		err     error
		latency time.Duration
	}

	mediaMsg struct {
		event workflow.MediaEvent
	}

	durationMsg struct {
		generation uint64
		duration   time.Duration
		err        error
	}

	savedMsg struct {
		result *story.WriteResult
		err    error
	}
)

// NewModel creates the model around an orchestrator
func NewModel(orch *workflow.Orchestrator, opts Options) Model {
	fp := filepicker.New()
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowSize = true
	fp.Height = 12
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	ti := textinput.New()
	ti.Placeholder = "kindness, sharing, being brave"
	ti.CharLimit = 200
	ti.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"[~    ]", "[ ~   ]", "[  ~  ]", "[   ~ ]", "[    ~]", "[   ~ ]", "[  ~  ]", "[ ~   ]"},
		FPS:    time.Second / 8,
	}
	s.Style = lipgloss.NewStyle().Foreground(ColorCrayon)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		orch:       orch,
		session:    orch.Session(),
		opts:       opts,
		filepicker: fp,
		keywords:   ti,
		spinner:    s,
		result:     viewport.New(76, 14),
		feed:       NewFeed(76, 6),
		picking:    true,
		width:      80,
		height:     24,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init starts the spinner, the file picker, the catalog fetch and the
// media event listener
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.filepicker.Init(),
		m.loadCatalogs(),
		waitForMedia(m.session.Playback().Media().Events()),
	}
	if m.opts.InitialPath != "" {
		cmds = append(cmds, describeFile(m.opts.InitialPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.notice = ""
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogsMsg:
		m.orch.Apply(msg.result)
		c := m.session.Catalogs()
		if msg.result.VoicesErr != nil {
			m.feed.Error("/voices", msg.result.VoicesErr.Error())
		} else {
			m.feed.Response("/voices", msg.latency, fmt.Sprintf("%d voices", len(c.Voices)))
		}
		if msg.result.LevelsErr != nil {
			m.feed.Error("/vocabulary-levels", msg.result.LevelsErr.Error())
		} else {
			m.feed.Response("/vocabulary-levels", msg.latency, fmt.Sprintf("%d levels", len(c.Levels)))
		}
		return m, nil

	case fileSelectedMsg:
		return m, describeFile(string(msg))

	case fileDescribedMsg:
		return m.selectFile(msg)

	case previewMsg:
		if msg.generation != m.session.FileGeneration() {
			return m, nil
		}
		if msg.err != nil {
			m.feed.Status("Preview unavailable", msg.err.Error())
			return m, nil
		}
		m.session.SetPreview(msg.generation, msg.thumbnail.Text)
		return m, nil

	case analyzeDoneMsg:
		return m.finishAnalyze(msg)

	case generateDoneMsg:
		return m.finishGenerate(msg)

	case mediaMsg:
		m.session.HandleMediaEvent(msg.event)
		if msg.event.Err != nil {
			m.feed.Error("", "Narration: "+msg.event.Err.Error())
		}
		return m, waitForMedia(m.session.Playback().Media().Events())

	case durationMsg:
		if msg.err != nil {
			m.orch.Logger().Debug("narration duration unavailable", "error", msg.err)
			return m, nil
		}
		if msg.generation == m.session.Playback().Generation() {
			m.duration = msg.duration
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.feed.Error("", "Save failed: "+msg.err.Error())
			m.notice = msg.err.Error()
			return m, nil
		}
		m.saved = msg.result
		detail := []string{msg.result.StoryPath}
		if msg.result.AudioPath != "" {
			detail = append(detail, msg.result.AudioPath)
		}
		m.feed.Complete("Story saved", detail...)
		return m, nil
	}

	// Picker directory reads and input blinks
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.session.Step() == workflow.StepUpload {
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.session.Step() == workflow.StepConfigure {
		m.keywords, cmd = m.keywords.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press to the current step
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "ctrl+r":
		return m.reset()
	}

	switch m.session.Step() {
	case workflow.StepConfigure:
		return m.handleConfigureKey(msg)
	case workflow.StepResult:
		return m.handleResultKey(msg)
	default:
		return m.handleUploadKey(msg)
	}
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picking {
		switch msg.String() {
		case "q":
			return m.quit()
		case "tab":
			if m.session.File() != nil {
				m.picking = false
				return m, nil
			}
		}

		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m, tea.Batch(cmd, func() tea.Msg { return fileSelectedMsg(path) })
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "enter", "a":
		return m.startAnalyze()
	case "c", "o":
		m.picking = true
		return m, m.filepicker.Init()
	case "r":
		return m.reset()
	}
	return m, nil
}

func (m Model) handleConfigureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session.Busy() {
		return m, nil
	}

	key := msg.String()
	switch key {
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "ctrl+g":
		return m.startGenerate()
	}

	if m.focus == focusKeywords {
		if key == "enter" {
			return m.moveFocus(1)
		}
		var cmd tea.Cmd
		m.keywords, cmd = m.keywords.Update(msg)
		if err := m.session.SetKeywords(m.keywords.Value()); err != nil {
			m.notice = err.Error()
		}
		return m, cmd
	}

	switch key {
	case "q":
		return m.quit()
	case "r":
		return m.reset()
	case "left", "h":
		m.adjust(-1)
	case "right", "l", " ":
		m.adjust(1)
	case "enter":
		switch m.focus {
		case focusGenerate:
			return m.startGenerate()
		case focusAudio:
			m.adjust(1)
		default:
			return m.moveFocus(1)
		}
	}
	return m, nil
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "tab", "v":
		m.session.ToggleView()
		m.refreshResult()
		return m, nil
	case "1":
		m.session.SetViewMode(workflow.ViewStory)
		m.refreshResult()
		return m, nil
	case "2":
		m.session.SetViewMode(workflow.ViewVocabulary)
		m.refreshResult()
		return m, nil
	case " ", "p":
		if err := m.session.TogglePlayback(); err != nil {
			if errors.Is(err, workflow.ErrNoAudio) {
				m.notice = "This story has no narration"
			} else {
				m.feed.Error("", err.Error())
			}
		}
		return m, nil
	case "s":
		return m, m.save()
	case "b", "esc":
		if m.session.Back() {
			m.saved = nil
			m.duration = 0
			return m.enterConfigure()
		}
		return m, nil
	case "r":
		return m.reset()
	}

	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	m.session.Playback().Stop()
	return m, tea.Quit
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.abortRequest()
	m.session.Reset()
	m.picking = true
	m.focus = focusKeywords
	m.keywords.SetValue("")
	m.keywords.Blur()
	m.saved = nil
	m.duration = 0
	m.result.SetContent("")
	m.feed.Status("Started over")
	return m, m.filepicker.Init()
}

func (m Model) selectFile(msg fileDescribedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = msg.err.Error()
		m.feed.Error("", msg.err.Error())
		return m, nil
	}
	if err := m.session.SelectFile(msg.file); err != nil {
		m.feed.Error("", fmt.Sprintf("%s: %s", msg.file.Name, err))
		return m, nil
	}

	m.picking = false
	m.saved = nil
	m.duration = 0
	m.feed.Status("Selected "+msg.file.Name, msg.file.MediaType, formatDataSize(msg.file.Size))
	return m, renderPreview(m.session.FileGeneration(), msg.file.Path, m.previewOptions())
}

func (m Model) startAnalyze() (tea.Model, tea.Cmd) {
	req, ok := m.session.BeginAnalyze()
	if !ok {
		return m, nil
	}
	f := m.session.File()
	m.feed.Request("POST", "/process-image", fmt.Sprintf("%s, %s", f.Name, formatDataSize(f.Size)))
	ctx := m.requestContext()
	return m, m.runAnalyze(ctx, req)
}

func (m Model) finishAnalyze(msg analyzeDoneMsg) (tea.Model, tea.Cmd) {
	if !m.session.FinishAnalyze(msg.req, msg.caption, msg.err) {
		m.feed.Status("Discarded a caption for an earlier image")
		return m, nil
	}
	if err := m.session.Err(); err != nil {
		m.feed.Error("/process-image", err.Error())
		return m, nil
	}
	m.feed.Response("/process-image", msg.latency, m.session.Caption())
	return m.enterConfigure()
}

func (m Model) enterConfigure() (tea.Model, tea.Cmd) {
	m.focus = focusKeywords
	m.keywords.SetValue(m.session.Parameters().Keywords)
	m.keywords.CursorEnd()
	return m, m.keywords.Focus()
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	if err := m.session.SetKeywords(m.keywords.Value()); err != nil {
		return m, nil
	}
	req, ok := m.session.BeginGenerate()
	if !ok {
		if strings.TrimSpace(m.keywords.Value()) == "" {
			m.notice = "Enter a theme or keywords for the story first"
		}
		return m, nil
	}
	m.keywords.Blur()

	detail := fmt.Sprintf("%s story, %s vocabulary", req.Body.StoryLength, req.Body.VocabularyLevel)
	if req.Body.GenerateAudio {
		detail += ", narrated by " + req.Body.Voice
	}
	m.feed.Request("POST", "/generate-story", detail)
	ctx := m.requestContext()
	return m, m.runGenerate(ctx, req)
}

func (m Model) finishGenerate(msg generateDoneMsg) (tea.Model, tea.Cmd) {
	if !m.session.FinishGenerate(msg.req, msg.resp, msg.err) {
		m.feed.Status("Discarded a story for an earlier image")
		return m, nil
	}
	if err := m.session.Err(); err != nil {
		m.feed.Error("/generate-story", err.Error())
		return m, nil
	}

	res := m.session.Result()
	m.feed.Response("/generate-story", msg.latency, fmt.Sprintf("%d vocabulary words", len(res.VocabularyWords)))
	if res.AudioNotice != "" {
		m.feed.Status("Narration unavailable", res.AudioNotice)
	}

	m.saved = nil
	m.duration = 0
	m.refreshResult()
	if res.HasAudio() {
		return m, probeDuration(m.session.Playback())
	}
	return m, nil
}

// adjust changes the focused configure control by one step
func (m *Model) adjust(dir int) {
	params := m.session.Parameters()

	var err error
	switch m.focus {
	case focusLength:
		next := workflow.LengthLong
		if params.StoryLength == workflow.LengthLong {
			next = workflow.LengthShort
		}
		err = m.session.SetStoryLength(next)
	case focusLevel:
		err = m.session.SetVocabularyLevel(cycle(m.levelKeys(), params.VocabularyLevel, dir))
	case focusAudio:
		err = m.session.SetGenerateAudio(!params.GenerateAudio)
	case focusVoice:
		err = m.session.SetVoice(cycle(m.voiceIDs(), params.Voice, dir))
	}
	if err != nil {
		m.notice = err.Error()
	}
}

func (m Model) moveFocus(dir int) (tea.Model, tea.Cmd) {
	next := m.focus
	for {
		next = (next + focusField(dir) + focusCount) % focusCount
		if next != focusVoice || m.session.Parameters().GenerateAudio {
			break
		}
	}
	m.focus = next

	if m.focus == focusKeywords {
		return m, m.keywords.Focus()
	}
	m.keywords.Blur()
	return m, nil
}

// levelKeys lists selectable level keys, or only the current one when the
// catalog could not be loaded
func (m Model) levelKeys() []string {
	c := m.session.Catalogs()
	if len(c.Levels) == 0 {
		return []string{m.session.Parameters().VocabularyLevel}
	}
	keys := make([]string, len(c.Levels))
	for i, l := range c.Levels {
		keys[i] = l.Key
	}
	return keys
}

func (m Model) voiceIDs() []string {
	c := m.session.Catalogs()
	if len(c.Voices) == 0 {
		return []string{m.session.Parameters().Voice}
	}
	ids := make([]string, len(c.Voices))
	for i, v := range c.Voices {
		ids[i] = v.ID
	}
	return ids
}

func cycle(values []string, current string, dir int) string {
	if len(values) == 0 {
		return current
	}
	idx := -1
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return values[0]
	}
	return values[(idx+dir+len(values))%len(values)]
}

func (m *Model) resize() {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	m.result.Width = w
	m.result.Height = max(m.height-24, 6)
	m.feed.SetSize(w-4, 5)
	m.keywords.Width = min(w-20, 60)
	m.filepicker.Height = max(m.height-22, 5)
	m.refreshResult()
}

func (m Model) previewOptions() preview.Options {
	return preview.Options{Width: preview.DefaultWidth, Height: preview.DefaultHeight}
}

// Commands

func (m Model) loadCatalogs() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	m.feed.Request("GET", "/voices, /vocabulary-levels", "")
	return func() tea.Msg {
		start := time.Now()
		res := orch.FetchCatalogs(ctx)
		return catalogsMsg{result: res, latency: time.Since(start)}
	}
}

// requestContext derives the context of a new caption or story request
func (m *Model) requestContext() context.Context {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelRequest = cancel
	return ctx
}

func (m *Model) abortRequest() {
	if m.cancelRequest != nil {
		m.cancelRequest()
		m.cancelRequest = nil
	}
}

func (m Model) runAnalyze(ctx context.Context, req workflow.AnalyzeRequest) tea.Cmd {
	orch, cancel := m.orch, m.cancelRequest
	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		caption, err := orch.RunAnalyze(ctx, req)
		return analyzeDoneMsg{req: req, caption: caption, err: err, latency: time.Since(start)}
	}
}

func (m Model) runGenerate(ctx context.Context, req workflow.GenerateRequest) tea.Cmd {
	orch, cancel := m.orch, m.cancelRequest
	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		resp, err := orch.RunGenerate(ctx, req)
		return generateDoneMsg{req: req, resp: resp, err: err, latency: time.Since(start)}
	}
}

func (m Model) save() tea.Cmd {
	res := m.session.Result()
	if res == nil {
		return nil
	}
	opts := story.WriteOptions{
		OutputDir: m.opts.OutputDir,
		Overwrite: m.opts.Overwrite,
	}
	if res.Audio != nil {
		opts.Voice = res.Audio.Voice
	}
	return func() tea.Msg {
		wr, err := story.Write(res, opts)
		return savedMsg{result: wr, err: err}
	}
}

func describeFile(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := workflow.DescribeFile(path)
		return fileDescribedMsg{file: f, err: err}
	}
}

func renderPreview(generation uint64, path string, opts preview.Options) tea.Cmd {
	return func() tea.Msg {
		thumb, err := preview.Render(path, opts)
		return previewMsg{generation: generation, thumbnail: thumb, err: err}
	}
}

// waitForMedia reads the next player event; a nil channel never delivers
func waitForMedia(events <-chan workflow.MediaEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return mediaMsg{event: ev}
	}
}

// probeDuration measures the loaded narration when the player exposes its file
func probeDuration(p *workflow.Playback) tea.Cmd {
	src, ok := p.Media().(interface{ Path() string })
	if !ok {
		return nil
	}
	path := src.Path()
	if path == "" {
		return nil
	}
	generation := p.Generation()
	return func() tea.Msg {
		d, err := audio.Duration(path)
		return durationMsg{generation: generation, duration: d, err: err}
	}
}

// Views

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return MutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	b.WriteString(GetHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStepIndicator())
	b.WriteString("\n")

	switch m.session.Step() {
	case workflow.StepUpload:
		b.WriteString(m.renderUpload())
	case workflow.StepConfigure:
		b.WriteString(m.renderConfigure())
	case workflow.StepResult:
		b.WriteString(m.renderResult())
	}

	if msg := m.session.ErrorMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Error: ") + BodyStyle.Render(msg))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(RenderFeedBox(m.feed, "Backend activity", 0))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderStepIndicator() string {
	step := m.session.Step()
	status := func(s workflow.Step) StepStatus {
		switch {
		case s < step:
			return StepCompleted
		case s == step && m.session.Err() != nil:
			return StepError
		case s == step:
			return StepActive
		default:
			return StepPending
		}
	}
	return StepIndicator([]WizardStep{
		{Title: "Upload", Status: status(workflow.StepUpload)},
		{Title: "Theme", Status: status(workflow.StepConfigure)},
		{Title: "Story", Status: status(workflow.StepResult)},
	})
}

func (m Model) renderUpload() string {
	if m.picking {
		title := TitleStyle.Render("Step 1: Upload your drawing")
		desc := MutedStyle.Render("Choose an image (PNG, JPG, GIF, WebP, BMP) up to 10MB")
		return BoxStyle.Render(title + "\n" + desc + "\n\n" + m.filepicker.View())
	}

	f := m.session.File()
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Step 1: Upload your drawing"))
	b.WriteString("\n")
	if m.session.Preview() != "" {
		b.WriteString(m.session.Preview())
		b.WriteString("\n")
	}
	b.WriteString(BodyStyle.Render(f.Name) + " " + MutedStyle.Render(fmt.Sprintf("(%s, %s)", f.MediaType, formatDataSize(f.Size))))
	b.WriteString("\n\n")
	if m.session.AnalyzingImage() {
		b.WriteString(m.spinner.View() + " " + BodyStyle.Render("Analyzing image..."))
	} else {
		b.WriteString(SelectedStyle.Render("> Analyze Image"))
	}
	return BoxStyle.Render(b.String())
}

func (m Model) renderConfigure() string {
	params := m.session.Parameters()
	catalogs := m.session.Catalogs()

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Step 2: Add your story theme"))
	b.WriteString("\n")

	left := m.session.Preview()
	caption := Card("Image description", m.session.Caption(), 40)
	if left != "" {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", caption))
	} else {
		b.WriteString(caption)
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderField(focusKeywords, "Keywords", m.keywords.View(), ""))

	b.WriteString(m.renderField(focusLength, "Length", choice([]string{"short", "long"}, string(params.StoryLength)), ""))

	levelDetail := ""
	if l, ok := catalogs.Level(params.VocabularyLevel); ok {
		levelDetail = l.Description
		if l.TargetLength != "" {
			levelDetail += " (" + l.TargetLength + ")"
		}
	}
	b.WriteString(m.renderField(focusLevel, "Vocabulary", choice(m.levelKeys(), params.VocabularyLevel), levelDetail))

	check := "[ ]"
	if params.GenerateAudio {
		check = "[x]"
	}
	b.WriteString(m.renderField(focusAudio, "Narration", check+" Read the story aloud", ""))

	if params.GenerateAudio {
		voiceDetail := ""
		if v, ok := catalogs.Voice(params.Voice); ok {
			voiceDetail = v.Description
		}
		b.WriteString(m.renderField(focusVoice, "Voice", choice(m.voiceIDs(), params.Voice), voiceDetail))
	}

	b.WriteString("\n")
	if m.session.GeneratingStory() {
		b.WriteString(m.spinner.View() + " " + BodyStyle.Render("Creating your story..."))
	} else {
		button := "  Generate Story"
		style := BodyStyle
		if m.focus == focusGenerate {
			button = "> Generate Story"
			style = SelectedStyle
		}
		if strings.TrimSpace(params.Keywords) == "" {
			style = MutedStyle
		}
		b.WriteString(style.Render(button))
	}

	return BoxStyle.Render(b.String())
}

func (m Model) renderField(field focusField, label, value, detail string) string {
	cursor := "  "
	labelStyle := MutedStyle
	if m.focus == field {
		cursor = "> "
		labelStyle = SelectedStyle
	}
	line := labelStyle.Render(fmt.Sprintf("%s%-11s", cursor, label)) + " " + value
	if detail != "" {
		line += "\n" + MutedStyle.Render(strings.Repeat(" ", 14)+detail)
	}
	return line + "\n"
}

// choice renders options with the current one highlighted
func choice(options []string, current string) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if o == current {
			parts[i] = BadgeStyle.Render(o)
		} else {
			parts[i] = MutedStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderResult() string {
	res := m.session.Result()
	if res == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Step 3: " + story.Title(res.Keywords)))
	b.WriteString("\n")

	active := 0
	if m.session.ViewMode() == workflow.ViewVocabulary {
		active = 1
	}
	b.WriteString(Tabs([]string{"Story", fmt.Sprintf("Vocabulary (%d)", len(res.VocabularyWords))}, active))
	b.WriteString("\n\n")
	b.WriteString(m.result.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderNarration())

	if m.saved != nil {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render("Saved ") + MutedStyle.Render(m.saved.StoryPath))
	}
	return FocusedBoxStyle.Render(b.String())
}

func (m Model) renderNarration() string {
	res := m.session.Result()
	if !res.HasAudio() {
		if res.AudioNotice != "" {
			return WarningStyle.Render("Narration unavailable: " + res.AudioNotice)
		}
		return ""
	}

	pb := m.session.Playback()
	var badge string
	switch pb.State() {
	case workflow.PlaybackPlaying:
		badge = BadgeSuccessStyle.Render("PLAYING")
	case workflow.PlaybackPaused:
		badge = BadgeWarningStyle.Render("PAUSED")
	default:
		badge = BadgeStyle.Render("READY")
	}

	line := badge + " " + BodyStyle.Render("Narration")
	if res.Audio.Voice != "" {
		line += MutedStyle.Render(" by " + res.Audio.Voice)
	}
	if m.duration > 0 {
		line += MutedStyle.Render(" (" + audio.FormatDuration(m.duration) + ")")
	}
	return line
}

// refreshResult fills the result viewport for the current tab
func (m *Model) refreshResult() {
	res := m.session.Result()
	if res == nil {
		return
	}
	width := m.result.Width - 2
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	if m.session.ViewMode() == workflow.ViewStory {
		m.result.SetContent(wrap.Render(BodyStyle.Render(res.Story)))
		m.result.GotoTop()
		return
	}

	if len(res.VocabularyWords) == 0 {
		m.result.SetContent(MutedStyle.Render("No vocabulary words for this story."))
		m.result.GotoTop()
		return
	}

	var b strings.Builder
	for i, w := range res.VocabularyWords {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(SelectedStyle.Render(fmt.Sprintf("%d. %s", i+1, w.Word)))
		b.WriteString("\n")
		b.WriteString(wrap.Render(BodyStyle.Render(w.Definition)))
		b.WriteString("\n")
		if w.SourceSentence != "" {
			b.WriteString(wrap.Render(MutedStyle.Render("In the story: ") + InfoStyle.Render(w.SourceSentence)))
			b.WriteString("\n")
		}
		if w.ExampleSentence != "" {
			b.WriteString(wrap.Render(MutedStyle.Render("Example: ") + SubtitleStyle.Render(w.ExampleSentence)))
			b.WriteString("\n")
		}
	}
	m.result.SetContent(b.String())
	m.result.GotoTop()
}

func (m Model) renderHelp() string {
	var keys []string

	switch m.session.Step() {
	case workflow.StepUpload:
		if m.picking {
			keys = append(keys, "j/k", "Navigate", "enter", "Select", "h/l", "Go up/down")
			if m.session.File() != nil {
				keys = append(keys, "tab", "Keep current")
			}
			keys = append(keys, "q", "Quit")
		} else {
			keys = append(keys, "enter", "Analyze", "c", "Choose different image", "r", "Start over", "q", "Quit")
		}
	case workflow.StepConfigure:
		keys = append(keys, "tab", "Next field", "left/right", "Change", "ctrl+g", "Generate", "ctrl+r", "Start over")
	case workflow.StepResult:
		keys = append(keys, "tab", "Story/Vocabulary")
		if m.session.Result().HasAudio() {
			keys = append(keys, "space", "Play/Pause")
		}
		keys = append(keys, "s", "Save", "b", "Back", "r", "Start over", "q", "Quit")
	}

	return KeyHelp(keys...)
}

// Getter methods for external access
func (m Model) IsQuitting() bool                     { return m.quitting }
func (m Model) Session() *workflow.Session           { return m.session }
func (m Model) Feed() *Feed                          { return m.feed }
func (m Model) Saved() *story.WriteResult            { return m.saved }
func (m Model) Notice() string                       { return m.notice }
func (m Model) Picking() bool                        { return m.picking }
func (m Model) Orchestrator() *workflow.Orchestrator { return m.orch }

// Run starts the interactive UI and blocks until the user quits
func Run(orch *workflow.Orchestrator, opts Options) error {
	p := tea.NewProgram(NewModel(orch, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
