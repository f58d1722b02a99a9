package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// EntryKind is the type of an activity feed entry
type EntryKind string

const (
	// EntryRequest is a call sent to the story backend
	EntryRequest EntryKind = "request"
	// EntryResponse is a successful backend reply
	EntryResponse EntryKind = "response"
	// EntryStatus is a local status update
	EntryStatus EntryKind = "status"
	// EntryError is a failed call or rejected action
	EntryError EntryKind = "error"
	// EntryComplete marks a finished step, such as a saved story
	EntryComplete EntryKind = "complete"
)

// Entry is a single line of the activity feed
type Entry struct {
	Timestamp time.Time
	Kind      EntryKind

	// Endpoint is the backend path the entry refers to, e.g. "/process-image"
	Endpoint string

	Title string

	// Detail is shown muted after the title
	Detail string

	// Latency of the call, for responses
	Latency time.Duration
}

// Feed is a scrolling log of backend activity shown under the workflow
type Feed struct {
	Entries    []Entry
	Viewport   viewport.Model
	Width      int
	Height     int
	MaxEntries int

	now func() time.Time
}

// NewFeed creates an empty feed with the given dimensions
func NewFeed(width, height int) *Feed {
	vp := viewport.New(width, height)
	return &Feed{
		Entries:    make([]Entry, 0),
		Viewport:   vp,
		Width:      width,
		Height:     height,
		MaxEntries: 100,
		now:        time.Now,
	}
}

// Add appends an entry and scrolls to it
func (f *Feed) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = f.now()
	}

	f.Entries = append(f.Entries, e)
	if f.MaxEntries > 0 && len(f.Entries) > f.MaxEntries {
		f.Entries = f.Entries[len(f.Entries)-f.MaxEntries:]
	}

	f.Viewport.SetContent(f.Render())
	f.Viewport.GotoBottom()
}

// Request records an outgoing backend call
func (f *Feed) Request(method, endpoint, detail string) {
	f.Add(Entry{
		Kind:     EntryRequest,
		Endpoint: endpoint,
		Title:    method + " " + endpoint,
		Detail:   detail,
	})
}

// Response records a successful backend reply
func (f *Feed) Response(endpoint string, latency time.Duration, detail string) {
	f.Add(Entry{
		Kind:     EntryResponse,
		Endpoint: endpoint,
		Title:    "OK " + endpoint,
		Detail:   detail,
		Latency:  latency,
	})
}

// Status records a local status update
func (f *Feed) Status(title string, detail ...string) {
	f.Add(Entry{Kind: EntryStatus, Title: title, Detail: strings.Join(detail, ", ")})
}

// Error records a failure
func (f *Feed) Error(endpoint, message string) {
	title := "Error"
	if endpoint != "" {
		title = "Error from " + endpoint
	}
	f.Add(Entry{Kind: EntryError, Endpoint: endpoint, Title: title, Detail: message})
}

// Complete records a finished step
func (f *Feed) Complete(title string, detail ...string) {
	f.Add(Entry{Kind: EntryComplete, Title: title, Detail: strings.Join(detail, ", ")})
}

// SetSize updates the feed dimensions
func (f *Feed) SetSize(width, height int) {
	f.Width = width
	f.Height = height
	f.Viewport.Width = width
	f.Viewport.Height = height
	f.Viewport.SetContent(f.Render())
	f.Viewport.GotoBottom()
}

// Clear removes all entries
func (f *Feed) Clear() {
	f.Entries = make([]Entry, 0)
	f.Viewport.SetContent(f.Render())
}

// Last returns the newest entry
func (f *Feed) Last() (Entry, bool) {
	if len(f.Entries) == 0 {
		return Entry{}, false
	}
	return f.Entries[len(f.Entries)-1], true
}

// View returns the viewport view for Bubble Tea
func (f *Feed) View() string {
	return f.Viewport.View()
}

// Render renders all entries to a string
func (f *Feed) Render() string {
	if len(f.Entries) == 0 {
		return MutedStyle.Render("  No backend activity yet")
	}

	lines := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		lines = append(lines, renderEntry(e))
	}
	return strings.Join(lines, "\n")
}

func renderEntry(e Entry) string {
	icon, style := entryStyle(e.Kind)
	timestamp := lipgloss.NewStyle().Foreground(ColorMuted).Render(e.Timestamp.Format("15:04:05"))

	var suffix string
	switch {
	case e.Kind == EntryError && e.Detail != "":
		suffix = " " + lipgloss.NewStyle().Foreground(ColorError).Render("- "+truncate(e.Detail, 120))
	case e.Latency > 0 && e.Detail != "":
		suffix = " " + MutedStyle.Render(fmt.Sprintf("(%.1fs, %s)", e.Latency.Seconds(), truncate(e.Detail, 80)))
	case e.Latency > 0:
		suffix = " " + MutedStyle.Render(fmt.Sprintf("(%.1fs)", e.Latency.Seconds()))
	case e.Detail != "":
		suffix = " " + MutedStyle.Render("("+truncate(e.Detail, 80)+")")
	}

	return fmt.Sprintf("%s %s %s%s", timestamp, style.Render(icon), style.Render(e.Title), suffix)
}

func entryStyle(kind EntryKind) (string, lipgloss.Style) {
	switch kind {
	case EntryRequest:
		return "[>]", lipgloss.NewStyle().Foreground(ColorSecondary)
	case EntryResponse:
		return "[<]", lipgloss.NewStyle().Foreground(ColorSuccess)
	case EntryError:
		return "[!]", lipgloss.NewStyle().Foreground(ColorError)
	case EntryComplete:
		return "[x]", lipgloss.NewStyle().Foreground(ColorSuccess)
	default:
		return "[-]", lipgloss.NewStyle().Foreground(ColorPrimary)
	}
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDataSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// RenderFeedBox renders the feed in a titled box
func RenderFeedBox(feed *Feed, title string, width int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	if width > 0 {
		boxStyle = boxStyle.Width(width)
	}

	titleStr := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(title)
	return titleStr + "\n" + boxStyle.Render(feed.View())
}
