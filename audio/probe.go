package audio

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CheckPlayer checks that the player binary can be run
func CheckPlayer(command string) error {
	if command == "" {
		command = DefaultCommand
	}
	cmd := exec.Command(command, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not found. Please install ffmpeg to play narration", command)
	}
	return nil
}

// Duration reads the length of an audio file using ffprobe
func Duration(path string) (time.Duration, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe narration: %w", err)
	}
	return parseDuration(string(output))
}

func parseDuration(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative duration %q", strings.TrimSpace(s))
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// FormatDuration formats a duration as MM:SS, or HH:MM:SS past an hour
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
