package tui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// clipboardArgs picks the clipboard command for the current platform.
// lookPath is exec.LookPath outside of tests.
func clipboardArgs(goos string, wayland bool, lookPath func(string) (string, error)) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "linux":
		candidates := [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
		if wayland {
			candidates = append([][]string{{"wl-copy"}}, candidates...)
		}
		for _, c := range candidates {
			if _, err := lookPath(c[0]); err == nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("no clipboard tool: install wl-copy, xclip or xsel")
	}
	return nil, fmt.Errorf("clipboard not supported on %s", goos)
}

// copyToClipboard copies text to the system clipboard.
func copyToClipboard(text string) error {
	args, err := clipboardArgs(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "", exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	return nil
}
