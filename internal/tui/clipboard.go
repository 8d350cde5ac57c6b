package tui

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

type clipboardCmd struct {
	name string
	args []string
}

// clipboardCommands lists the copy commands to try for goos, in order.
// Wayland is preferred over X11 on unix.
func clipboardCommands(goos string) []clipboardCmd {
	switch goos {
	case "darwin":
		return []clipboardCmd{{name: "pbcopy"}}
	case "windows":
		return []clipboardCmd{
			{name: "cmd", args: []string{"/c", "clip"}},
			{name: "powershell", args: []string{"-NoProfile", "-Command", "Set-Clipboard"}},
		}
	default:
		return []clipboardCmd{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var errs []error
	for _, c := range clipboardCommands(runtime.GOOS) {
		err := runClipboardCmd(c.name, c.args, s)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func runClipboardCmd(name string, args []string, stdin string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if err := cmd.Run(); err != nil {
		return errors.New(name + ": " + err.Error())
	}
	return nil
}
