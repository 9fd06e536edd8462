package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"trailarr/internal/livesync"
	"trailarr/internal/model"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" || s == "" {
		return s
	}
	return color + s + ansiReset
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(line, ansiBlue, colorize), paint(rule, ansiBlue, colorize)}
}

func extraStatusKind(status model.ExtraStatus) statusKind {
	switch status {
	case model.ExtraDownloaded:
		return statusOK
	case model.ExtraFailed, model.ExtraRejected:
		return statusError
	case model.ExtraQueued, model.ExtraDownloading:
		return statusWarn
	default:
		return statusInfo
	}
}

func taskStatusKind(status model.TaskStatus) statusKind {
	switch status {
	case model.TaskSuccess:
		return statusOK
	case model.TaskFailed:
		return statusError
	case model.TaskRunning:
		return statusWarn
	default:
		return statusInfo
	}
}

func syncStateKind(state livesync.State) statusKind {
	switch state {
	case livesync.StateLive:
		return statusOK
	case livesync.StatePolling:
		return statusWarn
	case livesync.StateClosed:
		return statusError
	default:
		return statusInfo
	}
}

// colorExtraStatus paints a status cell. Not-downloaded stays plain.
func colorExtraStatus(status model.ExtraStatus, colorize bool) string {
	if status == model.ExtraNotDownloaded {
		return string(status)
	}
	return paint(string(status), statusKindColor(extraStatusKind(status)), colorize)
}

func colorTaskStatus(status model.TaskStatus, colorize bool) string {
	if status == model.TaskIdle {
		return string(status)
	}
	return paint(string(status), statusKindColor(taskStatusKind(status)), colorize)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
