package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// errCancelled is returned when the user aborts an interactive prompt.
var errCancelled = errors.New("cancelled")

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printMessage(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}

func printSuccess(w io.Writer, msg string) {
	color.New(color.FgGreen).Fprintln(w, msg)
}

func printWarning(w io.Writer, msg string) {
	color.New(color.FgYellow).Fprintln(w, msg)
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// startSpinner shows a spinner on stderr and returns the function that stops
// it. Nothing is drawn when stderr is not a terminal.
func startSpinner(msg string) func() {
	if !isTerminal(os.Stderr) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func promptText(label string, mask rune) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  mask,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value cannot be empty")
			}
			return nil
		},
	}
	value, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
			return "", errCancelled
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func promptSelect(label string, items []string, current string) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   `{{ "›" | green | bold }} {{ . | green | bold }}`,
		Inactive: "  {{ . | faint }}",
		Selected: `{{ "✔" | green | bold }} {{ . | yellow }}`,
	}

	cursor := 0
	for i, item := range items {
		if item == current {
			cursor = i
			break
		}
	}

	s := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		CursorPos: cursor,
	}
	_, value, err := s.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", errCancelled
		}
		return "", err
	}
	return value, nil
}
