package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/testcase-generator/generation"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker/trackers"
	"github.com/hairizuanbinnoorazman/testcase-generator/prompt"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// Output formats accepted by --format.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

var errUnknownFormat = errors.New("format must be one of text, markdown, json")

type generateOptions struct {
	template    string
	provider    string
	coverage    int
	environment string
	priority    string
	complexity  string
	format      string
	pytest      string
	jira        bool
	github      bool
}

func newGenerateCmd() *cobra.Command {
	defaults := testcase.DefaultCustomization()
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [requirement]",
		Short: "Generate test cases for a requirement",
		Long: `Generate test cases for a requirement using the selected provider.

The requirement is read from the arguments, or prompted for when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.template, "template", "", "Path to a template file appended to the prompt")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Provider to use instead of the selected one (openai, ollama, groq, bedrock)")
	cmd.Flags().IntVar(&opts.coverage, "coverage", defaults.Coverage, "Target coverage percentage (50-100)")
	cmd.Flags().StringVar(&opts.environment, "environment", string(defaults.Environment), "Target environment (development, staging, production)")
	cmd.Flags().StringVar(&opts.priority, "priority", string(defaults.Priority), "Priority focus (edge-cases, permissions, performance, security)")
	cmd.Flags().StringVar(&opts.complexity, "complexity", string(defaults.Complexity), "Test complexity (simple, moderate, complex)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format (text, markdown, json)")
	cmd.Flags().StringVar(&opts.pytest, "pytest", "", "Write pytest skeletons for every case to this file")
	cmd.Flags().BoolVar(&opts.jira, "jira", false, "Create a Jira issue for every case")
	cmd.Flags().BoolVar(&opts.github, "github", false, "Create a GitHub issue for every case")

	return cmd
}

func (o *generateOptions) customization() testcase.Customization {
	return testcase.Customization{
		Coverage:    o.coverage,
		Environment: testcase.Environment(o.environment),
		Priority:    testcase.Priority(o.priority),
		Complexity:  testcase.Complexity(o.complexity),
	}
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	format := opts.format
	if flagJSON {
		format = formatJSON
	}
	if !isValidFormat(format) {
		return errUnknownFormat
	}

	customization := opts.customization()
	if err := customization.Validate(); err != nil {
		return err
	}

	var kind provider.Kind
	if opts.provider != "" {
		k, err := provider.ParseKind(opts.provider)
		if err != nil {
			return err
		}
		kind = k
	}

	template, err := readTemplate(opts.template)
	if err != nil {
		return err
	}

	requirement := strings.TrimSpace(strings.Join(args, " "))
	if requirement == "" && isTerminal(os.Stdin) {
		requirement, err = promptText("Requirement", 0)
		if err != nil {
			return err
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	service := generation.NewService(a.settings, nil, a.logger)

	stopSpinner := startSpinner("Generating test cases")
	cases, err := service.Generate(ctx, generation.Request{
		Requirement:   requirement,
		Template:      template,
		Customization: customization,
		Provider:      kind,
	})
	stopSpinner()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errCancelled
		}
		return errors.New(generation.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if err := renderCases(out, cases, format, isTerminal(os.Stdout)); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if opts.pytest != "" {
		if err := writePytestFile(ctx, opts.pytest, cases); err != nil {
			return err
		}
		printSuccess(errOut, fmt.Sprintf("Wrote %d pytest skeleton(s) to %s", len(cases), opts.pytest))
	}

	var trackerKinds []issuetracker.ProviderType
	if opts.jira {
		trackerKinds = append(trackerKinds, issuetracker.ProviderJira)
	}
	if opts.github {
		trackerKinds = append(trackerKinds, issuetracker.ProviderGitHub)
	}
	for _, tracker := range trackerKinds {
		if err := exportIssues(ctx, a, trackers.Factory{}, tracker, cases, errOut); err != nil {
			return err
		}
	}

	return nil
}

func isValidFormat(format string) bool {
	switch format {
	case formatText, formatMarkdown, formatJSON:
		return true
	default:
		return false
	}
}

// readTemplate loads a template file. An empty path means no template.
func readTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("template %s is not valid UTF-8 text", path)
	}
	template := string(data)
	if err := prompt.ValidateTemplate(template); err != nil {
		return "", err
	}
	return template, nil
}

func renderCases(w io.Writer, cases []testcase.TestCase, format string, tty bool) error {
	switch format {
	case formatJSON:
		return printJSON(w, cases)
	case formatMarkdown:
		md := testcase.Markdown(cases)
		if tty {
			rendered, err := renderMarkdown(md)
			if err == nil {
				md = rendered
			}
		}
		fmt.Fprint(w, md)
		return nil
	case formatText:
		fmt.Fprintln(w, testcase.Format(cases))
		return nil
	default:
		return errUnknownFormat
	}
}

// writePytestFile writes the concatenated skeletons to path, replacing any
// existing file.
func writePytestFile(ctx context.Context, path string, cases []testcase.TestCase) error {
	if len(cases) == 0 {
		return scriptgen.ErrNoTestCases
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir, err := storage.NewLocalStorage(filepath.Dir(abs))
	if err != nil {
		return err
	}
	return dir.Upload(ctx, filepath.Base(abs), strings.NewReader(scriptgen.ExportAll(cases)))
}

// exportIssues files one issue per case, reporting the created issues once
// every case has been tried.
func exportIssues(ctx context.Context, a *app, factory issuetracker.ClientFactory, tracker issuetracker.ProviderType, cases []testcase.TestCase, w io.Writer) error {
	client, err := factory.NewClient(tracker, a.settings.TrackerConfig())
	if err != nil {
		return err
	}
	exporter := issuetracker.NewExporter(client, tracker, a.logger)

	bar := newProgressBar(len(cases), fmt.Sprintf("Creating %s issues", tracker))
	rows := make([][]string, 0, len(cases))
	failed := 0
	for _, tc := range cases {
		issue, err := exporter.Export(ctx, tc)
		if err != nil {
			failed++
			rows = append(rows, []string{tc.ID, "-", err.Error()})
		} else {
			rows = append(rows, []string{tc.ID, issue.ExternalID, issue.URL})
		}
		_ = bar.Add(1)
	}

	printTable(w, []string{"CASE", "ISSUE", "URL"}, rows)
	if failed > 0 {
		return fmt.Errorf("%d of %d %s issues could not be created", failed, len(cases), tracker)
	}
	printSuccess(w, fmt.Sprintf("Created %d %s issue(s)", len(cases), tracker))
	return nil
}
