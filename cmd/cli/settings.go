package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker/trackers"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
)

// credentialField is a single settable field of the credentials document.
type credentialField struct {
	secret bool
	set    func(c *settings.Credentials, value string)
}

var credentialFields = map[string]credentialField{
	"openai-key":   {secret: true, set: func(c *settings.Credentials, v string) { c.OpenAIKey = v }},
	"groq-key":     {secret: true, set: func(c *settings.Credentials, v string) { c.GroqKey = v }},
	"jira-domain":  {set: func(c *settings.Credentials, v string) { c.Jira.Domain = v }},
	"jira-email":   {set: func(c *settings.Credentials, v string) { c.Jira.Email = v }},
	"jira-token":   {secret: true, set: func(c *settings.Credentials, v string) { c.Jira.APIToken = v }},
	"jira-project": {set: func(c *settings.Credentials, v string) { c.Jira.Project = v }},
	"github-token": {secret: true, set: func(c *settings.Credentials, v string) { c.GitHub.Token = v }},
	"github-repo":  {set: func(c *settings.Credentials, v string) { c.GitHub.Repository = v }},
	"github-url":   {set: func(c *settings.Credentials, v string) { c.GitHub.BaseURL = v }},
}

func credentialFieldNames() []string {
	names := make([]string, 0, len(credentialFields))
	for name := range credentialFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func providerNames() []string {
	names := make([]string, 0, len(provider.Kinds))
	for _, k := range provider.Kinds {
		names = append(names, string(k))
	}
	return names
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage providers, models and credentials",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSelectCmd())
	cmd.AddCommand(newSettingsModelCmd())
	cmd.AddCommand(newSettingsBaseURLCmd())
	cmd.AddCommand(newSettingsRegionCmd())
	cmd.AddCommand(newSettingsCredentialsCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the model configuration and masked credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			return showSettings(cmd.OutOrStdout(), a.settings.ModelConfig(), a.settings.Credentials().Masked())
		},
	}
}

func showSettings(w io.Writer, models settings.ModelConfig, creds settings.Credentials) error {
	if flagJSON {
		return printJSON(w, map[string]interface{}{
			"modelConfig": models,
			"credentials": creds,
		})
	}

	rows := make([][]string, 0, len(provider.Kinds))
	for _, kind := range provider.Kinds {
		ps := models.For(kind)
		selected := ""
		if kind == models.Provider {
			selected = "*"
		}
		endpoint := ps.BaseURL
		if kind == provider.KindBedrock {
			endpoint = ps.Region
		}
		rows = append(rows, []string{
			selected,
			string(kind),
			ps.Model,
			orNone(endpoint),
			strings.Join(ps.CustomModels, ", "),
		})
	}
	printTable(w, []string{"", "PROVIDER", "MODEL", "ENDPOINT", "CUSTOM MODELS"}, rows)
	fmt.Fprintln(w)

	printTable(w, []string{"CREDENTIAL", "VALUE"}, [][]string{
		{"openai-key", orNone(creds.OpenAIKey)},
		{"groq-key", orNone(creds.GroqKey)},
		{"jira-domain", orNone(creds.Jira.Domain)},
		{"jira-email", orNone(creds.Jira.Email)},
		{"jira-token", orNone(creds.Jira.APIToken)},
		{"jira-project", orNone(creds.Jira.Project)},
		{"github-token", orNone(creds.GitHub.Token)},
		{"github-repo", orNone(creds.GitHub.Repository)},
		{"github-url", orNone(creds.GitHub.BaseURL)},
	})
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func newSettingsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [provider]",
		Short: "Select the provider used by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				name, err = promptSelect("Select a provider", providerNames(), string(a.settings.ModelConfig().Provider))
				if err != nil {
					return err
				}
			}

			kind, err := provider.ParseKind(name)
			if err != nil {
				return err
			}
			if err := a.settings.SelectProvider(cmd.Context(), kind); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Selected provider %s (model %s)", kind, a.settings.ModelConfig().For(kind).Model))
			return nil
		},
	}
}

func newSettingsModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the models of a provider",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> [model]",
		Short: "Set the model used for a provider",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := provider.ParseKind(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			model := ""
			if len(args) == 2 {
				model = args[1]
			} else {
				ps := a.settings.ModelConfig().For(kind)
				model, err = promptSelect("Select a model", ps.Models(kind), ps.Model)
				if err != nil {
					return err
				}
			}

			if err := a.settings.SelectModel(cmd.Context(), kind, model); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Model for %s set to %s", kind, model))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <provider> <model>",
		Short: "Add a custom model to a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := provider.ParseKind(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.settings.AddCustomModel(cmd.Context(), kind, args[1]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added custom model %s to %s", strings.TrimSpace(args[1]), kind))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <provider>",
		Short: "List the models offered for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := provider.ParseKind(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			ps := a.settings.ModelConfig().For(kind)
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), ps.Models(kind))
			}
			rows := [][]string{}
			for _, model := range ps.Models(kind) {
				selected := ""
				if model == ps.Model {
					selected = "*"
				}
				rows = append(rows, []string{selected, model})
			}
			printTable(cmd.OutOrStdout(), []string{"", "MODEL"}, rows)
			return nil
		},
	})

	return cmd
}

func newSettingsBaseURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "baseurl <provider> <url>",
		Short: "Set the server address of a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := provider.ParseKind(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.settings.SetBaseURL(cmd.Context(), kind, args[1]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Base URL for %s set to %s", kind, a.settings.ModelConfig().For(kind).BaseURL))
			return nil
		},
	}
}

func newSettingsRegionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "region <region>",
		Short: "Set the AWS region used for Bedrock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.settings.SetRegion(cmd.Context(), provider.KindBedrock, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Bedrock region set to %s", strings.TrimSpace(args[0])))
			return nil
		},
	}
}

func newSettingsCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage API keys and issue tracker credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <field> [value]",
		Short: "Set a credential field",
		Long: "Set a credential field. Secrets are prompted for when no value is given.\n\nFields: " +
			strings.Join(credentialFieldNames(), ", "),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := credentialFields[args[0]]
			if !ok {
				return fmt.Errorf("unknown credential field %q (expected one of %s)", args[0], strings.Join(credentialFieldNames(), ", "))
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			value := ""
			if len(args) == 2 {
				value = strings.TrimSpace(args[1])
			} else {
				var mask rune
				if field.secret {
					mask = '*'
				}
				value, err = promptText(args[0], mask)
				if err != nil {
					return err
				}
			}

			if err := a.settings.UpdateCredentials(cmd.Context(), func(c *settings.Credentials) {
				field.set(c, value)
			}); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Credential %s saved", args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <jira|github>",
		Short: "Check that the stored tracker credentials can connect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := issuetracker.ProviderType(args[0])
			if !tracker.IsValid() {
				return fmt.Errorf("unknown issue tracker %q", args[0])
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			return validateTracker(cmd, a, trackers.Factory{}, tracker)
		},
	})

	return cmd
}

func validateTracker(cmd *cobra.Command, a *app, factory issuetracker.ClientFactory, tracker issuetracker.ProviderType) error {
	client, err := factory.NewClient(tracker, a.settings.TrackerConfig())
	if err != nil {
		return err
	}

	stop := startSpinner(fmt.Sprintf("Connecting to %s", tracker))
	err = client.ValidateConnection(cmd.Context())
	stop()
	if err != nil {
		a.logger.Error(cmd.Context(), "tracker connection failed", map[string]interface{}{
			"tracker": string(tracker),
			"error":   err.Error(),
		})
		return issuetracker.ErrConnectionFailed
	}

	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Connection to %s successful", tracker))
	return nil
}
