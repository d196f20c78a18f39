package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

func newScriptCmd() *cobra.Command {
	var (
		caseID string
		output string
	)

	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Convert test cases in block format to pytest skeletons",
		Long: `Read test cases written in the "Test Case N:" block format and print a pytest
skeleton for each of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			cases := testcase.Parse(string(data))
			if caseID != "" {
				tc, err := testcase.Find(cases, caseID)
				if err != nil {
					return fmt.Errorf("%w: %s", err, caseID)
				}
				cases = []testcase.TestCase{*tc}
			}

			if output != "" {
				if err := writePytestFile(cmd.Context(), output, cases); err != nil {
					return err
				}
				printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Wrote %d pytest skeleton(s) to %s", len(cases), output))
				return nil
			}

			if flagJSON {
				scripts := make([]scriptgen.PytestCase, 0, len(cases))
				for i := range cases {
					scripts = append(scripts, scriptgen.Convert(&cases[i]))
				}
				return printJSON(cmd.OutOrStdout(), scripts)
			}

			fmt.Fprintln(cmd.OutOrStdout(), scriptgen.ExportAll(cases))
			return nil
		},
	}

	cmd.Flags().StringVar(&caseID, "id", "", "Only convert the test case with this ID (e.g. TC2)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the skeletons to this file instead of stdout")
	return cmd
}
