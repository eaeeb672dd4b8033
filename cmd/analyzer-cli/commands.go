// cmd/analyzer-cli/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"content-analyzer/internal/bootstrap"
	"content-analyzer/internal/classifier"
	"content-analyzer/internal/engine"
)

var version = "dev"

type analyzeOutput struct {
	Source     string      `json:"source"`
	ScenarioID string      `json:"scenario_id,omitempty"`
	Mode       string      `json:"mode"`
	DurationMs int64       `json:"duration_ms"`
	Response   interface{} `json:"response"`
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var (
		file     string
		mode     string
		endpoint string
		apiKey   string
		noDelay  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze text from arguments, a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var extra []engine.Option
			if noDelay {
				extra = append(extra, engine.WithDelayer(engine.NoDelay{}))
			}
			eng, err := c.engine(extra...)
			if err != nil {
				return err
			}

			update := engine.SettingsUpdate{}
			if cmd.Flags().Changed("mode") {
				update.Mode = &mode
			}
			if cmd.Flags().Changed("endpoint") {
				update.Endpoint = &endpoint
			}
			if cmd.Flags().Changed("api-key") {
				update.APIKey = &apiKey
			}
			if _, err := eng.UpdateSettings(update); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := c.renderer(out)
			if !c.outputJSON {
				if err := r.Processing(); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}

			res, err := eng.Run(cmd.Context(), text)
			if err != nil {
				return err
			}

			if c.outputJSON {
				return writeJSON(out, analyzeOutput{
					Source:     res.Source,
					ScenarioID: res.ScenarioID,
					Mode:       res.Mode,
					DurationMs: res.Duration.Milliseconds(),
					Response:   res.Response,
				})
			}
			if err := r.Response(res.Response); err != nil {
				return err
			}
			label := res.Source
			if res.ScenarioID != "" {
				label += " (" + res.ScenarioID + ")"
			}
			_, err = color.New(color.Faint).Fprintf(out, "\nsource: %s, mode: %s, %dms\n", label, res.Mode, res.Duration.Milliseconds())
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().StringVar(&mode, "mode", "", "override the analyzer mode (simulated|live)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "override the live agent endpoint")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "override the live agent API key")
	cmd.Flags().BoolVar(&noDelay, "no-delay", false, "skip the simulated processing delay")

	return cmd
}

func (c *cli) newScenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the example inputs from the scenario catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := bootstrap.Catalog(c.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.outputJSON {
				return writeJSON(out, cat.Examples())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE")
			for _, ex := range cat.Examples() {
				fmt.Fprintf(tw, "%s\t%s\n", ex.ID, ex.Title)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a scenario's example input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := bootstrap.Catalog(c.cfg)
			if err != nil {
				return err
			}
			sc, ok := cat.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown scenario %q", args[0])
			}
			if c.outputJSON {
				return writeJSON(cmd.OutOrStdout(), sc)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sc.Input)
			return err
		},
	})

	return cmd
}

func (c *cli) newDetectTypeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "detect-type [text...]",
		Short: "Guess the input type (RFP, support email, ...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			kind := classifier.DetectInputType(text)
			if c.outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"type": kind})
			}
			if kind == "" {
				kind = "(too short to tell)"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), kind)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	return cmd
}

func (c *cli) newTestConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the configured live agent accepts requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine()
			if err != nil {
				return err
			}
			if err := eng.TestConnection(cmd.Context()); err != nil {
				return err
			}
			_, err = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ connected to %s\n", eng.Settings().Endpoint)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "analyzer-cli", version)
			return err
		},
	}
}

func (c *cli) engine(extra ...engine.Option) (*engine.Engine, error) {
	cat, err := bootstrap.Catalog(c.cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.Engine(c.cfg, cat, c.log, extra...)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
