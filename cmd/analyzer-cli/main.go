// Package main provides the content analyzer CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"content-analyzer/internal/bootstrap"
	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/render"
)

// cli carries state shared by the subcommands.
type cli struct {
	cfgFile    string
	outputJSON bool
	noColor    bool

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "analyzer-cli",
		Short: "Analyze business text into intent, routing, items and knowledge-base matches",
		Long: `analyzer-cli runs the content analyzer locally.

Simulated mode matches the text against the scenario catalog and falls back
to generic extraction. Live mode forwards the text to the configured agent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path (default: configs/config.yaml)")
	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(c.newAnalyzeCmd())
	root.AddCommand(c.newScenariosCmd())
	root.AddCommand(c.newDetectTypeCmd())
	root.AddCommand(c.newTestConnectionCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func (c *cli) init() error {
	var err error
	if c.cfgFile != "" {
		c.cfg, err = config.LoadFromFile(c.cfgFile)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Diagnostics go to stderr so --json output stays clean.
	c.cfg.Logging.Output = "stderr"
	if c.cfg.Logging.Level == "" || c.cfg.Logging.Level == "info" {
		c.cfg.Logging.Level = "warn"
	}
	c.log, err = bootstrap.Logger(c.cfg)
	if err != nil {
		return err
	}

	if c.noColor {
		color.NoColor = true
	}
	return nil
}

func (c *cli) renderer(w io.Writer) *render.Renderer {
	if c.noColor {
		return render.New(w, render.WithoutColor())
	}
	return render.New(w)
}

// readText joins args, or reads file, or stdin when neither is given or the
// only arg is "-".
func readText(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-", len(args) == 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
