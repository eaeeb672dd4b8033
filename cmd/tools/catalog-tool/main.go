// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"content-analyzer/internal/classifier"
	"content-analyzer/pkg/catalog"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	classifyCmd := flag.NewFlagSet("classify", flag.ExitOnError)
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)

	validatePath := validateCmd.String("path", "", "Path to a scenario catalog (default: embedded)")
	listPath := listCmd.String("path", "", "Path to a scenario catalog (default: embedded)")
	idsOnly := listCmd.Bool("ids", false, "Print scenario ids only, one per line")
	text := classifyCmd.String("text", "", "Text to classify")
	checkPath := checkCmd.String("path", "", "Path to a scenario catalog (default: embedded)")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		err = validateCatalog(os.Stdout, *validatePath)
	case "list":
		_ = listCmd.Parse(os.Args[2:])
		err = listScenarios(os.Stdout, *listPath, *idsOnly)
	case "classify":
		_ = classifyCmd.Parse(os.Args[2:])
		input := *text
		if input == "" {
			input = strings.Join(classifyCmd.Args(), " ")
		}
		err = classify(os.Stdout, input)
	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		err = checkCatalog(os.Stdout, *checkPath)
	case "help":
		help(os.Stdout)
	default:
		help(os.Stdout)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validateCatalog(w io.Writer, path string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Catalog validation passed: version %s, %d scenarios.\n", cat.Version(), cat.Len())
	return nil
}

func listScenarios(w io.Writer, path string, idsOnly bool) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	if idsOnly {
		for _, id := range cat.IDs() {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINTENT\tITEMS\tKB\tGAPS")
	for _, s := range cat.All() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			s.ID, s.Response.Intent, len(s.Response.Items), len(s.Response.KBMatches), len(s.Response.KnowledgeGaps))
	}
	return tw.Flush()
}

func classify(w io.Writer, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required for classify")
	}

	m := classifier.Explain(text)
	if m == nil {
		fmt.Fprintln(w, "no match (fallback extraction)")
	} else {
		fmt.Fprintf(w, "%s (keyword %q)\n", m.ScenarioID, m.Keyword)
	}
	if kind := classifier.DetectInputType(text); kind != "" {
		fmt.Fprintf(w, "input type: %s\n", kind)
	}
	return nil
}

// checkCatalog verifies that every rule points at a scenario in the catalog
// and that each scenario's example input routes back to itself.
func checkCatalog(w io.Writer, path string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	var problems []string
	for _, rule := range classifier.Rules() {
		if _, ok := cat.Lookup(rule.ScenarioID); !ok {
			problems = append(problems, fmt.Sprintf("rule %s has no catalog entry", rule.ScenarioID))
		}
	}
	for _, s := range cat.All() {
		got, ok := classifier.Classify(s.Input)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("example for %s matches no rule", s.ID))
		case got != s.ID:
			problems = append(problems, fmt.Sprintf("example for %s routes to %s", s.ID, got))
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		return fmt.Errorf("catalog check found %d problem(s)", len(problems))
	}
	fmt.Fprintf(w, "Catalog check passed: %d rules, %d scenarios.\n", len(classifier.Rules()), cat.Len())
	return nil
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog-tool <command> [options]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate  Validate a scenario catalog against its schema")
	fmt.Fprintln(w, "  list      List scenarios with response sizes")
	fmt.Fprintln(w, "  classify  Show which scenario a text routes to")
	fmt.Fprintln(w, "  check     Cross-check classifier rules against the catalog")
	fmt.Fprintln(w, "  help      Show this help message")
}
