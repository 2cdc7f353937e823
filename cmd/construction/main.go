package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/joshharrison/construction/internal/cpm"
	"github.com/joshharrison/construction/internal/graph"
	"github.com/joshharrison/construction/internal/reporter"
	"github.com/joshharrison/construction/internal/ui"
)

// exitFailure is returned for every failure; success exits 0.
const exitFailure = 84

var (
	flagFormat      string
	flagInputFormat string
	flagStrategy    string
	flagUnit        string
	flagMarker      string
	flagColor       bool
	flagOutput      string
	flagVerbose     bool
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	ui.SetEnabled(false)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", ui.BoldRed("construction:"), err)
		return exitFailure
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "construction <file>",
		Short: "Compute a critical-path schedule for a set of dependent tasks",
		Long: `Construction reads a task file, one task per line:

    identifier;description;duration;dep1;dep2;...

and prints the total project duration, the window in which each task must
begin, and a timeline bar per task. Use "-" to read from standard input.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				cmd.PrintErrln(cmd.UsageString())
				return fmt.Errorf("expected exactly one input file, got %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return schedule(cmd, args[0])
		},
	}

	rootCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, json, dot)")
	rootCmd.Flags().StringVar(&flagInputFormat, "input-format", "auto", "Input format (auto, text, json)")
	rootCmd.Flags().StringVar(&flagStrategy, "strategy", string(cpm.StrategyWorklist), "Propagation strategy (worklist, topological)")
	rootCmd.Flags().StringVar(&flagUnit, "unit", "weeks", "Time unit shown in the report")
	rootCmd.Flags().StringVar(&flagMarker, "marker", "=", "Character drawn for each unit of duration")
	rootCmd.Flags().BoolVar(&flagColor, "color", false, "Colourise the text report")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the report to a file instead of stdout")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log diagnostics to stderr")

	return rootCmd
}

func schedule(cmd *cobra.Command, path string) error {
	// Only the text report is styled; json and dot stay machine-readable.
	ui.SetEnabled(flagColor && flagFormat == "text")

	switch flagFormat {
	case "text", "json", "dot":
	default:
		return fmt.Errorf("unsupported format %q (use text, json, or dot)", flagFormat)
	}

	if flagVerbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	g, err := parseInput(data, path, flagInputFormat)
	if err != nil {
		return fmt.Errorf("build task graph: %w", err)
	}
	log.Printf("parsed %d tasks (%d roots, %d leaves)", g.TaskCount(), len(g.Roots), len(g.Leaves))

	result, err := cpm.Analyze(g, cpm.Options{Strategy: cpm.Strategy(flagStrategy)})
	if err != nil {
		return fmt.Errorf("CPM analysis: %w", err)
	}

	rpt := reporter.New(g, result, reporter.Config{
		Unit:   flagUnit,
		Marker: flagMarker,
	})

	var buf bytes.Buffer
	switch flagFormat {
	case "json":
		out, err := rpt.JSON()
		if err != nil {
			return err
		}
		buf.Write(out)
		buf.WriteByte('\n')
	case "dot":
		err = rpt.PrintDOT(&buf)
	default:
		err = rpt.PrintReport(&buf)
	}
	if err != nil {
		return err
	}

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("wrote report to %s", flagOutput)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// parseInput picks the parser from the flag, or in auto mode from the file
// extension and then the content: a well-formed JSON array or object is
// read as JSON, anything else as text records.
func parseInput(data []byte, path, format string) (*graph.TaskGraph, error) {
	switch format {
	case "text":
		return graph.Parse(bytes.NewReader(data))
	case "json":
		return graph.ParseJSON(data)
	case "auto":
	default:
		return nil, fmt.Errorf("unsupported input format %q (use auto, text, or json)", format)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return graph.ParseJSON(data)
	}
	if looksLikeJSON(data) {
		return graph.ParseJSON(data)
	}
	return graph.Parse(bytes.NewReader(data))
}

// looksLikeJSON reports whether data is a valid JSON array or object. Text
// records such as "[A];foundation;3;" start with a bracket too.
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || (trimmed[0] != '[' && trimmed[0] != '{') {
		return false
	}
	return gjson.ValidBytes(trimmed)
}
