package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/tliron/commonlog"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	_ "github.com/tliron/commonlog/simple"

	"github.com/cvet-dev/cvet/cvet"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/lint"
	"github.com/cvet-dev/cvet/cvet/source"
)

const programName = "cvet"
const version = "0.1.0"

var log = commonlog.GetLogger(programName)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func fileValidator(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("Expected exactly one argument <file>")
	}
	return nil
}

func setupLogging(c *cli.Context) error {
	verbosity := 0
	if c.Bool("verbose") {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
	return nil
}

func useColor(c *cli.Context) bool {
	if c.Bool("no-color") {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func loadLintConfig(c *cli.Context) (lint.Config, error) {
	path := c.String("config")
	if path == "" {
		if _, err := os.Stat(lint.ConfigFilename); err != nil {
			return lint.DefaultConfig(), nil
		}
		path = lint.ConfigFilename
	}
	log.Infof("Loading lint configuration from %s", path)
	return lint.LoadConfig(path)
}

// displayText decodes raw bytes the same way the pipeline does, so the
// excerpts match the text the spans refer to. Undecodable input yields
// an empty string, which only zero-span diagnostics are rendered against.
func displayText(raw []byte, filename string) string {
	program, err := source.Decode(raw, filename)
	if err != nil {
		return ""
	}
	return program
}

func printDiagnostics(diagnostics []diagnostic.Diagnostic, program string, color bool) {
	for _, diag := range diagnostics {
		rendered := diag.Display(program)
		if !color {
			rendered = ansiPattern.ReplaceAllString(rendered, "")
		}
		fmt.Println(rendered)
	}
}

func checkAction(c *cli.Context) error {
	filename := c.Args().First()
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	lintConfig, err := loadLintConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	output, fatal := cvet.Analyze(ctx, raw, filename, lintConfig)
	log.Debugf("Analysis of %s took %v", filename, time.Since(start))

	if c.Bool("json") {
		encoded, err := json.MarshalIndent(output.Diagnostics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
	} else {
		printDiagnostics(output.Diagnostics, displayText(raw, filename), useColor(c))
	}

	if fatal != nil {
		return cli.Exit(fatal.Message, 2)
	}
	if output.HasErrors() {
		return cli.Exit("", 1)
	}
	return nil
}

func tokensAction(c *cli.Context) error {
	filename := c.Args().First()
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	tokens, diagnostics, fatal := cvet.Tokenize(raw, filename)
	if fatal != nil {
		return cli.Exit(fatal.Message, 2)
	}

	for _, token := range tokens {
		fmt.Printf("%-16s %-24q %s\n", token.Kind, token.Value, token.Span)
	}
	printDiagnostics(diagnostics, displayText(raw, filename), useColor(c))
	return nil
}

func treeAction(c *cli.Context) error {
	filename := c.Args().First()
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tree, diagnostics, fatal := cvet.Parse(ctx, raw, filename)
	if fatal != nil {
		return cli.Exit(fatal.Message, 2)
	}

	if c.Bool("dump") {
		spew.Dump(tree)
	} else {
		fmt.Println(tree)
	}
	printDiagnostics(diagnostics, displayText(raw, filename), useColor(c))
	return nil
}

func main() {
	// nolint:exhaustruct
	app := &cli.App{
		Name:     programName,
		Version:  version,
		Usage:    "A static analyzer for a C subset",
		Compiled: time.Now(),
		Before:   setupLogging,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disables colored output.",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enables additional logging.",
				Aliases: []string{"v"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Analyze a C file and report every diagnostic",
				ArgsUsage: "[file]",
				Args:      true,
				Before:    fileValidator,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Prints diagnostics as JSON instead of rendered excerpts.",
					},
					&cli.StringFlag{
						Name:    "config",
						Usage:   "Path to the lint configuration file.",
						Aliases: []string{"c"},
					},
				},
				Action: checkAction,
			},
			{
				Name:      "tokens",
				Usage:     "Print the token stream of a C file",
				ArgsUsage: "[file]",
				Args:      true,
				Before:    fileValidator,
				Action:    tokensAction,
			},
			{
				Name:      "tree",
				Usage:     "Print the parse tree of a C file",
				ArgsUsage: "[file]",
				Args:      true,
				Before:    fileValidator,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dump",
						Usage:   "Dumps the raw tree structure instead of pretty-printing.",
						Aliases: []string{"d"},
					},
				},
				Action: treeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitErr, isExit := err.(cli.ExitCoder); isExit {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
