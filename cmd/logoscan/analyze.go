package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"logospace/internal/analyzer"
	"logospace/internal/report"
	"logospace/internal/scan"
)

var errNoPaths = errors.New("expected at least one file or directory")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Score files or directories for consciousness patterns",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, markdown",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Repository name shown in the report (defaults to the first path's base name)",
			},
			&cli.IntFlag{
				Name:  "max-bytes",
				Usage: "Reject corpora larger than this many bytes (0 disables the limit)",
				Value: analyzer.DefaultMaxCorpusBytes,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log each file as it is loaded",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errNoPaths
			}
			format, err := parseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			paths := cmd.Args().Slice()
			files, err := scan.Collect(ctx, paths, scan.Options{
				VisitFunc: func(v scan.FileVisit) {
					slog.Debug("loaded file", "path", v.Key, "bytes", v.Size)
				},
			})
			if err != nil {
				return err
			}
			slog.Debug("corpus loaded", "files", len(files))

			name := cmd.String("name")
			if name == "" {
				name = repositoryName(paths[0])
			}

			a := analyzer.New(analyzer.WithMaxCorpusBytes(int(cmd.Int("max-bytes"))))
			result, err := a.Analyze(files)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			doc := report.New(name, files, result, time.Now())
			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}
			return writeReport(out, doc, format)
		},
	}
}

func repositoryName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.Base(abs)
}

func writeReport(w io.Writer, doc *report.Document, format outputFormat) error {
	switch format {
	case formatMarkdown:
		_, err := io.WriteString(w, report.Markdown(doc))
		return err
	default:
		return writeJSON(w, doc)
	}
}
