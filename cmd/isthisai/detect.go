package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"isthisai-detection/internal/detector"
	"isthisai-detection/internal/imaging"
	"isthisai-detection/internal/ingest"
	"isthisai-detection/internal/report"
)

type detectFlags struct {
	format   string
	disabled []string
	failOnAI bool
}

func (f *detectFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "text", "Output format: text, json or yaml")
	flags.StringSliceVar(&f.disabled, "disable", nil, "Check names to disable (may be repeated)")
	flags.BoolVar(&f.failOnAI, "fail-on-ai", false, "Exit with status 2 when the verdict is AI")
}

func newTextCmd() *cobra.Command {
	f := &detectFlags{}

	cmd := &cobra.Command{
		Use:   "text [file|-]",
		Short: "Analyze text from a .txt, .md, .docx or .pdf file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				doc *ingest.Document
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				doc, err = ingest.ReadAll("stdin", cmd.InOrStdin())
			} else {
				doc, err = ingest.ReadFile(args[0])
			}
			if err != nil {
				return exitError(3, "failed to read input: %v", err)
			}

			d := detector.NewTextDetector()
			if err := disableChecks(d.Checks(), f.disabled); err != nil {
				return err
			}

			result := d.Detect(doc.Text)
			return writeResult(cmd.OutOrStdout(), f, result, func() string {
				return report.Text(result, doc.Text)
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newImageCmd() *cobra.Command {
	f := &detectFlags{}

	cmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Analyze an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return exitError(3, "failed to read image: %v", err)
			}
			if mt := imaging.SniffMIME(data); !imaging.IsImageMIME(mt) {
				return exitError(3, "%s is not an image (detected %s)", path, mt)
			}

			src := imaging.Source{Data: data, FileName: filepath.Base(path)}
			if info, err := os.Stat(path); err == nil {
				src.LastModified = info.ModTime()
			}

			d := detector.NewImageDetector(imaging.NewDecoder())
			if err := disableChecks(d.Checks(), f.disabled); err != nil {
				return err
			}

			result := d.DetectFromFile(context.Background(), src)
			return writeResult(cmd.OutOrStdout(), f, result, func() string {
				return report.Image(result, src.FileName)
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newURLCmd() *cobra.Command {
	f := &detectFlags{}

	cmd := &cobra.Command{
		Use:   "url <image-url>",
		Short: "Estimate from an image URL alone, without downloading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := detector.NewImageDetector(imaging.NewDecoder()).DetectFromURL(args[0])
			return writeResult(cmd.OutOrStdout(), f, result, func() string {
				return report.Image(result, args[0])
			})
		},
	}

	f.register(cmd)
	return cmd
}

func disableChecks[C detector.Check](r *detector.Registry[C], names []string) error {
	for _, name := range names {
		if err := r.Disable(name); err != nil {
			return fmt.Errorf("--disable: %w", err)
		}
	}
	return nil
}

func writeResult(w io.Writer, f *detectFlags, result detector.DetectionResult, text func() string) error {
	switch f.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case "text":
		if _, err := fmt.Fprintln(w, text()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q: want text, json or yaml", f.format)
	}

	if f.failOnAI && result.IsAI {
		return exitError(2, "")
	}
	return nil
}
