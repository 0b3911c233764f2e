package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"resume-builder/internal/usecase"
)

type renderOptions struct {
	input   string
	out     string
	html    bool
	enhance bool
	job     string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a JSON resume to PDF (or HTML with --html)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "JSON resume file")
	f.StringVarP(&opts.out, "out", "o", "", "output file (default <name>_resume.pdf or .html)")
	f.BoolVar(&opts.html, "html", false, "write the HTML preview instead of a PDF")
	f.BoolVar(&opts.enhance, "enhance", false, "apply wording suggestions before rendering")
	f.StringVar(&opts.job, "job", "", "job description file passed to the enhancer")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	raw, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	c, err := root.build()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rec, err := c.Pipeline.ParseJSON(ctx, raw)
	if err != nil {
		return err
	}
	popts := usecase.Options{Enhance: opts.enhance}
	if opts.job != "" {
		job, err := os.ReadFile(opts.job)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		popts.JobContext = string(job)
	}

	var data []byte
	out := opts.out
	if opts.html {
		doc, err := c.Pipeline.Preview(ctx, rec, popts)
		if err != nil {
			return err
		}
		data = []byte(doc.HTML)
		if out == "" {
			out = strings.TrimSuffix(doc.Filename, ".pdf") + ".html"
		}
	} else {
		pdf, doc, err := c.Pipeline.Generate(ctx, rec, popts)
		if err != nil {
			return err
		}
		data = pdf
		if out == "" {
			out = doc.Filename
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}
