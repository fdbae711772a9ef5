package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/skills-dossier/internal/config"
	"github.com/jonathan/skills-dossier/internal/cvclient"
	"github.com/jonathan/skills-dossier/internal/doctext"
	"github.com/jonathan/skills-dossier/internal/fetch"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/observability"
	"github.com/jonathan/skills-dossier/internal/parsing"
	"github.com/jonathan/skills-dossier/internal/types"
)

type importOptions struct {
	apiURL        string
	token         string
	pretty        bool
	render        bool
	renderTimeout time.Duration
}

func newImportCVCmd(load configLoader) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-cv FILE|URL",
		Short: "Extract a candidate record from a CV document",
		Long: `Extract the text of a PDF, HTML or plain-text CV, from disk or over HTTP,
and turn it into a candidate record.

With --api the text is sent to a running server's /api/parse-cv endpoint and
the local pattern engine is used only when the server cannot answer. Without
it the local engine is used directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("api") {
				opts.apiURL = cfg.APIURL
			}
			if !cmd.Flags().Changed("token") {
				opts.token = cfg.APIToken
			}
			return runImportCV(cmd, cfg, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.apiURL, "api", "", "Server base URL (overrides DOSSIER_API_URL)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token for the server (overrides DOSSIER_API_TOKEN)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Print a summary box instead of JSON")
	cmd.Flags().BoolVar(&opts.render, "render", false, "Render client-side pages in a headless browser")
	cmd.Flags().DurationVar(&opts.renderTimeout, "render-timeout", 30*time.Second, "Headless browser timeout")
	return cmd
}

func runImportCV(cmd *cobra.Command, cfg *config.AppConfig, source string, opts importOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := readDocument(ctx, source, opts)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}

	rec, origin, err := parseText(ctx, cfg, text, opts)
	if err != nil {
		return err
	}
	logger.Info().Str("source", source).Str("parser", string(origin)).Msg("CV imported")

	out := cmd.OutOrStdout()
	if opts.pretty {
		observability.NewPrinter(out).PrintCandidate(rec)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func readDocument(ctx context.Context, source string, opts importOptions) (string, error) {
	if !fetch.IsURL(source) {
		return doctext.ExtractFile(source)
	}
	return doctext.ExtractURL(ctx, source, doctext.URLOptions{
		Render:        opts.render,
		RenderTimeout: opts.renderTimeout,
	})
}

func parseText(ctx context.Context, cfg *config.AppConfig, text string, opts importOptions) (*types.CandidateRecord, cvclient.Source, error) {
	if opts.apiURL == "" {
		rec, err := parsing.Parse(text)
		return rec, cvclient.SourceLocal, err
	}
	client := cvclient.New(opts.apiURL, opts.token, cfg.ParserTimeout)
	return client.ParseCV(ctx, text)
}
