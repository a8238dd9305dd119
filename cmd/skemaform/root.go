package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/i18n"
	"github.com/reoring/skemaform/internal/config"
	log "github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/store"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	lang       string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "skemaform",
		Short:         "Edit JSON values shaped by a JSON Schema",
		Long:          "skemaform synthesizes default values from JSON Schema documents and applies schema-aware edits to stored values.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "", `log format ("auto", "console" or "json")`)
	f.StringVar(&opts.lang, "lang", "", `message language ("en" or "ja")`)

	cmd.AddCommand(
		newSynthCmd(opts),
		newResolveCmd(opts),
		newShowCmd(opts),
		newEditCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language = o.lang
	}
	if err := log.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return err
	}
	i18n.SetLanguage(cfg.Language)
	o.cfg = cfg
	log.Debug().Str("provider", cfg.Provider.Kind).Msg("configuration loaded")
	return nil
}

func (o *rootOptions) resolver() *schema.Resolver {
	return schema.NewResolver(schema.WithMaxDepth(o.cfg.MaxRefDepth))
}

// collaborators builds the provider and store for field from the configuration.
func (o *rootOptions) collaborators(field string) (skemaform.SchemaProvider, skemaform.ValueStore) {
	p := o.cfg.Provider
	if p.Kind == config.ProviderHTTP {
		client := &store.HTTPClient{
			BaseURL:     p.BaseURL,
			ContentType: p.ContentType,
			Locale:      p.Locale,
			Token:       p.Token,
			Client:      &http.Client{Timeout: p.Timeout},
		}
		return store.HTTPProvider{HTTPClient: client}, store.HTTPStore{HTTPClient: client, Field: field}
	}
	return store.DirProvider{Dir: p.SchemaDir}, store.FileStore{Path: filepath.Join(p.ValueDir, field+".json")}
}

func (o *rootOptions) openSession(ctx context.Context, field string, st skemaform.ValueStore, provider skemaform.SchemaProvider) (*skemaform.Session, error) {
	opts := []skemaform.SessionOption{skemaform.WithResolver(o.resolver())}
	if o.cfg.Envelope {
		opts = append(opts, skemaform.WithEnvelope())
	}
	s := skemaform.NewSession(provider, st, opts...)
	if err := s.Load(ctx, field); err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	return s, nil
}

func loadSchemaFile(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range doc.Warnings {
		log.Warn().Str("file", path).Msg(w)
	}
	return doc, nil
}

func reportIssues(iss skemaform.Issues) {
	for _, it := range iss {
		log.Warn().Str("path", it.Path).Str("code", it.Code).Msg(it.Message)
	}
}
