// Package main is the entry point for the mailcompose command, which builds a
// single message from flags and configuration and hands it to a provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shineum/mailcompose/internal/config"
	"github.com/shineum/mailcompose/internal/email"
	"github.com/shineum/mailcompose/internal/provider"
	"github.com/shineum/mailcompose/internal/provider/graph"
	"github.com/shineum/mailcompose/internal/provider/resend"
	"github.com/shineum/mailcompose/internal/provider/ses"
	"github.com/shineum/mailcompose/internal/provider/stdout"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options holds the parsed command line.
type options struct {
	configPath  string
	envFile     string
	from        string
	subject     string
	body        string
	contentType string
	to          stringList
	cc          stringList
	bcc         stringList
	replyTo     stringList
	headers     stringList
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			slog.Error("failed to load env file", "path", opts.envFile, "error", err)
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("mailcompose failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run composes the message and sends it through the configured provider.
func run(ctx context.Context, cfg *config.Config, opts *options) error {
	e, err := composeEmail(cfg, opts)
	if err != nil {
		return err
	}

	prov, err := selectProvider(ctx, cfg, e)
	if err != nil {
		return err
	}

	id, err := e.Send(ctx, prov)
	if err != nil {
		return err
	}

	slog.Info("mailcompose finished",
		"provider", prov.Name(),
		"message_id", id,
	)
	return nil
}

// parseFlags parses the command line into options.
func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("mailcompose", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "", "path to YAML configuration file (optional)")
	fs.StringVar(&opts.envFile, "env", "", "path to a .env file loaded before configuration (optional)")
	fs.StringVar(&opts.from, "from", "", "from address, overrides mail.from")
	fs.StringVar(&opts.subject, "subject", "", "message subject")
	fs.StringVar(&opts.body, "body", "", "message body")
	fs.StringVar(&opts.contentType, "content-type", "text/plain; charset=UTF-8", "body content type")
	fs.Var(&opts.to, "to", "to address (repeatable)")
	fs.Var(&opts.cc, "cc", "cc address (repeatable)")
	fs.Var(&opts.bcc, "bcc", "bcc address (repeatable)")
	fs.Var(&opts.replyTo, "reply-to", "reply-to address (repeatable)")
	fs.Var(&opts.headers, "header", `extra header as "Name: value" (repeatable)`)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// composeEmail builds an Email from configuration defaults and the command line.
func composeEmail(cfg *config.Config, opts *options) (*email.Email, error) {
	e := email.New().
		SetMailSession(cfg.Session()).
		SetCharset(cfg.Mail.Charset).
		SetSocketConnectionTimeout(cfg.ConnectionTimeout()).
		SetSocketTimeout(cfg.Timeout()).
		SetSubject(opts.subject).
		SetContent(opts.body, opts.contentType)

	from := opts.from
	if from == "" {
		from = cfg.Mail.From
	}
	if from != "" {
		if _, err := e.SetFrom(from); err != nil {
			return nil, err
		}
	}

	if _, err := e.SetBounceAddress(cfg.Mail.BounceAddress); err != nil {
		return nil, err
	}

	lists := []struct {
		values stringList
		add    func(...string) (*email.Email, error)
	}{
		{values: opts.to, add: e.AddTo},
		{values: opts.cc, add: e.AddCc},
		{values: opts.bcc, add: e.AddBcc},
		{values: opts.replyTo, add: e.AddReplyTo},
	}
	for _, l := range lists {
		if len(l.values) == 0 {
			continue
		}
		if _, err := l.add(l.values...); err != nil {
			return nil, err
		}
	}

	for _, h := range opts.headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return nil, err
		}
		if err := e.AppendHeader(name, value); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// parseHeader splits a "Name: value" flag value.
func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid header %q: expected \"Name: value\"", raw)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output on stderr,
// keeping stdout free for the stdout provider.
func setupLogger(level string) {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// selectProvider chooses the delivery backend based on configuration.
// If PROVIDER is set it takes precedence. Otherwise Graph is used when
// configured, then SES, then Resend, then stdout. Transport timeouts come from e.
func selectProvider(ctx context.Context, cfg *config.Config, e *email.Email) (provider.Provider, error) {
	switch cfg.Provider {
	case "graph", "msgraph":
		if !cfg.GraphConfigured() {
			return nil, errors.New("Graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET are required")
		}
		return newGraph(cfg, e), nil

	case "ses":
		if !cfg.SESConfigured() {
			return nil, errors.New("SES provider selected but SES_REGION is required")
		}
		return newSES(ctx, cfg, e)

	case "resend":
		if !cfg.ResendConfigured() {
			return nil, errors.New("Resend provider selected but RESEND_API_KEY is required")
		}
		return newResend(cfg, e), nil

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New(), nil

	case "":
		if cfg.GraphConfigured() {
			return newGraph(cfg, e), nil
		}
		if cfg.SESConfigured() {
			return newSES(ctx, cfg, e)
		}
		if cfg.ResendConfigured() {
			return newResend(cfg, e), nil
		}
		slog.Info("no provider configured, using stdout provider")
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func newGraph(cfg *config.Config, e *email.Email) provider.Provider {
	slog.Info("using Microsoft Graph provider", "sender", cfg.Graph.Sender)
	return graph.New(graph.GraphProviderConfig{
		TenantID:     cfg.Graph.TenantID,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		Sender:       cfg.Graph.Sender,
		Timeout:      e.SocketTimeout(),
	})
}

func newSES(ctx context.Context, cfg *config.Config, e *email.Email) (provider.Provider, error) {
	slog.Info("using AWS SES provider", "region", cfg.SES.Region)
	p, err := ses.New(ctx, ses.SESProviderConfig{
		Region:          cfg.SES.Region,
		AccessKeyID:     cfg.SES.AccessKeyID,
		SecretAccessKey: cfg.SES.SecretAccessKey,
		ConnectTimeout:  e.SocketConnectionTimeout(),
		Timeout:         e.SocketTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SES provider: %w", err)
	}
	return p, nil
}

func newResend(cfg *config.Config, e *email.Email) provider.Provider {
	slog.Info("using Resend provider")
	return resend.New(resend.ResendProviderConfig{
		APIKey:  cfg.Resend.APIKey,
		Timeout: e.SocketTimeout(),
	})
}
