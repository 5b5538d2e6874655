package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/harrylevesque/idqr/internal/config"
	"github.com/harrylevesque/idqr/internal/files"
	"github.com/harrylevesque/idqr/internal/mobile"
	"github.com/harrylevesque/idqr/internal/models"
	"github.com/harrylevesque/idqr/internal/output"
	"github.com/harrylevesque/idqr/internal/payload"
	"github.com/harrylevesque/idqr/internal/utils"
)

// session holds what the global flags resolve to for one invocation.
type session struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       config.Config
	parser    *payload.Parser
	formatter output.Formatter
	logger    *utils.Logger
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	s := &session{stdin: stdin, stdout: stdout, stderr: stderr}

	return &cli.App{
		Name:      "idqr",
		Usage:     "Decode identity QR payloads",
		Version:   "0.1.0",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file (default $IDQR_CONFIG or idqr.toml)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json, yaml (default from config)",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Show the raw payload in table output",
			},
			&cli.BoolFlag{
				Name:  "extra-fields",
				Usage: "Keep delimited fields past the fifth as additional info",
			},
		},
		Before: s.setup,
		After:  s.teardown,
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Interpret payloads given as arguments, in a file, or on stdin",
				ArgsUsage: "[payload...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read a single payload from this file",
					},
				},
				Action: s.parseAction,
			},
			{
				Name:  "watch",
				Usage: "Interpret payloads from a line-oriented scanner on stdin",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Stop after the first fully understood payload",
					},
				},
				Action: s.watchAction,
			},
			{
				Name:      "batch",
				Usage:     "Interpret every payload of a YAML fixture corpus",
				ArgsUsage: "<fixtures.yaml>",
				Action:    s.batchAction,
			},
		},
	}
}

func (s *session) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("raw") {
		cfg.Output.ShowRaw = c.Bool("raw")
	}
	if c.IsSet("extra-fields") {
		cfg.Parser.KeepExtraFields = c.Bool("extra-fields")
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.logger = logger
	s.parser = payload.NewParser(payload.WithExtraFields(cfg.Parser.KeepExtraFields))
	s.formatter = output.NewFormatter(format, output.Options{ShowRaw: cfg.Output.ShowRaw})
	return nil
}

func (s *session) teardown(*cli.Context) error {
	if s.logger == nil {
		return nil
	}
	return s.logger.Close()
}

func (s *session) parseAction(c *cli.Context) error {
	payloads := c.Args().Slice()

	switch {
	case c.IsSet("file"):
		if len(payloads) > 0 {
			return errors.New("--file cannot be combined with payload arguments")
		}
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("read payload file: %w", err)
		}
		payloads = []string{trimLineEnding(string(data))}
	case len(payloads) == 0:
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		payloads = []string{trimLineEnding(string(data))}
	}

	if len(payloads) == 1 {
		return s.formatter.WriteRecord(s.stdout, s.parser.Parse(payloads[0]))
	}

	items := make([]output.BatchItem, 0, len(payloads))
	for i, p := range payloads {
		items = append(items, output.BatchItem{
			Name:   fmt.Sprintf("arg-%d", i+1),
			Record: s.parser.Parse(p),
		})
	}
	return s.formatter.WriteBatch(s.stdout, items)
}

func (s *session) watchAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := mobile.ScannerOptions{
		MaxScansPerSecond: s.cfg.Scanner.MaxScansPerSecond,
		StopAfterFirst:    s.cfg.Scanner.StopAfterFirst,
	}
	if c.IsSet("once") {
		opts.StopAfterFirst = c.Bool("once")
	}

	scanner := mobile.NewScanner(mobile.NewLineSource(s.stdin), s.parser, opts, s.logger.Logger)
	stats, err := scanner.Run(ctx, func(_ context.Context, rec models.IdentityRecord) error {
		if err := s.formatter.WriteRecord(s.stdout, rec); err != nil {
			return err
		}
		_, err := fmt.Fprintln(s.stdout)
		return err
	})
	s.logger.Info("[idqr.watch] Scan loop finished",
		"reads", stats.Reads, "skipped", stats.Skipped, "interpreted", stats.Interprets, "faults", stats.Faults)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *session) batchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("batch needs exactly one fixtures file")
	}

	fixtures, err := files.NewFixtureStore(c.Args().First()).GetAll()
	if err != nil {
		return err
	}

	items := make([]output.BatchItem, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, output.BatchItem{Name: f.Name, Record: s.parser.Parse(f.Payload)})
	}
	return s.formatter.WriteBatch(s.stdout, items)
}

// trimLineEnding drops the single newline most tools append when saving a
// decoded payload. Inner newlines are delimiters and stay.
func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
