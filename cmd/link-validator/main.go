package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-ko/link-validator/internal/driver"
	"github.com/your-ko/link-validator/pkg/collector"
	"github.com/your-ko/link-validator/pkg/config"
	"github.com/your-ko/link-validator/pkg/progress"
	"github.com/your-ko/link-validator/pkg/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(driver.ExitUnexpectedError)
	}
}

// flagOverrides mirrors the subset of config.Config the CLI can set,
// plus the pflag.Changed bookkeeping needed to tell "left at its flag
// default" apart from "explicitly set to this value" for the *bool
// fields (see pkg/config's tri-state boolean design).
type flagOverrides struct {
	configPath string

	include        []string
	exclude        []string
	maxRedirects   int
	timeout        time.Duration
	userAgent      string
	method         string
	scheme         string
	accepted       []int
	maxConcurrency int
	baseURL        string
	output         string
	basicAuthUser  string
	basicAuthPass  string

	excludeAllPrivate bool
	excludePrivate    bool
	excludeLinkLocal  bool
	excludeLoopback   bool
	allowInsecure     bool
	skipMissing       bool
	progressFlag      bool
	verbose           bool
	outputJSON        bool
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	cmd := &cobra.Command{
		Use:   "link-validator [inputs...]",
		Short: "Validate links found in Markdown, HTML, and plaintext files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "regex of links to include (may repeat)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "regex of links to exclude (may repeat)")
	cmd.Flags().IntVar(&flags.maxRedirects, "max-redirects", 0, "maximum redirects to follow")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-request timeout (e.g. 20s)")
	cmd.Flags().StringVar(&flags.userAgent, "user-agent", "", "User-Agent header sent with every request")
	cmd.Flags().StringVar(&flags.method, "method", "", "HTTP method used to check links (GET, HEAD, ...)")
	cmd.Flags().StringVar(&flags.scheme, "scheme", "", "restrict checked links to this scheme (http or https)")
	cmd.Flags().IntSliceVar(&flags.accepted, "accept", nil, "additional status codes treated as success (may repeat)")
	cmd.Flags().IntVar(&flags.maxConcurrency, "max-concurrency", 0, "maximum concurrent link checks")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "base URL used to resolve relative links")
	cmd.Flags().StringVar(&flags.output, "output", "", "write formatted stats to this file instead of stdout")
	cmd.Flags().StringVar(&flags.basicAuthUser, "basic-auth-user", "", "username for HTTP Basic Auth")
	cmd.Flags().StringVar(&flags.basicAuthPass, "basic-auth-pass", "", "password for HTTP Basic Auth")

	cmd.Flags().BoolVar(&flags.excludeAllPrivate, "exclude-all-private", false, "exclude loopback, link-local, and private addresses")
	cmd.Flags().BoolVar(&flags.excludePrivate, "exclude-private", false, "exclude private addresses")
	cmd.Flags().BoolVar(&flags.excludeLinkLocal, "exclude-link-local", false, "exclude link-local addresses")
	cmd.Flags().BoolVar(&flags.excludeLoopback, "exclude-loopback", false, "exclude loopback addresses")
	cmd.Flags().BoolVar(&flags.allowInsecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVar(&flags.skipMissing, "skip-missing", false, "treat missing input files as a warning, not an error")
	cmd.Flags().BoolVar(&flags.progressFlag, "progress", false, "print a live progress bar to stderr")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging and per-link output")
	cmd.Flags().BoolVar(&flags.outputJSON, "output-json", false, "format stats as JSON instead of plain text")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the link-validator version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "link-validator %s (%s, %s)\n", driver.Version.Version, driver.Version.GitCommit, driver.Version.BuildDate)
			return nil
		},
	}
}

// changed returns a *bool set to value, but only when name was actually
// passed on the command line — an untouched flag must stay nil so
// config.Load's file/env layers aren't overridden by the flag package's
// zero-value default.
func changed(isChanged func(string) bool, name string, value bool) *bool {
	if !isChanged(name) {
		return nil
	}
	v := value
	return &v
}

func run(cmd *cobra.Command, args []string, flags *flagOverrides) error {
	isChanged := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	cli := &config.Config{
		Include:           flags.include,
		Exclude:           flags.exclude,
		ExcludeAllPrivate: changed(isChanged, "exclude-all-private", flags.excludeAllPrivate),
		ExcludePrivate:    changed(isChanged, "exclude-private", flags.excludePrivate),
		ExcludeLinkLocal:  changed(isChanged, "exclude-link-local", flags.excludeLinkLocal),
		ExcludeLoopback:   changed(isChanged, "exclude-loopback", flags.excludeLoopback),
		MaxRedirects:      flags.maxRedirects,
		Timeout:           flags.timeout,
		UserAgent:         flags.userAgent,
		AllowInsecure:     changed(isChanged, "insecure", flags.allowInsecure),
		Method:            flags.method,
		Scheme:            flags.scheme,
		Accepted:          flags.accepted,
		MaxConcurrency:    flags.maxConcurrency,
		BaseURL:           flags.baseURL,
		SkipMissing:       changed(isChanged, "skip-missing", flags.skipMissing),
		Progress:          changed(isChanged, "progress", flags.progressFlag),
		Verbose:           changed(isChanged, "verbose", flags.verbose),
		OutputPath:        flags.output,
		OutputJSON:        changed(isChanged, "output-json", flags.outputJSON),
		BasicAuthUser:     flags.basicAuthUser,
		BasicAuthPass:     flags.basicAuthPass,
	}

	var file *os.File
	if flags.configPath != "" {
		f, err := os.Open(flags.configPath)
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		file = f
	}

	var reader io.Reader
	if file != nil {
		reader = file
	}
	cfg, err := config.Load(reader, cli)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := driver.NewLogger(config.BoolOr(cfg.Verbose, false))
	defer logger.Sync()

	d := driver.New(cfg, logger)
	if config.BoolOr(cfg.Progress, false) {
		d.Progress = progress.NewBar(os.Stderr)
	}
	d.Telemetry = telemetry.New(os.Getenv("DD_API_KEY"), os.Getenv("DD_APP_KEY"), logger)

	inputs := inputsFromArgs(args)
	result, exitCode, err := d.Run(cmd.Context(), inputs)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}

	if err := writeStats(cfg, result); err != nil {
		logger.Error("failed writing stats output", zap.Error(err))
	}

	if exitCode != driver.ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}

func inputsFromArgs(args []string) []collector.Input {
	inputs := make([]collector.Input, 0, len(args))
	for _, a := range args {
		switch {
		case a == "-":
			inputs = append(inputs, collector.Input{Kind: collector.Stdin})
		case strings.HasPrefix(a, "http://"), strings.HasPrefix(a, "https://"):
			inputs = append(inputs, collector.Input{Kind: collector.RemoteURL, Value: a})
		case strings.ContainsAny(a, "*?["):
			inputs = append(inputs, collector.Input{Kind: collector.Glob, Value: a})
		default:
			inputs = append(inputs, collector.Input{Kind: collector.FilePath, Value: a})
		}
	}
	return inputs
}

func writeStats(cfg *config.Config, result *driver.Result) error {
	var body string
	if config.BoolOr(cfg.OutputJSON, false) {
		b, err := result.Stats.MarshalJSON()
		if err != nil {
			return err
		}
		body = string(b)
	} else {
		body = result.Stats.String()
	}

	if cfg.OutputPath == "" {
		fmt.Println(body)
		return nil
	}
	return os.WriteFile(cfg.OutputPath, []byte(body), 0o644)
}
