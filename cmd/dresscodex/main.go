// cmd/dresscodex/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/config"
	"github.com/valpere/DressCodex/internal/errors"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/pkg/api"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cli carries the streams and error service of one invocation.
type cli struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	errors  *errors.Service
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, errors: errors.NewService()}

	if len(args) < 1 {
		c.printUsage(stderr)
		return errors.ExitGeneral
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "extract":
		err = c.extract(ctx, rest)
	case "parse":
		err = c.parse(ctx, rest)
	case "detect":
		err = c.detect(ctx, rest)
	case "classify":
		err = c.classify(rest)
	case "color":
		err = c.color(rest)
	case "validate":
		err = c.validate(rest)
	case "template":
		err = c.template()
	case "version", "--version":
		c.printVersion()
	case "help", "--help", "-h":
		c.printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Error: unknown command '%s'\n", command)
		c.printUsage(stderr)
		return errors.ExitGeneral
	}

	if err != nil {
		fmt.Fprint(stderr, c.errors.WithVerbose(c.verbose).FormatErrorForCLI(err))
		return c.errors.GetExitCode(err)
	}
	return errors.ExitOK
}

// commonFlags registers the flags every command accepts.
func (c *cli) commonFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configPath := fs.String("config", os.Getenv("DRESSCODEX_CONFIG"), "path to the YAML configuration file")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose output")
	fs.BoolVar(&c.verbose, "verbose", false, "enable verbose output")
	return fs, configPath
}

// parseArgs parses flags placed before, between or after positional args.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageError(err.Error())
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func usageError(msg string) error {
	return utils.NewError(utils.ErrCodeInvalidInput, msg).WithUserMessage(msg).WithoutStackTrace().Build()
}

// newClient loads the configuration (or the defaults) and builds a client
// that logs to stderr at warn level, debug with -v.
func (c *cli) newClient(configPath string) (*api.Client, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	utils.ConfigureLogging(level, cfg.Log.Format)
	return api.NewClientFromConfig(cfg, nil), nil
}

func (c *cli) extract(ctx context.Context, args []string) error {
	fs, configPath := c.commonFlags("extract")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageError("usage: dresscodex extract [-config file] <product-url>")
	}
	pageURL, err := utils.NormalizeURL(positional[0])
	if err != nil {
		return err
	}

	client, err := c.newClient(*configPath)
	if err != nil {
		return err
	}

	// the fetcher retries transient statuses itself
	product, err := client.ExtractProduct(ctx, pageURL)
	if err != nil {
		return err
	}
	return c.writeJSON(product)
}

func (c *cli) parse(ctx context.Context, args []string) error {
	fs, configPath := c.commonFlags("parse")
	pageURL := fs.String("url", "", "URL the HTML was saved from (required)")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if *pageURL == "" || len(positional) > 1 {
		return usageError("usage: dresscodex parse -url <product-url> [file.html]")
	}

	html, err := c.readInput(positional)
	if err != nil {
		return err
	}
	client, err := c.newClient(*configPath)
	if err != nil {
		return err
	}

	product, err := client.ExtractFromHTML(ctx, *pageURL, string(html))
	if err != nil {
		return err
	}
	return c.writeJSON(product)
}

// detect reads either {"candidate": ..., "existingItems": [...]} or a bare
// item array, which is scanned pair by pair as one event.
func (c *cli) detect(ctx context.Context, args []string) error {
	fs, configPath := c.commonFlags("detect")
	explain := fs.Bool("explain", false, "include the similarity tier status")
	verdict := fs.Bool("verdict", false, "ask the language model for binary verdicts instead")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return usageError("usage: dresscodex detect [-explain] [-verdict] [items.json]")
	}

	data, err := c.readInput(positional)
	if err != nil {
		return err
	}
	client, err := c.newClient(*configPath)
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []api.WardrobeItem
		if err := json.Unmarshal(data, &items); err != nil {
			return utils.WrapError(err, utils.ErrCodeInvalidInput, "invalid item list")
		}
		return c.writeJSON(client.DetectEvent(ctx, items))
	}

	var req api.DuplicateCheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.WrapError(err, utils.ErrCodeInvalidInput, "invalid duplicate check request")
	}

	switch {
	case *verdict:
		verdicts, err := client.CheckDuplicate(ctx, req)
		if err != nil {
			return err
		}
		return c.writeJSON(verdicts)
	case *explain:
		report, err := client.DetectDuplicates(ctx, req)
		if err != nil {
			return err
		}
		return c.writeJSON(report)
	default:
		findings, err := client.CheckDuplicates(ctx, req)
		if err != nil {
			return err
		}
		return c.writeJSON(findings)
	}
}

func (c *cli) classify(args []string) error {
	fs, _ := c.commonFlags("classify")
	rawColor := fs.String("color", "", "raw color text, defaults to the text itself")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return usageError("usage: dresscodex classify [-color text] <text>")
	}
	return c.writeJSON(api.Classify(strings.Join(positional, " "), *rawColor))
}

func (c *cli) color(args []string) error {
	fs, _ := c.commonFlags("color")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return usageError("usage: dresscodex color <raw color>")
	}

	raw := strings.Join(positional, " ")
	name, ok := color.Normalize(raw)
	if !ok {
		return utils.NewError(utils.ErrCodeValidation, "unrecognized color").
			WithContext("color", raw).
			WithUserMessage(fmt.Sprintf("'%s' is not a known color.", raw)).
			WithoutStackTrace().
			Build()
	}
	fmt.Fprintf(c.stdout, "%s\t%s\n", name, color.Display(name))
	return nil
}

func (c *cli) validate(args []string) error {
	fs, _ := c.commonFlags("validate")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageError("usage: dresscodex validate <config.yaml>")
	}

	cfg, err := config.LoadFromFile(positional[0])
	if err != nil {
		return err
	}

	result := cfg.ValidateWithDetails()
	for _, w := range result.Warnings {
		fmt.Fprintf(c.stdout, "warning: %s\n", w)
	}
	if c.verbose {
		fmt.Fprintf(c.stdout, "Configuration details:\n")
		fmt.Fprintf(c.stdout, "  LLM provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(c.stdout, "  Mongo: %t\n", cfg.Mongo.URI != "")
		fmt.Fprintf(c.stdout, "  Retailer overrides: %d\n", len(cfg.Retailers))
	}
	fmt.Fprintf(c.stdout, "✓ Configuration file '%s' is valid\n", positional[0])
	return nil
}

func (c *cli) template() error {
	tpl := config.GenerateTemplate()
	data, err := yaml.Marshal(&tpl)
	if err != nil {
		return fmt.Errorf("failed to marshal template to YAML: %w", err)
	}
	_, err = c.stdout.Write(data)
	return err
}

// readInput reads the single positional file, or stdin when there is none
// or it is "-".
func (c *cli) readInput(positional []string) ([]byte, error) {
	if len(positional) == 0 || positional[0] == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeInvalidInput, "failed to read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(positional[0])
	if err != nil {
		return nil, utils.NewError(utils.ErrCodeInvalidInput, "failed to read input file").
			WithCause(err).
			WithContext("file", positional[0]).
			WithUserMessage(fmt.Sprintf("Cannot read '%s'.", positional[0])).
			Build()
	}
	return data, nil
}

func (c *cli) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printUsage displays help information
func (c *cli) printUsage(w io.Writer) {
	fmt.Fprintln(w, "DressCodex - wardrobe product extraction and duplicate detection")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dresscodex extract <url>                 Extract a product from a retailer page")
	fmt.Fprintln(w, "  dresscodex parse -url <url> [file]       Extract a product from saved HTML (stdin by default)")
	fmt.Fprintln(w, "  dresscodex detect [-explain] [file]      Find duplicates for a candidate or scan an item list")
	fmt.Fprintln(w, "  dresscodex classify [-color c] <text>    Detect the product type and color of text")
	fmt.Fprintln(w, "  dresscodex color <raw>                   Normalize a color name")
	fmt.Fprintln(w, "  dresscodex validate <config.yaml>        Validate configuration file")
	fmt.Fprintln(w, "  dresscodex template                      Generate configuration template")
	fmt.Fprintln(w, "  dresscodex version                       Show version information")
	fmt.Fprintln(w, "  dresscodex help                          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config <file>                           Configuration file (default $DRESSCODEX_CONFIG)")
	fmt.Fprintln(w, "  -v, --verbose                            Enable verbose output")
}

// printVersion displays version information
func (c *cli) printVersion() {
	fmt.Fprintf(c.stdout, "DressCodex %s\n", version)
	fmt.Fprintf(c.stdout, "Build time: %s\n", buildTime)
	fmt.Fprintf(c.stdout, "Git commit: %s\n", gitCommit)
}
