// Command gramsea is a small Bot API console: identity checks, single
// sends, mass sends from a targets file, raw method calls and update polling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/prilive-com/gramsea"
	"github.com/prilive-com/gramsea/sender"
)

type globalOptions struct {
	Token   string        `long:"token" env:"TELEGRAM_BOT_TOKEN" required:"true" description:"bot token"`
	BaseURL string        `long:"base-url" env:"TELEGRAM_API_BASE_URL" default:"https://api.telegram.org" description:"Bot API server"`
	Timeout time.Duration `long:"timeout" env:"REQUEST_TIMEOUT" default:"30s" description:"HTTP request timeout"`
	Retries int           `long:"retries" env:"TRANSPORT_RETRIES" default:"0" description:"retries after network errors"`
	Debug   bool          `long:"debug" env:"GRAMSEA_DEBUG" description:"debug logging"`
}

var (
	global globalOptions

	// out receives command results; logs go to stderr.
	out io.Writer = os.Stdout
)

// revision is the build revision shown in help output, set with
// -ldflags "-X main.revision=...".
var revision = "dev"

func main() {
	loadDotEnv()

	parser := flags.NewParser(&global, flags.Default)
	parser.LongDescription = "gramsea " + revision
	addCommands(parser)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func addCommands(parser *flags.Parser) {
	must := func(_ *flags.Command, err error) {
		if err != nil {
			panic(err)
		}
	}
	must(parser.AddCommand("getme", "Show the bot identity", "Calls getMe and prints the bot user.", &getMeCommand{}))
	must(parser.AddCommand("send", "Send one message", "Sends text, one media item or an album to a chat.", &sendCommand{}))
	must(parser.AddCommand("mass", "Send to many chats", "Sends every target of a YAML or JSON file and prints the tally.", &massCommand{}))
	must(parser.AddCommand("invoke", "Call any Bot API method", "Calls a method with key=value parameters and prints the result.", &invokeCommand{}))
	must(parser.AddCommand("poll", "Print incoming updates", "Long-polls getUpdates and prints each update as a JSON line.", &pollCommand{}))
}

// loadDotEnv loads GRAMSEA_ENV_FILE or ./.env. Existing variables win.
func loadDotEnv() {
	path := os.Getenv("GRAMSEA_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func newBot(logger *slog.Logger) (*gramsea.Bot, error) {
	cfg, err := sender.LoadConfig()
	if err != nil {
		return nil, err
	}
	return gramsea.New(global.Token,
		gramsea.WithConfig(*cfg),
		gramsea.WithLogger(logger),
		gramsea.WithBaseURL(global.BaseURL),
		gramsea.WithTimeout(global.Timeout),
		gramsea.WithRetries(global.Retries),
	)
}

// withBot runs fn with a bot and a context cancelled on SIGINT or SIGTERM.
func withBot(fn func(ctx context.Context, bot *gramsea.Bot, logger *slog.Logger) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(global.Debug)
	bot, err := newBot(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := bot.Close(); err != nil {
			logger.Error("closing bot", "error", err)
		}
	}()

	return fn(ctx, bot, logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
