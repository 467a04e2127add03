package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prilive-com/gramsea"
	"github.com/prilive-com/gramsea/receiver"
	"github.com/prilive-com/gramsea/sender"
	"github.com/prilive-com/gramsea/tg"
)

type getMeCommand struct{}

func (c *getMeCommand) Execute([]string) error {
	return withBot(func(ctx context.Context, bot *gramsea.Bot, _ *slog.Logger) error {
		me, err := bot.GetMe(ctx)
		if err != nil {
			return err
		}
		return printJSON(me)
	})
}

type sendCommand struct {
	Chat      string   `long:"chat" short:"c" required:"true" description:"chat id or @channel"`
	Text      string   `long:"text" short:"t" description:"Markdown text, or the caption when media is given"`
	HTML      bool     `long:"html" description:"send --text as HTML verbatim"`
	Media     []string `long:"media" short:"m" description:"URL, file_id or local path (repeatable)"`
	ParseMode string   `long:"parse-mode" description:"HTML, MarkdownV2 or Markdown"`
	Keyboard  string   `long:"keyboard" description:"reply_markup as JSON"`
	ReplyTo   int      `long:"reply-to" description:"message id to reply to"`
	Silent    bool     `long:"silent" description:"disable notification"`
	Protect   bool     `long:"protect" description:"protect content from forwarding"`
}

func (c *sendCommand) Execute([]string) error {
	return withBot(func(ctx context.Context, bot *gramsea.Bot, _ *slog.Logger) error {
		m := bot.Message().
			To(chatArg(c.Chat)).
			Silent(c.Silent).
			Protect(c.Protect)
		if c.HTML {
			m.HTML(c.Text)
		} else {
			m.Text(c.Text)
		}
		for _, ref := range c.Media {
			m.Add(ref)
		}
		if c.ParseMode != "" {
			m.ParseMode(tg.ParseMode(c.ParseMode))
		}
		if c.Keyboard != "" {
			m.Keyboard(c.Keyboard)
		}
		if c.ReplyTo > 0 {
			m.ReplyTo(c.ReplyTo)
		}

		resp, err := m.Send(ctx)
		if err != nil {
			return err
		}
		return printJSON(resp.Result)
	})
}

type massCommand struct {
	Targets     string  `long:"targets" short:"f" required:"true" description:"YAML or JSON targets file"`
	Concurrency int     `long:"concurrency" env:"MASS_CONCURRENCY" default:"30" description:"requests in flight"`
	RPS         float64 `long:"rps" description:"requests per second across the batch (0 = unlimited)"`
	Burst       int     `long:"burst" default:"1" description:"rate limiter burst"`
	ParseMode   string  `long:"parse-mode" description:"HTML, MarkdownV2 or Markdown"`
	Silent      bool    `long:"silent" description:"disable notification"`
	Protect     bool    `long:"protect" description:"protect content from forwarding"`
	AllowPaid   bool    `long:"allow-paid-broadcast" description:"allow paid broadcast"`
	Report      bool    `long:"report" description:"list chat ids per outcome"`
}

type massReport struct {
	BatchID     string   `json:"batch_id"`
	Duration    string   `json:"duration"`
	Sent        int      `json:"sent"`
	Blocked     int      `json:"blocked"`
	Failed      int      `json:"failed"`
	SuccessRate float64  `json:"success_rate"`
	SentIDs     []string `json:"sent_ids,omitempty"`
	BlockedIDs  []string `json:"blocked_ids,omitempty"`
	FailedIDs   []string `json:"failed_ids,omitempty"`
}

func (c *massCommand) Execute([]string) error {
	targets, err := sender.LoadTargets(c.Targets)
	if err != nil {
		return err
	}

	return withBot(func(ctx context.Context, bot *gramsea.Bot, logger *slog.Logger) error {
		mass := bot.Mass().
			Concurrency(c.Concurrency).
			RateLimit(c.RPS, c.Burst).
			Silent(c.Silent).
			Protect(c.Protect).
			AllowPaidBroadcast(c.AllowPaid)
		if c.ParseMode != "" {
			mass.ParseMode(tg.ParseMode(c.ParseMode))
		}
		if err := mass.AddTargets(targets...); err != nil {
			return err
		}

		logger.Info("sending", "targets", mass.Count(), "file", c.Targets)
		result, err := mass.Send(ctx)
		if err != nil {
			return err
		}

		report := massReport{
			BatchID:     result.BatchID,
			Duration:    result.Duration.Round(time.Millisecond).String(),
			Sent:        result.SentCount(),
			Blocked:     result.BlockedCount(),
			Failed:      result.FailedCount(),
			SuccessRate: result.SuccessRate(),
		}
		if c.Report {
			report.SentIDs = result.Sent()
			report.BlockedIDs = result.Blocked()
			report.FailedIDs = result.Failed()
		}
		return printJSON(report)
	})
}

type invokeCommand struct {
	Params []string `long:"param" short:"p" description:"key=value; JSON values are sent as JSON (repeatable)"`
	Get    bool     `long:"get" description:"send parameters as a GET query"`
	Args   struct {
		Method string `positional-arg-name:"method" required:"true"`
	} `positional-args:"yes"`
}

func (c *invokeCommand) Execute([]string) error {
	params, err := parseParams(c.Params)
	if err != nil {
		return err
	}

	return withBot(func(ctx context.Context, bot *gramsea.Bot, _ *slog.Logger) error {
		var resp *tg.Response
		if c.Get {
			resp, err = bot.Gateway().InvokeGet(ctx, c.Args.Method, params)
		} else {
			resp, err = bot.Invoke(ctx, c.Args.Method, params)
		}
		if err != nil {
			return err
		}
		return printJSON(resp.Result)
	})
}

type pollCommand struct {
	Count          int           `long:"count" description:"stop after this many updates (0 = until interrupted)"`
	PollTimeout    time.Duration `long:"poll-timeout" description:"long-poll wait; defaults to POLLING_TIMEOUT"`
	AllowedUpdates []string      `long:"allowed" description:"update type to receive (repeatable)"`
	DeleteWebhook  bool          `long:"delete-webhook" description:"delete the webhook before polling"`
}

var errEnough = errors.New("update count reached")

func (c *pollCommand) Execute([]string) error {
	cfg, err := receiver.LoadConfig()
	if err != nil {
		return err
	}
	if c.PollTimeout > 0 {
		cfg.Timeout = c.PollTimeout
	}
	if len(c.AllowedUpdates) > 0 {
		cfg.AllowedUpdates = c.AllowedUpdates
	}
	cfg.DeleteWebhookFirst = cfg.DeleteWebhookFirst || c.DeleteWebhook

	return withBot(func(ctx context.Context, bot *gramsea.Bot, logger *slog.Logger) error {
		poller, err := receiver.NewPoller(bot.Gateway(), *cfg, receiver.WithPollerLogger(logger))
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		updates := make(chan tg.Update, cfg.Limit)

		g.Go(func() error {
			defer close(updates)
			return poller.Run(ctx, updates)
		})
		g.Go(func() error {
			seen := 0
			for update := range updates {
				line, err := json.Marshal(update)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, string(line)); err != nil {
					return err
				}
				seen++
				if c.Count > 0 && seen >= c.Count {
					return errEnough
				}
			}
			return nil
		})

		err = g.Wait()
		if errors.Is(err, errEnough) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

// chatArg keeps numeric chat ids numeric.
func chatArg(s string) tg.ChatID {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	return s
}

// parseParams turns key=value pairs into invoke parameters. Values that are
// valid JSON keep their JSON type; anything else is a string.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, tg.NewValidationError("param", fmt.Sprintf("expected key=value, got %q", pair))
		}
		params[key] = paramValue(value)
	}
	return params, nil
}

func paramValue(v string) any {
	if !json.Valid([]byte(v)) {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(v)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return v
	}
	return decoded
}
