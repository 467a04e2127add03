package sender

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/prilive-com/gramsea/format"
	"github.com/prilive-com/gramsea/internal/syncutil"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// DefaultMassConcurrency is the default number of requests a mass send keeps
// in flight.
const DefaultMassConcurrency = 30

// MassSender sends independent messages to many destinations in one batch.
// Each target has its own content; delivery flags are shared. Per-target
// failures are recorded in the MassSendResult instead of being returned.
//
// Album targets differ from MediaGroup.Send: a target with both text and
// reply markup is sent as one sendMediaGroup without caption or keyboard,
// not as a caption message followed by the album.
//
// Setters are not safe for concurrent use. Send may be called again after
// it returns.
type MassSender struct {
	gw          *Gateway
	targets     []Target
	opts        delivery
	concurrency int
	limiter     *rate.Limiter
}

// Mass returns a new MassSender bound to g.
func (g *Gateway) Mass() *MassSender {
	concurrency := g.config.MassConcurrency
	if concurrency < 1 {
		concurrency = DefaultMassConcurrency
	}
	return &MassSender{gw: g, opts: defaultDelivery(), concurrency: concurrency}
}

// AddTarget appends one target. A target without destination is rejected.
func (m *MassSender) AddTarget(t Target) error {
	t.ChatID = normalizeChatID(t.ChatID)
	if err := validate.Destination(t.ChatID); err != nil {
		return err
	}
	m.targets = append(m.targets, t)
	return nil
}

// AddTargets appends targets in order. If any target is invalid, none is
// added.
func (m *MassSender) AddTargets(targets ...Target) error {
	checked := make([]Target, 0, len(targets))
	for _, t := range targets {
		t.ChatID = normalizeChatID(t.ChatID)
		if err := validate.Destination(t.ChatID); err != nil {
			return err
		}
		checked = append(checked, t)
	}
	m.targets = append(m.targets, checked...)
	return nil
}

// Concurrency sets how many requests may be in flight at once. Values below
// 1 are raised to 1.
func (m *MassSender) Concurrency(n int) *MassSender {
	m.concurrency = max(1, n)
	return m
}

// ParseMode sets the parse mode of every target. The default is HTML.
func (m *MassSender) ParseMode(mode tg.ParseMode) *MassSender {
	m.opts.parseMode = mode
	return m
}

// Silent sends every message without a notification sound.
func (m *MassSender) Silent(on bool) *MassSender {
	m.opts.silent = on
	return m
}

// Protect prevents forwarding and saving of every message.
func (m *MassSender) Protect(on bool) *MassSender {
	m.opts.protect = on
	return m
}

// AllowPaidBroadcast lets the batch exceed the free broadcast limit for a fee.
func (m *MassSender) AllowPaidBroadcast(on bool) *MassSender {
	m.opts.allowPaidBroadcast = on
	return m
}

// RateLimit paces request starts to rps per second with the given burst.
// rps <= 0 removes the limit.
func (m *MassSender) RateLimit(rps float64, burst int) *MassSender {
	if rps <= 0 {
		m.limiter = nil
		return m
	}
	m.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
	return m
}

// Count returns the number of targets.
func (m *MassSender) Count() int { return len(m.targets) }

// Targets returns a copy of the target list.
func (m *MassSender) Targets() []Target { return slices.Clone(m.targets) }

// Reset removes all targets. Delivery flags are kept.
func (m *MassSender) Reset() *MassSender {
	m.targets = nil
	return m
}

// Send dispatches every target in insertion order with at most Concurrency
// requests in flight, waits for all of them and returns the tally. It fails
// only when there are no targets or the parse mode is invalid. When ctx ends,
// targets not yet started are recorded as failed.
func (m *MassSender) Send(ctx context.Context) (*MassSendResult, error) {
	if len(m.targets) == 0 {
		return nil, validate.New("targets", "no targets added")
	}
	if err := validate.ParseMode(m.opts.parseMode); err != nil {
		return nil, err
	}

	targets := slices.Clone(m.targets)
	result := newMassSendResult()
	logger := m.gw.logger.With("batch_id", result.BatchID)
	logger.Info("mass send started",
		"targets", len(targets),
		"concurrency", m.concurrency,
	)
	start := time.Now()

	sem := semaphore.NewWeighted(int64(m.concurrency))
	var wg sync.WaitGroup
	for i, target := range targets {
		err := syncutil.GoAcquired(ctx, &wg, sem, func() {
			m.deliver(ctx, target, result)
		})
		if err != nil {
			for _, rest := range targets[i:] {
				result.record(chatIDString(rest.ChatID), OutcomeFailed)
			}
			logger.Warn("mass send interrupted", "not_started", len(targets)-i, "error", err)
			break
		}
	}
	wg.Wait()

	result.Duration = time.Since(start)
	logger.Info("mass send finished",
		"sent", result.SentCount(),
		"blocked", result.BlockedCount(),
		"failed", result.FailedCount(),
		"duration", result.Duration,
	)
	return result, nil
}

func (m *MassSender) deliver(ctx context.Context, target Target, result *MassSendResult) {
	id := chatIDString(target.ChatID)
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			result.record(id, OutcomeFailed)
			return
		}
	}

	method, params := m.request(target)
	resp, err := m.gw.transport.Request(ctx, m.gw.endpoint+method, params, http.MethodPost)
	outcome := classifyOutcome(resp, err)
	result.record(id, outcome)

	if outcome == OutcomeSent {
		m.gw.logger.Debug("mass target sent", "chat_id", id, "method", method)
		return
	}
	if err == nil {
		err = resp.Err(method)
	}
	m.gw.logger.Debug("mass target not delivered",
		"chat_id", id,
		"method", method,
		"outcome", outcome,
		"error", err,
	)
}

// request builds the call for one target with the same 0/1/2+ media rule as
// Message. Albums carry the text as the caption of the first item and never
// send reply markup; an album target with reply markup goes out without a
// caption.
func (m *MassSender) request(target Target) (string, map[string]any) {
	opts := m.opts
	opts.chatID = target.ChatID
	opts.keyboard = toMarkup(target.ReplyMarkup)

	body := ""
	if target.Text != "" {
		body = format.MarkdownToHTML(target.Text)
	}

	switch selectStrategy(len(target.Media)) {
	case strategyText:
		t := m.gw.Text()
		t.opts = opts
		t.text = body
		return "sendMessage", t.params()
	case strategyMedia:
		md := m.gw.Media()
		md.opts = opts
		md.item = NewMediaItem(target.Media[0])
		md.caption = body
		mediaType := md.item.resolvedType()
		return mediaType.Method(), md.params(mediaType)
	default:
		if opts.keyboard != nil {
			// One request per target leaves no room for a separate caption
			// message, so a keyboard costs the album its caption.
			m.gw.logger.Debug("caption and reply markup dropped for media group",
				"chat_id", chatIDString(target.ChatID))
			body = ""
		}
		mg := m.gw.MediaGroup()
		mg.opts = opts
		for _, ref := range target.Media {
			mg.items = append(mg.items, NewMediaItem(ref))
		}
		return "sendMediaGroup", mg.params(body)
	}
}

// classifyOutcome maps one response to its outcome. Codes 400 and 403 mean
// the destination cannot be reached and retrying will not help.
func classifyOutcome(resp *tg.Response, err error) Outcome {
	if err != nil || resp == nil {
		return OutcomeFailed
	}
	if resp.OK {
		return OutcomeSent
	}
	switch resp.Code() {
	case http.StatusBadRequest, http.StatusForbidden:
		return OutcomeBlocked
	default:
		return OutcomeFailed
	}
}
