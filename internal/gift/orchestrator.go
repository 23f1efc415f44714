package gift

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopgifter/internal/catalog"
	"shopgifter/internal/events"
	"shopgifter/internal/model"
	"shopgifter/internal/tracing"
	"shopgifter/internal/transport"
	"shopgifter/pkg/apierror"
	"shopgifter/pkg/uid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds gift engine timing.
type Config struct {
	// GiftTimeout bounds each gift submission.
	GiftTimeout time.Duration
	// ItemDelay is the pause after every attempted item in a bulk run.
	ItemDelay time.Duration
}

// Orchestrator drives single-item and bulk gift runs over a bot pool.
type Orchestrator struct {
	cfg        Config
	catalog    CatalogSource
	submitter  GiftSubmitter
	recipients RecipientResolver

	history HistoryRecorder
	events  *events.Manager
	tracer  *tracing.Tracer
	sleep   Sleeper
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHistory records every attempt to h.
func WithHistory(h HistoryRecorder) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithEvents publishes run progress to m.
func WithEvents(m *events.Manager) Option {
	return func(o *Orchestrator) { o.events = m }
}

// WithTracer sets the tracer used for run and attempt spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithSleeper replaces the inter-item sleep.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator over the given capabilities.
func NewOrchestrator(cfg Config, source CatalogSource, submitter GiftSubmitter, recipients RecipientResolver, opts ...Option) *Orchestrator {
	if cfg.GiftTimeout <= 0 {
		cfg.GiftTimeout = 5 * time.Second
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = 0
	}

	o := &Orchestrator{
		cfg:        cfg,
		catalog:    source,
		submitter:  submitter,
		recipients: recipients,
		tracer:     tracing.Noop(),
		sleep:      Sleep,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("gift")
	return o
}

// item is one storefront entry prepared for gifting.
type item struct {
	offerID string
	name    string
	price   int
}

func newItem(e model.ShopEntry) item {
	return item{offerID: e.OfferID, name: catalog.DisplayName(e), price: e.EffectivePrice()}
}

// GiftItem resolves reference against the live storefront and gifts the
// matching entry to recipient.
func (o *Orchestrator) GiftItem(ctx context.Context, bots []model.BotAccount, reference, recipient string) (ItemReport, *model.ShopEntry, error) {
	if len(bots) == 0 {
		return ItemReport{}, nil, apierror.Resolution("no bot accounts configured")
	}

	entries := o.catalog.Fetch(ctx)
	if len(entries) == 0 {
		return ItemReport{}, nil, apierror.Resolution("storefront is empty or unavailable")
	}

	entry, name := catalog.ResolveByReference(entries, reference)
	if entry == nil {
		return ItemReport{}, nil, apierror.Resolution(fmt.Sprintf("item not found in shop: %s", reference))
	}
	o.logger.Info("item resolved",
		zap.String("reference", reference),
		zap.String("offer_id", entry.OfferID),
		zap.String("name", name),
		zap.Int("price", entry.EffectivePrice()),
	)

	recipientID, err := o.ResolveRecipient(ctx, bots[0], recipient)
	if err != nil {
		return ItemReport{}, entry, err
	}

	return o.RunSingle(ctx, bots, *entry, recipientID), entry, nil
}

// GiftShop gifts every giftable storefront entry to recipient.
func (o *Orchestrator) GiftShop(ctx context.Context, bots []model.BotAccount, recipient string) (model.RunStats, error) {
	if len(bots) == 0 {
		return model.RunStats{}, apierror.Resolution("no bot accounts configured")
	}

	entries := o.catalog.Fetch(ctx)

	recipientID, err := o.ResolveRecipient(ctx, bots[0], recipient)
	if err != nil {
		return model.RunStats{}, err
	}

	return o.RunBulk(ctx, bots, entries, recipientID), nil
}

// ResolveRecipient returns recipient as-is when it already is an account id,
// and otherwise looks the display name up with bot's credentials.
func (o *Orchestrator) ResolveRecipient(ctx context.Context, bot model.BotAccount, recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", apierror.Resolution("recipient is required")
	}
	if uid.IsAccountID(recipient) {
		return recipient, nil
	}

	id, err := o.recipients.ResolveRecipient(ctx, bot, recipient)
	if err != nil {
		return "", apierror.WrapResolution(fmt.Sprintf("could not resolve recipient %q", recipient), err)
	}
	if id == "" {
		return "", apierror.Resolution(fmt.Sprintf("could not resolve recipient %q", recipient))
	}
	o.logger.Info("recipient resolved", zap.String("recipient", recipient), zap.String("account_id", id))
	return id, nil
}

// RunSingle gifts one entry starting from the first bot.
func (o *Orchestrator) RunSingle(ctx context.Context, bots []model.BotAccount, entry model.ShopEntry, recipientID string) ItemReport {
	runID := uid.New()
	ctx = transport.WithRequestID(ctx, runID)
	it := newItem(entry)

	ctx, span := o.tracer.StartSpan(ctx, "gift.single", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("offer.id", it.offerID),
		attribute.Int("bots", len(bots)),
	))
	defer span.End()

	report := o.driveItem(ctx, runID, bots, 0, it, recipientID)
	span.SetAttributes(attribute.String("item.result", report.Result.String()))
	return report
}

// RunBulk walks the giftable entries in catalog order with one shared bot
// cursor. The run stops as soon as the pool is exhausted or ctx is done;
// the stats gathered so far are always returned.
func (o *Orchestrator) RunBulk(ctx context.Context, bots []model.BotAccount, entries []model.ShopEntry, recipientID string) model.RunStats {
	stats := model.RunStats{RunID: uid.New()}
	ctx = transport.WithRequestID(ctx, stats.RunID)
	items := catalog.Giftable(entries)

	ctx, span := o.tracer.StartSpan(ctx, "gift.bulk", trace.WithAttributes(
		attribute.String("run.id", stats.RunID),
		attribute.Int("items", len(items)),
		attribute.Int("bots", len(bots)),
	))
	defer span.End()

	o.events.Publish(ctx, events.EventRunStarted, events.RunStartedData{
		RunID:       stats.RunID,
		RecipientID: recipientID,
		Items:       len(items),
		Bots:        len(bots),
	})
	o.logger.Info("bulk run started",
		zap.String("run_id", stats.RunID),
		zap.Int("items", len(items)),
		zap.Int("bots", len(bots)),
	)

	cursor := 0
	for _, entry := range items {
		stats.Considered++
		it := newItem(entry)
		if it.offerID == "" || it.price <= 0 {
			o.logger.Debug("entry not attemptable", zap.String("name", it.name))
			continue
		}

		report := o.driveItem(ctx, stats.RunID, bots, cursor, it, recipientID)
		cursor = report.Cursor

		if report.Cancelled {
			stats.Cancelled = true
			break
		}
		if len(report.Attempts) > 0 {
			stats.Attempted++
		}
		switch report.Result {
		case model.ItemSent:
			stats.Sent++
		case model.ItemSkipped:
			stats.Skipped++
		case model.ItemPoolExhausted:
			stats.Exhausted = true
		}
		if stats.Exhausted {
			o.logger.Warn("no more bots, stopping", zap.String("run_id", stats.RunID))
			break
		}

		if err := o.sleep(ctx, o.cfg.ItemDelay); err != nil {
			stats.Cancelled = true
			break
		}
	}
	stats.Cursor = cursor

	span.SetAttributes(
		attribute.Int("sent", stats.Sent),
		attribute.Int("skipped", stats.Skipped),
		attribute.Bool("exhausted", stats.Exhausted),
	)
	o.events.Publish(ctx, events.EventRunFinished, events.RunFinishedData{Stats: stats})
	o.logger.Info("bulk run finished",
		zap.String("run_id", stats.RunID),
		zap.Int("sent", stats.Sent),
		zap.Int("skipped", stats.Skipped),
		zap.Bool("exhausted", stats.Exhausted),
		zap.Bool("cancelled", stats.Cancelled),
	)
	return stats
}

func (o *Orchestrator) driveItem(ctx context.Context, runID string, bots []model.BotAccount, cursor int, it item, recipientID string) ItemReport {
	req := model.GiftRequest{
		OfferID:     it.offerID,
		Price:       it.price,
		RecipientID: recipientID,
		ItemName:    it.name,
	}

	report := Drive(ctx, bots, cursor, func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		return o.attempt(ctx, runID, index, bot, req)
	})

	o.events.Publish(ctx, events.EventItemFinished, events.ItemFinishedData{
		RunID:     runID,
		OfferID:   it.offerID,
		ItemName:  it.name,
		Result:    report.Result,
		Cursor:    report.Cursor,
		Cancelled: report.Cancelled,
	})
	return report
}

func (o *Orchestrator) attempt(ctx context.Context, runID string, index int, bot model.BotAccount, req model.GiftRequest) model.AttemptRecord {
	ctx, span := o.tracer.StartSpan(ctx, "gift.attempt", trace.WithAttributes(
		attribute.String("offer.id", req.OfferID),
		attribute.Int("bot.index", index),
		attribute.String("bot.account_id", bot.AccountID),
	))
	defer span.End()

	start := o.now()
	resp, err := o.submitter.SubmitGift(ctx, bot, req, o.cfg.GiftTimeout)
	rec := model.AttemptRecord{
		BotIndex:  index,
		AccountID: bot.AccountID,
		Duration:  o.now().Sub(start),
	}

	ruleName := "submission failed"
	if err != nil {
		rec.Outcome = ClassifyError(err)
		rec.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		rec.StatusCode = resp.StatusCode
		rec.Outcome, ruleName = classify(resp.StatusCode, resp.Body)
	}
	span.SetAttributes(
		attribute.String("gift.outcome", rec.Outcome.String()),
		attribute.String("gift.rule", ruleName),
	)

	fields := []zap.Field{
		zap.String("item", req.ItemName),
		zap.Int("price", req.Price),
		zap.String("bot", bot.Label()),
		zap.Int("status", rec.StatusCode),
		zap.String("outcome", rec.Outcome.String()),
		zap.String("rule", ruleName),
		zap.Duration("duration", rec.Duration),
	}
	if err != nil {
		o.logger.Warn("gift attempt failed", append(fields, zap.Error(err))...)
	} else {
		o.logger.Info("gift attempt", fields...)
	}

	o.record(ctx, runID, req, rec)
	o.events.Publish(ctx, events.EventItemAttempt, events.ItemAttemptData{
		RunID:    runID,
		OfferID:  req.OfferID,
		ItemName: req.ItemName,
		Attempt:  rec,
	})
	return rec
}

func (o *Orchestrator) record(ctx context.Context, runID string, req model.GiftRequest, rec model.AttemptRecord) {
	if o.history == nil {
		return
	}
	// The attempt happened even if the run is being cancelled.
	err := o.history.RecordAttempt(context.WithoutCancel(ctx), model.GiftRecord{
		RunID:       runID,
		AccountID:   rec.AccountID,
		RecipientID: req.RecipientID,
		OfferID:     req.OfferID,
		ItemName:    req.ItemName,
		Price:       req.Price,
		Outcome:     rec.Outcome.String(),
		StatusCode:  rec.StatusCode,
		CreatedAt:   o.now(),
	})
	if err != nil {
		o.logger.Warn("failed to record gift attempt", zap.String("run_id", runID), zap.Error(err))
	}
}
