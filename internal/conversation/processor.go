package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/foreveruup/wp-bot/internal/greenapi"
	"github.com/foreveruup/wp-bot/internal/leads"
	"github.com/foreveruup/wp-bot/internal/observability/metrics"
	"github.com/foreveruup/wp-bot/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	listClientsCommand = "/list-clients"
	resetCommand       = "/reset"
	recentLeadsShown   = 3
)

// Notification outcomes reported to metrics.
const (
	outcomeIgnored     = "ignored"
	outcomeDuplicate   = "duplicate"
	outcomeAdminList   = "admin_list"
	outcomeLeadCapture = "lead_capture"
	outcomeAdminReset  = "admin_reset"
	outcomeIntent      = "intent"
	outcomeGenerated   = "generated"
)

var processorTracer = otel.Tracer("wpbot.internal.conversation.processor")

// messageSender is the slice of the gateway client the processor needs.
type messageSender interface {
	SendMessage(ctx context.Context, chatID, message string) (*greenapi.SendMessageResult, error)
}

type processorConfig struct {
	admins        []string
	metrics       *metrics.BotMetrics
	dedupCapacity int
}

// ProcessorOption tunes optional processor behavior.
type ProcessorOption func(*processorConfig)

// WithAdminNumbers sets the sender identifiers allowed to run admin commands.
func WithAdminNumbers(numbers []string) ProcessorOption {
	return func(cfg *processorConfig) {
		cfg.admins = numbers
	}
}

// WithMetrics attaches Prometheus instrumentation to the processor.
func WithMetrics(m *metrics.BotMetrics) ProcessorOption {
	return func(cfg *processorConfig) {
		cfg.metrics = m
	}
}

// WithDedupCapacity bounds the processed-message set. Values <= 0 keep the
// default capacity.
func WithDedupCapacity(n int) ProcessorOption {
	return func(cfg *processorConfig) {
		cfg.dedupCapacity = n
	}
}

// Processor routes one inbound notification through deduplication, admin
// commands, lead capture, canned intents, and the generative fallback, in
// that order. The first matching branch wins and later branches are skipped.
type Processor struct {
	sender    messageSender
	history   *HistoryStore
	leads     leads.Store
	generator *Generator
	admins    map[string]struct{}
	processed *processedSet
	metrics   *metrics.BotMetrics
	logger    *logging.Logger
}

// NewProcessor wires the notification pipeline.
func NewProcessor(sender messageSender, history *HistoryStore, store leads.Store, generator *Generator, logger *logging.Logger, opts ...ProcessorOption) *Processor {
	if sender == nil {
		panic("conversation: message sender cannot be nil")
	}
	if history == nil {
		panic("conversation: history store cannot be nil")
	}
	if store == nil {
		panic("conversation: lead store cannot be nil")
	}
	if generator == nil {
		panic("conversation: generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var cfg processorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	admins := make(map[string]struct{}, len(cfg.admins))
	for _, number := range cfg.admins {
		number = strings.TrimSpace(number)
		if number != "" {
			admins[number] = struct{}{}
		}
	}

	return &Processor{
		sender:    sender,
		history:   history,
		leads:     store,
		generator: generator,
		admins:    admins,
		processed: newProcessedSet(cfg.dedupCapacity),
		metrics:   cfg.metrics,
		logger:    logger,
	}
}

// Process handles one inbound notification end to end. It never returns an
// error: every failure is logged and absorbed here so the caller can always
// acknowledge the notification afterwards.
func (p *Processor) Process(ctx context.Context, n *greenapi.Notification) {
	if n == nil {
		return
	}

	ctx, span := processorTracer.Start(ctx, "conversation.process")
	defer span.End()
	span.SetAttributes(attribute.String("wpbot.webhook", n.Body.TypeWebhook))

	body := n.Body
	if body.TypeWebhook != greenapi.WebhookIncomingMessage {
		p.metrics.ObserveNotification(outcomeIgnored)
		return
	}

	text, ok := body.Text()
	if !ok {
		p.metrics.ObserveNotification(outcomeIgnored)
		return
	}

	chatID := body.SenderData.ChatID
	sender := body.SenderData.Sender
	if text == "" || chatID == "" {
		p.metrics.ObserveNotification(outcomeIgnored)
		return
	}

	messageID := body.IDMessage
	if p.processed.Seen(messageID) {
		p.logger.Info("duplicate message skipped", "message_id", messageID)
		p.metrics.ObserveNotification(outcomeDuplicate)
		return
	}

	span.SetAttributes(attribute.String("wpbot.chat_id", chatID))
	p.logger.Info("incoming message", "sender", sender, "chat_id", chatID, "chars", len(text))

	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, listClientsCommand) {
		p.handleListClients(ctx, chatID, sender)
		p.processed.Mark(messageID)
		p.metrics.ObserveNotification(outcomeAdminList)
		return
	}

	if leads.HasFieldMarker(text) {
		p.handleLeadCapture(ctx, chatID, sender, text)
		p.processed.Mark(messageID)
		p.metrics.ObserveNotification(outcomeLeadCapture)
		return
	}

	if trimmed == resetCommand {
		if p.isAdmin(sender) {
			p.history.Clear(chatID)
			p.sendReply(ctx, chatID, "admin_reset", historyClearedReply)
		}
		p.processed.Mark(messageID)
		p.metrics.ObserveNotification(outcomeAdminReset)
		return
	}

	if reply, matched := RouteIntent(text); matched {
		p.sendReply(ctx, chatID, "intent", reply)
		p.processed.Mark(messageID)
		p.metrics.ObserveNotification(outcomeIntent)
		return
	}

	start := time.Now()
	reply, err := p.generator.Reply(ctx, chatID, text)
	if err != nil {
		p.metrics.ObserveLLMLatency("error", time.Since(start).Seconds())
		p.logger.Error("reply generation failed", "chat_id", chatID, "error", err)
		reply = llmFailureReply
	} else {
		p.metrics.ObserveLLMLatency("ok", time.Since(start).Seconds())
	}
	p.sendReply(ctx, chatID, "generated", reply)
	p.processed.Mark(messageID)
	p.metrics.ObserveNotification(outcomeGenerated)
}

func (p *Processor) handleListClients(ctx context.Context, chatID, sender string) {
	if !p.isAdmin(sender) {
		p.sendReply(ctx, chatID, "access_denied", accessDeniedReply)
		return
	}

	records, err := p.leads.Recent(ctx, recentLeadsShown)
	if err != nil {
		p.logger.Error("lead listing failed", "error", err)
		p.sendReply(ctx, chatID, "admin_list", "Ошибка: "+err.Error())
		return
	}
	p.sendReply(ctx, chatID, "admin_list", leadListingReply(records))
}

func (p *Processor) handleLeadCapture(ctx context.Context, chatID, sender, text string) {
	lead := leads.Extract(text)

	if missing := lead.MissingFields(); len(missing) > 0 {
		p.sendReply(ctx, chatID, "lead_prompt", missingFieldsReply(missing))
		return
	}

	lead.Sender = sender
	if err := p.leads.Save(ctx, &lead); err != nil {
		p.logger.Error("lead save failed", "sender", sender, "error", err)
		return
	}

	p.metrics.LeadSaved()
	p.logger.Info("lead saved", "sender", sender, "name", lead.Name)
	p.sendReply(ctx, chatID, "lead_confirmation", leadConfirmationReply(&lead))
}

func (p *Processor) isAdmin(sender string) bool {
	_, ok := p.admins[sender]
	return ok
}

// sendReply delivers text to the chat unless it would repeat the reply sent
// immediately before it. The last-reply cache is only updated on a
// successful send.
func (p *Processor) sendReply(ctx context.Context, chatID, kind, text string) {
	if p.history.ShouldSuppress(chatID, text) {
		p.logger.Info("suppressed repeated reply", "chat_id", chatID, "kind", kind)
		p.metrics.ObserveReply(kind, "suppressed")
		return
	}

	if _, err := p.sender.SendMessage(ctx, chatID, text); err != nil {
		p.logger.Error("send failed", "chat_id", chatID, "kind", kind, "error", err)
		p.metrics.ObserveReply(kind, "failed")
		return
	}

	p.history.RememberReply(chatID, text)
	p.metrics.ObserveReply(kind, "sent")
}
