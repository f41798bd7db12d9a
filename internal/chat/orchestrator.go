package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/detection"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"go.uber.org/zap"
)

// ReplyKind describes which pipeline stage produced a reply.
type ReplyKind string

const (
	// KindChat is a normal companion reply.
	KindChat ReplyKind = "chat"
	// KindCrisis is a canned crisis response from the pattern detector.
	KindCrisis ReplyKind = "crisis"
	// KindSafety is an intervention response from the safety classifier.
	KindSafety ReplyKind = "safety"
	// KindRestricted is the notice returned for restricted accounts.
	KindRestricted ReplyKind = "restricted"
	// KindRateLimited is the notice returned when the account exceeds its
	// request budget.
	KindRateLimited ReplyKind = "rate_limited"
)

const (
	restrictedNotice = "Your chat access is temporarily paused while our team reviews " +
		"recent conversations. If you need support right now, please reach out: " +
		"AASRA 022 2754 6669, Kiran Helpline 1800-599-0019, or emergency services 112."

	rateLimitedNotice = "You're sending messages very quickly. Take a moment to breathe. " +
		"I'm here when you're ready to continue."
)

// Reply is the orchestrator's answer to one inbound message.
type Reply struct {
	Content string
	Kind    ReplyKind
}

// AccountStore provides account lookup and activity tracking.
type AccountStore interface {
	GetByCode(ctx context.Context, code string) (*types.Account, error)
	TouchActivity(ctx context.Context, code string) error
}

// MessageStore persists conversation turns.
type MessageStore interface {
	Save(ctx context.Context, message *types.ChatMessage) error
	GetHistory(ctx context.Context, accountCode string, limit int) ([]*types.ChatMessage, error)
}

// FlagStore records safety flags.
type FlagStore interface {
	Insert(ctx context.Context, event *types.FlagEvent) error
}

// Restrictor re-evaluates account restriction after a flag is recorded.
type Restrictor interface {
	Evaluate(ctx context.Context, accountCode string) (bool, error)
}

// Detector runs the keyword and regex crisis screen.
type Detector interface {
	Detect(text string) (*detection.Match, bool)
}

// Classifier runs the model-backed safety screen.
type Classifier interface {
	Classify(ctx context.Context, text string) *ai.Classification
}

// Generator produces companion replies and enforces response rules on them.
type Generator interface {
	Generate(ctx context.Context, history []ai.Turn) (string, error)
	EnforceGuardrails(ctx context.Context, reply string, history []ai.Turn) string
}

// Orchestrator runs every inbound message through the safety pipeline:
// account check, pattern detection, model classification, rate limiting,
// reply generation, and moderation dispatch. Safety screens run before the
// rate limit so a crisis disclosure is never answered with a throttle notice.
type Orchestrator struct {
	accounts   AccountStore
	messages   MessageStore
	flags      FlagStore
	restrictor Restrictor
	detector   Detector
	classifier Classifier
	generator  Generator
	sessions   *SessionStore
	limiter    *RateLimiter
	dispatcher Dispatcher
	detectCfg  config.Detection

	// historyLimit caps how many stored turns are replayed when the Redis
	// session has expired and history must be rebuilt from the database.
	historyLimit int

	logger *zap.Logger
}

// NewOrchestrator wires the message pipeline together.
func NewOrchestrator(
	accounts AccountStore,
	messages MessageStore,
	flags FlagStore,
	restrictor Restrictor,
	detector Detector,
	classifier Classifier,
	generator Generator,
	sessions *SessionStore,
	limiter *RateLimiter,
	dispatcher Dispatcher,
	detectCfg config.Detection,
	historyLimit int,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		accounts:     accounts,
		messages:     messages,
		flags:        flags,
		restrictor:   restrictor,
		detector:     detector,
		classifier:   classifier,
		generator:    generator,
		sessions:     sessions,
		limiter:      limiter,
		dispatcher:   dispatcher,
		detectCfg:    detectCfg,
		historyLimit: historyLimit,
		logger:       logger.Named("orchestrator"),
	}
}

// HandleMessage processes one inbound message and returns the reply to
// deliver. Unknown accounts return types.ErrAccountNotFound; any other error
// means no reply could be produced.
func (o *Orchestrator) HandleMessage(ctx context.Context, accountCode, text string) (*Reply, error) {
	account, err := o.accounts.GetByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		return &Reply{Content: restrictedNotice, Kind: KindRestricted}, nil
	}

	if err := o.accounts.TouchActivity(ctx, accountCode); err != nil {
		o.logger.Warn("Failed to update account activity",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}

	if match, ok := o.detector.Detect(text); ok {
		return o.handleCrisis(ctx, accountCode, text, match)
	}

	if classification := o.classifier.Classify(ctx, text); classification.Concerning {
		return o.handleConcern(ctx, accountCode, text, classification)
	}

	allowed, err := o.limiter.Allow(ctx, accountCode)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	if !allowed {
		return &Reply{Content: rateLimitedNotice, Kind: KindRateLimited}, nil
	}

	return o.handleChat(ctx, accountCode, text)
}

// handleCrisis records a pattern-detector hit and returns the canned crisis
// response without involving the reply model.
func (o *Orchestrator) handleCrisis(
	ctx context.Context, accountCode, text string, match *detection.Match,
) (*Reply, error) {
	confidence := o.detectCfg.PatternConfidence

	o.saveUserMessage(ctx, accountCode, text, match.Category.String(), confidence, nil)
	o.saveAssistantMessage(ctx, accountCode, match.Response)
	o.recordFlag(ctx, types.NewFlagEvent(
		accountCode, match.Category, confidence, enum.FlagSourcePattern, text, nil,
	))
	o.appendSession(ctx, accountCode, text, match.Response)

	o.logger.Info("Crisis pattern detected",
		zap.String("account_code", accountCode),
		zap.String("category", match.Category.String()))

	return &Reply{Content: match.Response, Kind: KindCrisis}, nil
}

// handleConcern records a classifier hit and returns the matching
// intervention response.
func (o *Orchestrator) handleConcern(
	ctx context.Context, accountCode, text string, classification *ai.Classification,
) (*Reply, error) {
	analysis := classification.Analysis
	response := ai.ConcernResponse(classification.ConcernType)

	o.saveUserMessage(ctx, accountCode, text,
		classification.Category.String(), analysis.Confidence, analysis.Fields())
	o.saveAssistantMessage(ctx, accountCode, response)
	o.recordFlag(ctx, types.NewFlagEvent(
		accountCode, classification.Category, analysis.Confidence,
		enum.FlagSourceClassifier, text, analysis.Fields(),
	))
	o.appendSession(ctx, accountCode, text, response)

	o.logger.Info("Safety concern classified",
		zap.String("account_code", accountCode),
		zap.String("concern_type", classification.ConcernType),
		zap.Float64("confidence", analysis.Confidence),
		zap.Bool("from_fallback", classification.FromFallback))

	return &Reply{Content: response, Kind: KindSafety}, nil
}

// handleChat generates a companion reply and dispatches the stored message
// for asynchronous moderation.
func (o *Orchestrator) handleChat(ctx context.Context, accountCode, text string) (*Reply, error) {
	history := o.conversationHistory(ctx, accountCode)
	messageID := o.saveUserMessage(ctx, accountCode, text, "", 0, nil)

	history = append(history, ai.Turn{Role: types.RoleUser, Content: text})

	reply, err := o.generator.Generate(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	reply = o.generator.EnforceGuardrails(ctx, reply, history)

	o.saveAssistantMessage(ctx, accountCode, reply)
	o.appendSession(ctx, accountCode, text, reply)

	if err := o.dispatcher.Dispatch(ctx, &queue.ModerationTask{
		AccountCode: accountCode,
		MessageID:   messageID,
		Text:        text,
		QueuedAt:    time.Now().UTC(),
	}); err != nil {
		o.logger.Error("Failed to dispatch moderation task",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}

	return &Reply{Content: reply, Kind: KindChat}, nil
}

// conversationHistory loads the prior turns for an account. The Redis
// session is the primary source; when it is empty or unreadable, recent
// turns are replayed from the database so an expired session does not reset
// the conversation. Failures fall back to an empty history.
func (o *Orchestrator) conversationHistory(ctx context.Context, accountCode string) []ai.Turn {
	history, err := o.sessions.History(ctx, accountCode)
	if err != nil {
		o.logger.Warn("Failed to load session history",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}

	if len(history) > 0 {
		return history
	}

	stored, err := o.messages.GetHistory(ctx, accountCode, o.historyLimit)
	if err != nil {
		o.logger.Warn("Failed to load stored history, replying without context",
			zap.String("account_code", accountCode),
			zap.Error(err))

		return nil
	}

	for _, message := range stored {
		history = append(history, ai.Turn{Role: message.Role, Content: message.Content})
	}

	return history
}

// saveUserMessage persists the inbound message, tagging it with flag
// metadata when a screen fired. Persistence failures are logged rather than
// surfaced; losing the audit row should not block the safety response.
func (o *Orchestrator) saveUserMessage(
	ctx context.Context, accountCode, text, flagType string,
	confidence float64, analysis map[string]any,
) string {
	message := &types.ChatMessage{
		ID:          uuid.NewString(),
		AccountCode: accountCode,
		Role:        types.RoleUser,
		Content:     text,
		FlagType:    flagType,
		Confidence:  confidence,
		Analysis:    analysis,
		CreatedAt:   time.Now().UTC(),
	}

	if err := o.messages.Save(ctx, message); err != nil {
		o.logger.Error("Failed to save user message",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}

	return message.ID
}

// saveAssistantMessage persists the outbound reply, generated or canned,
// so a rebuilt conversation keeps both sides of every turn.
func (o *Orchestrator) saveAssistantMessage(ctx context.Context, accountCode, reply string) {
	if err := o.messages.Save(ctx, &types.ChatMessage{
		ID:          uuid.NewString(),
		AccountCode: accountCode,
		Role:        types.RoleAssistant,
		Content:     reply,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		o.logger.Error("Failed to save assistant message",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}
}

// recordFlag inserts the flag event and re-evaluates restriction. The reply
// for the current turn is unaffected; a restriction takes effect on the
// account's next request.
func (o *Orchestrator) recordFlag(ctx context.Context, event *types.FlagEvent) {
	if err := o.flags.Insert(ctx, event); err != nil {
		o.logger.Error("Failed to record flag event",
			zap.String("account_code", event.AccountCode),
			zap.Error(err))

		return
	}

	restricted, err := o.restrictor.Evaluate(ctx, event.AccountCode)
	if err != nil {
		o.logger.Error("Failed to evaluate flag policy",
			zap.String("account_code", event.AccountCode),
			zap.Error(err))

		return
	}

	if restricted {
		o.logger.Info("Account restricted",
			zap.String("account_code", event.AccountCode))
	}
}

func (o *Orchestrator) appendSession(ctx context.Context, accountCode, userText, reply string) {
	err := o.sessions.Append(ctx, accountCode,
		ai.Turn{Role: types.RoleUser, Content: userText},
		ai.Turn{Role: types.RoleAssistant, Content: reply},
	)
	if err != nil {
		o.logger.Warn("Failed to update session",
			zap.String("account_code", accountCode),
			zap.Error(err))
	}
}
