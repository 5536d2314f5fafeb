package followup

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"localizador_bot/internal/bot"
	"localizador_bot/internal/logger"
	"localizador_bot/internal/store"
	"localizador_bot/pkg"
)

// User-facing texts of the survey sub-conversation.
const (
	msgSurveyPrompt = "Olá! Você encontrou o produto que estava procurando?"
	msgStale        = "⚠️ Essa interação já foi registrada ou não é válida."
	msgAskRating    = "✨ Que bom! De 0 a 10, qual a sua nota para o produto?"
	msgAskReason    = "😕 Que pena. Pode nos dizer o motivo?"
	msgNotYesNo     = "❓ Por favor, responda com *Sim* ou *Não*."
	msgBadRating    = "⚠️ Digite apenas um número de 0 a 10."
	msgThanksRating = "✅ Obrigado pela sua avaliação!"
	msgThanksReason = "✅ Obrigado pelo seu retorno!"
)

var reasonOptions = []string{"Produto não disponível", "Preço", "Outro"}

// Responder is the entry point of the survey sub-conversation. It is
// what the router consults when a yes/no reply arrives outside any
// active conversation.
type Responder struct {
	store   store.Store
	sender  bot.Sender
	pending PendingTable
}

// NewResponder wires the survey entry point.
func NewResponder(st store.Store, sender bot.Sender, pending PendingTable) *Responder {
	return &Responder{store: st, sender: sender, pending: pending}
}

// Matches reports whether text is an affirmative or negative survey
// reply, case- and accent-insensitive.
func (r *Responder) Matches(text string) bool {
	n := normalizeAnswer(text)
	return isYes(n) || isNo(n)
}

// Begin consumes the sender's pending entry and handles the first
// reply. A reply with no pending entry is stale: it gets a warning and
// no state is entered.
func (r *Responder) Begin(ctx context.Context, msg pkg.IncomingMessage) (bot.Handler, bool) {
	interactionID, ok, err := r.pending.Take(ctx, msg.ChatID)
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("pending table lookup failed")
	}
	if !ok {
		r.send(ctx, msg.ChatID, pkg.Reply{Text: msgStale})
		return nil, true
	}

	c := &Conversation{
		state:         awaitYesNo,
		chatID:        msg.ChatID,
		interactionID: interactionID,
		store:         r.store,
		sender:        r.sender,
	}
	done := c.Handle(ctx, msg)
	return c, done
}

func (r *Responder) send(ctx context.Context, chatID int64, reply pkg.Reply) {
	if err := r.sender.Send(ctx, chatID, reply); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

type surveyState int

const (
	awaitYesNo surveyState = iota
	awaitRating
	awaitReason
)

// Conversation is the yes/no → rating-or-reason survey for one
// recipient. The pending entry was already consumed at entry, so an
// unparseable yes/no re-prompts here instead of going stale.
type Conversation struct {
	state         surveyState
	chatID        int64
	interactionID string
	foundProduct  bool

	store  store.Store
	sender bot.Sender
}

// Handle advances the survey by one step.
func (c *Conversation) Handle(ctx context.Context, msg pkg.IncomingMessage) bool {
	switch c.state {
	case awaitYesNo:
		return c.handleYesNo(ctx, msg.Text)
	case awaitRating:
		return c.handleRating(ctx, msg.Text)
	case awaitReason:
		return c.handleReason(ctx, msg.Text)
	}
	return true
}

func (c *Conversation) handleYesNo(ctx context.Context, text string) bool {
	switch answer := normalizeAnswer(text); {
	case isYes(answer):
		c.foundProduct = true
		c.state = awaitRating
		c.send(ctx, pkg.Reply{Text: msgAskRating})
	case isNo(answer):
		c.foundProduct = false
		c.state = awaitReason
		c.send(ctx, pkg.Reply{Text: msgAskReason, Keyboard: bot.OptionsKeyboard(reasonOptions)})
	default:
		c.send(ctx, pkg.Reply{Text: msgNotYesNo, Markdown: true})
	}
	return false
}

func (c *Conversation) handleRating(ctx context.Context, text string) bool {
	rating, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || rating < 0 || rating > 10 {
		c.send(ctx, pkg.Reply{Text: msgBadRating})
		return false
	}

	c.persist(ctx, pkg.FollowupResponse{
		InteractionID: c.interactionID,
		FoundProduct:  true,
		Rating:        &rating,
		Reason:        nil,
		ResponseTime:  time.Now().UTC(),
	})
	c.send(ctx, pkg.Reply{Text: msgThanksRating})
	return true
}

func (c *Conversation) handleReason(ctx context.Context, text string) bool {
	reason := strings.TrimSpace(text)
	c.persist(ctx, pkg.FollowupResponse{
		InteractionID: c.interactionID,
		FoundProduct:  false,
		Rating:        nil,
		Reason:        &reason,
		ResponseTime:  time.Now().UTC(),
	})
	c.send(ctx, pkg.Reply{Text: msgThanksReason})
	return true
}

// persist is best-effort: store failures are logged and the user still
// gets the thank-you message.
func (c *Conversation) persist(ctx context.Context, rec pkg.FollowupResponse) {
	if err := c.store.RecordFollowupResponse(ctx, rec); err != nil {
		logger.Error().Err(err).Int64("chat_id", c.chatID).Msg("failed to persist followup response")
	}
}

func (c *Conversation) send(ctx context.Context, reply pkg.Reply) {
	if err := c.sender.Send(ctx, c.chatID, reply); err != nil {
		logger.Error().Err(err).Int64("chat_id", c.chatID).Msg("failed to send reply")
	}
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeAnswer lowercases and strips diacritics so "Não", "nao" and
// "NÃO" compare equal.
func normalizeAnswer(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	stripped, _, err := transform.String(stripAccents, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

func isYes(normalized string) bool {
	return normalized == "sim" || normalized == "s"
}

func isNo(normalized string) bool {
	return normalized == "nao" || normalized == "n"
}
