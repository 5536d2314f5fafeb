package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"localizador_bot/internal/catalog"
	"localizador_bot/internal/logger"
	"localizador_bot/internal/store"
	"localizador_bot/pkg"
)

// FollowupEntry is how the router hands a stray yes/no reply to the
// follow-up sub-conversation.
type FollowupEntry interface {
	// Matches reports whether text is a survey yes/no reply.
	Matches(text string) bool
	// Begin resolves the sender against the pending table and handles
	// the first reply. It returns the live sub-conversation, or
	// done=true when the reply was stale or the branch finished
	// immediately.
	Begin(ctx context.Context, msg pkg.IncomingMessage) (Handler, bool)
}

// Router owns the one-active-conversation-per-chat table and turns raw
// updates into state-machine steps. Commands are handled here;
// everything else goes to whichever conversation is active for the
// chat.
type Router struct {
	mu     sync.Mutex
	active map[int64]Handler

	catalog  catalog.Lookup
	store    store.Store
	sender   Sender
	followup FollowupEntry
}

// NewRouter wires the update dispatcher.
func NewRouter(cat catalog.Lookup, st store.Store, sender Sender, followup FollowupEntry) *Router {
	return &Router{
		active:   make(map[int64]Handler),
		catalog:  cat,
		store:    st,
		sender:   sender,
		followup: followup,
	}
}

// Dispatch routes one inbound message. It is driven by the single
// update loop, so messages from one chat are handled in arrival order.
func (r *Router) Dispatch(ctx context.Context, msg pkg.IncomingMessage) {
	correlationID := uuid.NewString()
	log := logger.Logger.With().
		Str("update_id", correlationID).
		Int64("chat_id", msg.ChatID).
		Logger()

	text := strings.TrimSpace(msg.Text)
	switch text {
	case "/start":
		log.Info().Msg("starting locator session")
		r.setActive(msg.ChatID, StartLocator(ctx, r.catalog, r.store, r.sender, msg))
		return
	case "/cancel":
		log.Info().Msg("conversation cancelled")
		r.clearActive(msg.ChatID)
		r.send(ctx, msg.ChatID, pkg.Reply{Text: msgCancelled})
		return
	case "/help":
		r.send(ctx, msg.ChatID, pkg.Reply{Text: msgHelp})
		return
	}

	if h := r.getActive(msg.ChatID); h != nil {
		if done := h.Handle(ctx, msg); done {
			r.clearActive(msg.ChatID)
		}
		return
	}

	if r.followup != nil && r.followup.Matches(text) {
		h, done := r.followup.Begin(ctx, msg)
		if !done {
			r.setActive(msg.ChatID, h)
		}
		return
	}

	log.Debug().Msg("message outside any conversation, ignoring")
}

func (r *Router) getActive(chatID int64) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[chatID]
}

func (r *Router) setActive(chatID int64, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[chatID] = h
}

func (r *Router) clearActive(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, chatID)
}

func (r *Router) send(ctx context.Context, chatID int64, reply pkg.Reply) {
	if err := r.sender.Send(ctx, chatID, reply); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}
