package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localizador_bot/pkg"
)

type fakeEntry struct {
	began   []pkg.IncomingMessage
	handler Handler
	done    bool
}

func (f *fakeEntry) Matches(text string) bool {
	return text == "Sim" || text == "Não"
}

func (f *fakeEntry) Begin(ctx context.Context, msg pkg.IncomingMessage) (Handler, bool) {
	f.began = append(f.began, msg)
	return f.handler, f.done
}

type countingHandler struct {
	handled int
	done    bool
}

func (h *countingHandler) Handle(ctx context.Context, msg pkg.IncomingMessage) bool {
	h.handled++
	return h.done
}

func newTestRouter(entry FollowupEntry) (*Router, *fakeSender, *fakeStore) {
	sender := &fakeSender{}
	st := &fakeStore{}
	return NewRouter(testCatalog(), st, sender, entry), sender, st
}

func TestRouterStartBeginsSession(t *testing.T) {
	ctx := context.Background()
	r, sender, _ := newTestRouter(&fakeEntry{})

	r.Dispatch(ctx, textMsg("/start"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.last().Text, "telefone")

	// Next message goes to the active conversation.
	r.Dispatch(ctx, textMsg("11999999999"))
	assert.Contains(t, sender.last().Text, "família")
}

func TestRouterCancelDropsConversation(t *testing.T) {
	ctx := context.Background()
	r, sender, st := newTestRouter(&fakeEntry{})

	r.Dispatch(ctx, textMsg("/start"))
	r.Dispatch(ctx, textMsg("11999999999"))
	r.Dispatch(ctx, textMsg("/cancel"))
	assert.Equal(t, msgCancelled, sender.last().Text)

	// No partial record was persisted, and the conversation is gone:
	// a stray reply is ignored rather than handled.
	assert.Empty(t, st.interactions)
	before := len(sender.sent)
	r.Dispatch(ctx, textMsg("Bebidas"))
	assert.Len(t, sender.sent, before)
}

func TestRouterHelpIsStateless(t *testing.T) {
	ctx := context.Background()
	r, sender, _ := newTestRouter(&fakeEntry{})

	r.Dispatch(ctx, textMsg("/start"))
	r.Dispatch(ctx, textMsg("11999999999"))

	r.Dispatch(ctx, textMsg("/help"))
	assert.Equal(t, msgHelp, sender.last().Text)

	// The active conversation is untouched.
	r.Dispatch(ctx, textMsg("Bebidas"))
	assert.Equal(t, [][]string{{"SKU1", "SKU2"}}, sender.last().Keyboard.Rows)
}

func TestRouterYesNoEntersFollowup(t *testing.T) {
	ctx := context.Background()
	h := &countingHandler{}
	entry := &fakeEntry{handler: h}
	r, _, _ := newTestRouter(entry)

	r.Dispatch(ctx, textMsg("Sim"))
	require.Len(t, entry.began, 1)
	assert.Equal(t, "Sim", entry.began[0].Text)

	// The sub-conversation is now the active handler for the chat.
	r.Dispatch(ctx, textMsg("8"))
	assert.Equal(t, 1, h.handled)
}

func TestRouterFollowupFinishedAtEntryIsNotRetained(t *testing.T) {
	ctx := context.Background()
	entry := &fakeEntry{done: true}
	r, _, _ := newTestRouter(entry)

	r.Dispatch(ctx, textMsg("Não"))
	require.Len(t, entry.began, 1)

	// Entry terminated immediately (stale reply); the next yes/no is a
	// fresh entry, not a step of a retained conversation.
	r.Dispatch(ctx, textMsg("Não"))
	assert.Len(t, entry.began, 2)
}

func TestRouterIgnoresUnroutableText(t *testing.T) {
	ctx := context.Background()
	r, sender, _ := newTestRouter(&fakeEntry{})

	r.Dispatch(ctx, textMsg("bom dia"))
	assert.Empty(t, sender.sent)
}

func TestRouterConversationRemovedWhenDone(t *testing.T) {
	ctx := context.Background()
	r, sender, st := newTestRouter(&fakeEntry{})

	r.Dispatch(ctx, textMsg("/start"))
	r.Dispatch(ctx, textMsg("11999999999"))
	r.Dispatch(ctx, textMsg("Bebidas"))
	r.Dispatch(ctx, textMsg("SKU1"))
	r.Dispatch(ctx, textMsg("Centro"))
	require.Len(t, st.interactions, 1)

	// Terminal state reached: further plain text is no longer routed.
	before := len(sender.sent)
	r.Dispatch(ctx, textMsg("Centro"))
	assert.Len(t, sender.sent, before)
}
