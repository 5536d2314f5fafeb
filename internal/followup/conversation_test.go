package followup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localizador_bot/pkg"
)

type fakeSender struct {
	sent []pkg.Reply
	err  error
}

func (f *fakeSender) Send(ctx context.Context, chatID int64, reply pkg.Reply) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, reply)
	return nil
}

func (f *fakeSender) last() pkg.Reply {
	return f.sent[len(f.sent)-1]
}

type fakeStore struct {
	responses  []pkg.FollowupResponse
	pending    []pkg.PendingFollowup
	pendingErr error
}

func (f *fakeStore) RecordInteraction(ctx context.Context, rec pkg.Interaction) (string, error) {
	return "", nil
}

func (f *fakeStore) RecordFollowupResponse(ctx context.Context, rec pkg.FollowupResponse) error {
	f.responses = append(f.responses, rec)
	return nil
}

func (f *fakeStore) PendingFollowups(ctx context.Context) ([]pkg.PendingFollowup, error) {
	return f.pending, f.pendingErr
}

func reply(chatID int64, text string) pkg.IncomingMessage {
	return pkg.IncomingMessage{ChatID: chatID, UserID: 900, Text: text}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		input string
		yes   bool
		no    bool
	}{
		{"Sim", true, false},
		{"sim", true, false},
		{"SIM", true, false},
		{"s", true, false},
		{"Não", false, true},
		{"nao", false, true},
		{"NÃO", false, true},
		{"n", false, true},
		{"talvez", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := normalizeAnswer(tt.input)
			assert.Equal(t, tt.yes, isYes(n))
			assert.Equal(t, tt.no, isNo(n))
		})
	}
}

func TestResponderMatches(t *testing.T) {
	r := NewResponder(&fakeStore{}, &fakeSender{}, NewMemoryTable())

	assert.True(t, r.Matches("Sim"))
	assert.True(t, r.Matches("não"))
	assert.True(t, r.Matches("NAO"))
	assert.False(t, r.Matches("quero comprar"))
	assert.False(t, r.Matches("/start"))
}

func TestStaleReplyWarnsAndTerminates(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	st := &fakeStore{}
	r := NewResponder(st, sender, NewMemoryTable())

	h, done := r.Begin(ctx, reply(42, "Sim"))
	assert.True(t, done)
	assert.Nil(t, h)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, msgStale, sender.last().Text)
	assert.Empty(t, st.responses)
}

func TestAffirmativeBranchPersistsRating(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	st := &fakeStore{}
	pending := NewMemoryTable()
	require.NoError(t, pending.Put(ctx, 42, "77"))

	r := NewResponder(st, sender, pending)
	h, done := r.Begin(ctx, reply(42, "Sim"))
	require.False(t, done)
	require.NotNil(t, h)
	assert.Equal(t, msgAskRating, sender.last().Text)

	// The entry was consumed the moment the reply matched.
	has, err := pending.Has(ctx, 42)
	require.NoError(t, err)
	assert.False(t, has)

	// Out-of-range and unparseable ratings re-prompt in place.
	for _, bad := range []string{"11", "-1", "abc"} {
		done = h.Handle(ctx, reply(42, bad))
		assert.False(t, done)
		assert.Equal(t, msgBadRating, sender.last().Text)
	}
	assert.Empty(t, st.responses)

	done = h.Handle(ctx, reply(42, "10"))
	assert.True(t, done)
	assert.Equal(t, msgThanksRating, sender.last().Text)

	require.Len(t, st.responses, 1)
	rec := st.responses[0]
	assert.Equal(t, "77", rec.InteractionID)
	assert.True(t, rec.FoundProduct)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 10, *rec.Rating)
	assert.Nil(t, rec.Reason)
	assert.False(t, rec.ResponseTime.IsZero())
}

func TestNegativeBranchPersistsReason(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	st := &fakeStore{}
	pending := NewMemoryTable()
	require.NoError(t, pending.Put(ctx, 42, "77"))

	r := NewResponder(st, sender, pending)
	h, done := r.Begin(ctx, reply(42, "Não"))
	require.False(t, done)
	assert.Equal(t, msgAskReason, sender.last().Text)
	require.NotNil(t, sender.last().Keyboard)
	assert.Equal(t, [][]string{
		{"Produto não disponível", "Preço"},
		{"Outro"},
	}, sender.last().Keyboard.Rows)

	done = h.Handle(ctx, reply(42, "Preço"))
	assert.True(t, done)
	assert.Equal(t, msgThanksReason, sender.last().Text)

	require.Len(t, st.responses, 1)
	rec := st.responses[0]
	assert.Equal(t, "77", rec.InteractionID)
	assert.False(t, rec.FoundProduct)
	assert.Nil(t, rec.Rating)
	require.NotNil(t, rec.Reason)
	assert.Equal(t, "Preço", *rec.Reason)
}

func TestUnparseableYesNoRepromptsWithoutGoingStale(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	st := &fakeStore{}

	// Constructed directly: entry is gated by Matches, but the state
	// itself still re-prompts instead of terminating.
	c := &Conversation{
		state:         awaitYesNo,
		chatID:        42,
		interactionID: "77",
		store:         st,
		sender:        sender,
	}

	done := c.Handle(ctx, reply(42, "talvez"))
	assert.False(t, done)
	assert.Equal(t, msgNotYesNo, sender.last().Text)

	done = c.Handle(ctx, reply(42, "nao"))
	assert.False(t, done)
	assert.Equal(t, msgAskReason, sender.last().Text)
}

func TestMemoryTableTakeIsConsuming(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable()
	require.NoError(t, table.Put(ctx, 1, "10"))

	id, ok, err := table.Take(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", id)

	_, ok, err = table.Take(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
