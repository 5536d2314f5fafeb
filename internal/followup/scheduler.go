package followup

import (
	"context"
	"time"

	"localizador_bot/internal/bot"
	"localizador_bot/internal/logger"
	"localizador_bot/internal/store"
	"localizador_bot/pkg"
)

// Scheduler runs the poll strategy: on a fixed interval it asks the
// store for interactions due a satisfaction survey and sends at most
// one prompt per recipient, guarded by the pending table.
type Scheduler struct {
	store    store.Store
	sender   bot.Sender
	pending  PendingTable
	interval time.Duration
}

// NewScheduler wires the poll loop.
func NewScheduler(st store.Store, sender bot.Sender, pending PendingTable, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    st,
		sender:   sender,
		pending:  pending,
		interval: interval,
	}
}

// Run polls until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", s.interval).Msg("followup scheduler running")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("followup scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one poll cycle. The pending-table membership check
// before each send is what keeps the at-most-one-outstanding-prompt
// invariant.
func (s *Scheduler) Sweep(ctx context.Context) {
	due, err := s.store.PendingFollowups(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to query followup candidates")
		return
	}

	for _, candidate := range due {
		has, err := s.pending.Has(ctx, candidate.ChatID)
		if err != nil {
			logger.Error().Err(err).Int64("chat_id", candidate.ChatID).Msg("pending table lookup failed")
			continue
		}
		if has {
			continue
		}

		reply := pkg.Reply{
			Text:     msgSurveyPrompt,
			Keyboard: bot.OptionsKeyboard([]string{"Sim", "Não"}),
		}
		if err := s.sender.Send(ctx, candidate.ChatID, reply); err != nil {
			logger.Error().Err(err).Int64("chat_id", candidate.ChatID).Msg("failed to send followup prompt")
			continue
		}

		// The entry is recorded only after a successful send; a crash
		// between the two can leak an unanswerable entry, which the
		// durability non-goal accepts.
		if err := s.pending.Put(ctx, candidate.ChatID, candidate.InteractionID); err != nil {
			logger.Error().Err(err).Int64("chat_id", candidate.ChatID).Msg("failed to record pending entry")
			continue
		}

		logger.Info().
			Int64("chat_id", candidate.ChatID).
			Str("interacao_id", candidate.InteractionID).
			Msg("followup prompt sent")
	}
}
