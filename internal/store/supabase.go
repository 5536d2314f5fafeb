package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"localizador_bot/internal/logger"
	"localizador_bot/pkg"
)

// Store persists completed sessions and survey answers and reports
// which interactions still await a survey.
type Store interface {
	RecordInteraction(ctx context.Context, rec pkg.Interaction) (string, error)
	RecordFollowupResponse(ctx context.Context, rec pkg.FollowupResponse) error
	PendingFollowups(ctx context.Context) ([]pkg.PendingFollowup, error)
}

// ErrMissingInteractionID marks a follow-up response that arrived with
// no interaction linkage; the record is dropped.
var ErrMissingInteractionID = errors.New("interacao_id is required to save a followup response")

const (
	interactionsTable = "interacoes_clientes"
	responsesTable    = "respostas_retorno"
	// followupView filters interactions past the delay threshold with
	// no recorded response; eligibility lives database-side.
	followupView = "interacoes_para_followup"
)

// SupabaseClient talks to the Supabase PostgREST endpoint.
type SupabaseClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	// delay is the minimum interaction age before a survey is due.
	delay time.Duration
}

// NewSupabaseClient creates a store client for the given project URL
// and service key.
func NewSupabaseClient(baseURL, apiKey string, delay time.Duration) *SupabaseClient {
	return &SupabaseClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		delay:   delay,
	}
}

// RecordInteraction persists a completed session and returns the
// store-assigned id. Transport and HTTP failures are logged and
// returned; callers treat them as soft.
func (c *SupabaseClient) RecordInteraction(ctx context.Context, rec pkg.Interaction) (string, error) {
	body, err := c.post(ctx, interactionsTable, rec)
	if err != nil {
		logger.Error().Err(err).Str("cliente_id", rec.ClientID).Msg("failed to record interaction")
		return "", err
	}

	// Ids are bigserial in the table; decode as json.Number so both
	// numeric and string representations survive.
	var rows []struct {
		ID json.Number `json:"id"`
	}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		logger.Error().Err(err).Msg("unexpected interaction insert response")
		return "", err
	}
	if len(rows) == 0 || rows[0].ID.String() == "" {
		err := fmt.Errorf("interaction insert returned no id")
		logger.Error().Err(err).Str("cliente_id", rec.ClientID).Msg("unexpected interaction insert response")
		return "", err
	}

	id := rows[0].ID.String()
	logger.Info().Str("interacao_id", id).Msg("interaction recorded")
	return id, nil
}

// RecordFollowupResponse persists a survey answer. A missing
// interaction id is logged and dropped, never retried.
func (c *SupabaseClient) RecordFollowupResponse(ctx context.Context, rec pkg.FollowupResponse) error {
	if rec.InteractionID == "" {
		logger.Error().Msg("dropping followup response without interacao_id")
		return ErrMissingInteractionID
	}
	if rec.ResponseTime.IsZero() {
		rec.ResponseTime = time.Now().UTC()
	}

	if _, err := c.post(ctx, responsesTable, rec); err != nil {
		logger.Error().Err(err).Str("interacao_id", rec.InteractionID).Msg("failed to record followup response")
		return err
	}

	logger.Info().Str("interacao_id", rec.InteractionID).Msg("followup response recorded")
	return nil
}

// PendingFollowups lists interactions past the delay threshold that
// have no response yet.
func (c *SupabaseClient) PendingFollowups(ctx context.Context) ([]pkg.PendingFollowup, error) {
	cutoff := time.Now().UTC().Add(-c.delay).Format(time.RFC3339)
	query := url.Values{
		"select":            {"id,chat_id"},
		"data_hora_contato": {"lt." + cutoff},
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, followupView, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID     json.Number `json:"id"`
		ChatID int64       `json:"chat_id"`
	}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unexpected followup query response: %w", err)
	}

	pending := make([]pkg.PendingFollowup, 0, len(rows))
	for _, row := range rows {
		pending = append(pending, pkg.PendingFollowup{
			ChatID:        row.ChatID,
			InteractionID: row.ID.String(),
		})
	}
	return pending, nil
}

func (c *SupabaseClient) post(ctx context.Context, table string, record any) ([]byte, error) {
	payload, err := sonic.Marshal(record)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	return c.do(req)
}

func (c *SupabaseClient) do(req *http.Request) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("supabase returned %d: %s", res.StatusCode, body)
	}
	return body, nil
}

func (c *SupabaseClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
