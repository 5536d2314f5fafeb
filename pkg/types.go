package pkg

import (
	"strconv"
	"time"
)

// Shared domain types for the point-of-sale locator bot.

// ChannelTelegram labels the transport every session originates from.
const ChannelTelegram = "telegram"

// OriginLocator labels the campaign that produced the session.
const OriginLocator = "localizador_pdv"

// IncomingMessage is one inbound update, already flattened from the
// transport's own update shape.
type IncomingMessage struct {
	ChatID   int64  `json:"chat_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
	// Contact carries the phone number of a shared contact card,
	// empty for plain text messages.
	Contact string `json:"contact,omitempty"`
}

// ClientID derives the persisted client identifier: username when the
// account has one, otherwise the numeric user id.
func (m IncomingMessage) ClientID() string {
	if m.Username != "" {
		return m.Username
	}
	return strconv.FormatInt(m.UserID, 10)
}

// Keyboard is a finite single-select reply keyboard: one-time use,
// auto-resizing, options laid out in rows.
type Keyboard struct {
	Rows    [][]string `json:"rows"`
	OneTime bool       `json:"one_time"`
	Resize  bool       `json:"resize"`
}

// Reply is one outbound message with an optional keyboard.
type Reply struct {
	Text     string    `json:"text"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
	Markdown bool      `json:"markdown,omitempty"`
}

// Session is the ephemeral working state of one locate-product
// conversation. It lives only until the terminal step, when it is
// flattened into an Interaction.
type Session struct {
	ClientID      string
	ChatID        int64
	Phone         string
	Channel       string
	Origin        string
	ContactTime   time.Time
	ProductFamily string
	SKU           string
	Neighborhood  string
	PointsOfSale  []string
}

// Interaction is the durable record of one completed session. Field
// names follow the interacoes_clientes table.
type Interaction struct {
	ID            string    `json:"id,omitempty"`
	ClientID      string    `json:"cliente_id"`
	ChatID        int64     `json:"chat_id"`
	Phone         string    `json:"telefone"`
	ProductFamily string    `json:"familia_produto"`
	SKU           string    `json:"sku"`
	Neighborhood  string    `json:"bairro"`
	PointsOfSale  []string  `json:"pontos_venda_retorno"`
	ContactTime   time.Time `json:"data_hora_contato"`
}

// InteractionFromSession flattens a finished session into its durable
// record.
func InteractionFromSession(s Session) Interaction {
	return Interaction{
		ClientID:      s.ClientID,
		ChatID:        s.ChatID,
		Phone:         s.Phone,
		ProductFamily: s.ProductFamily,
		SKU:           s.SKU,
		Neighborhood:  s.Neighborhood,
		PointsOfSale:  s.PointsOfSale,
		ContactTime:   s.ContactTime,
	}
}

// PendingFollowup links a recipient awaiting the satisfaction survey to
// the interaction it asks about.
type PendingFollowup struct {
	ChatID        int64  `json:"chat_id"`
	InteractionID string `json:"id"`
}

// FollowupResponse is the persisted survey answer. Exactly one of
// Rating/Reason is set, matching the branch the user took. Field names
// follow the respostas_retorno table.
type FollowupResponse struct {
	InteractionID string    `json:"interacao_id"`
	FoundProduct  bool      `json:"encontrou_produto"`
	Rating        *int      `json:"nota_produto"`
	Reason        *string   `json:"motivo_nao_encontrou"`
	ResponseTime  time.Time `json:"data_resposta"`
}
