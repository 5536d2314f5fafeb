package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"localizador_bot/internal/catalog"
	"localizador_bot/internal/logger"
	"localizador_bot/internal/store"
	"localizador_bot/pkg"
)

// Sender delivers one outbound reply to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, reply pkg.Reply) error
}

// Handler is one active conversation. Handle consumes an inbound
// message and reports whether the conversation reached a terminal
// state. Failures never propagate; they degrade to logged messages.
type Handler interface {
	Handle(ctx context.Context, msg pkg.IncomingMessage) (done bool)
}

type locatorState int

const (
	awaitPhone locatorState = iota
	awaitFamily
	awaitSKU
	awaitNeighborhood
)

// LocatorConversation walks one user through the ordered
// data-collection steps and persists the resulting interaction.
type LocatorConversation struct {
	state   locatorState
	session pkg.Session
	// offered is the exact option set last presented; the next reply
	// must be one of these.
	offered []string

	catalog catalog.Lookup
	store   store.Store
	sender  Sender
}

// StartLocator opens a session for the sender of msg and asks for the
// phone number.
func StartLocator(ctx context.Context, cat catalog.Lookup, st store.Store, sender Sender, msg pkg.IncomingMessage) *LocatorConversation {
	c := &LocatorConversation{
		state: awaitPhone,
		session: pkg.Session{
			ClientID: msg.ClientID(),
			ChatID:   msg.ChatID,
			Channel:  pkg.ChannelTelegram,
			Origin:   pkg.OriginLocator,
		},
		catalog: cat,
		store:   st,
		sender:  sender,
	}
	c.reply(ctx, pkg.Reply{Text: msgAskPhone})
	return c
}

// Handle advances the session by one step.
func (c *LocatorConversation) Handle(ctx context.Context, msg pkg.IncomingMessage) bool {
	switch c.state {
	case awaitPhone:
		return c.handlePhone(ctx, msg)
	case awaitFamily:
		return c.handleFamily(ctx, msg)
	case awaitSKU:
		return c.handleSKU(ctx, msg)
	case awaitNeighborhood:
		return c.handleNeighborhood(ctx, msg)
	}
	return true
}

func (c *LocatorConversation) handlePhone(ctx context.Context, msg pkg.IncomingMessage) bool {
	raw := msg.Contact
	if raw == "" {
		raw = msg.Text
	}

	phone, ok := NormalizePhone(raw)
	if !ok {
		c.reply(ctx, pkg.Reply{Text: msgInvalidPhone})
		return false
	}

	c.session.Phone = phone
	c.session.ContactTime = time.Now().UTC()

	c.offered = c.catalog.ActiveFamilies()
	c.state = awaitFamily
	c.reply(ctx, pkg.Reply{Text: msgAskFamily, Keyboard: OptionsKeyboard(c.offered)})
	return false
}

func (c *LocatorConversation) handleFamily(ctx context.Context, msg pkg.IncomingMessage) bool {
	family, ok := c.chosen(msg.Text)
	if !ok {
		c.reply(ctx, pkg.Reply{Text: msgInvalidOption, Keyboard: OptionsKeyboard(c.offered)})
		return false
	}

	skus := c.catalog.SKUsForFamily(family)
	if len(skus) == 0 {
		c.reply(ctx, pkg.Reply{Text: msgNoSKUs, Keyboard: OptionsKeyboard(c.offered)})
		return false
	}

	c.session.ProductFamily = family
	c.offered = skus
	c.state = awaitSKU
	c.reply(ctx, pkg.Reply{Text: msgAskSKU, Keyboard: OptionsKeyboard(skus)})
	return false
}

func (c *LocatorConversation) handleSKU(ctx context.Context, msg pkg.IncomingMessage) bool {
	sku, ok := c.chosen(msg.Text)
	if !ok {
		c.reply(ctx, pkg.Reply{Text: msgInvalidOption, Keyboard: OptionsKeyboard(c.offered)})
		return false
	}

	bairros := c.catalog.NeighborhoodsForSKU(sku)
	if len(bairros) == 0 {
		c.reply(ctx, pkg.Reply{Text: msgNoBairros, Keyboard: OptionsKeyboard(c.offered)})
		return false
	}

	c.session.SKU = sku
	c.offered = bairros
	c.state = awaitNeighborhood
	c.reply(ctx, pkg.Reply{Text: msgAskBairro, Keyboard: OptionsKeyboard(bairros)})
	return false
}

func (c *LocatorConversation) handleNeighborhood(ctx context.Context, msg pkg.IncomingMessage) bool {
	bairro, ok := c.chosen(msg.Text)
	if !ok {
		c.reply(ctx, pkg.Reply{Text: msgInvalidOption, Keyboard: OptionsKeyboard(c.offered)})
		return false
	}

	c.session.Neighborhood = bairro
	c.session.PointsOfSale = c.catalog.PointsOfSale(c.session.SKU, bairro)

	c.reply(ctx, pkg.Reply{Text: resultsText(bairro, c.session.PointsOfSale), Markdown: true})

	// Recording is synchronous and soft: a failure informs the user
	// once and the conversation still ends. The follow-up eligibility
	// query never sees an unrecorded interaction, so no survey is
	// scheduled for it.
	if _, err := c.store.RecordInteraction(ctx, pkg.InteractionFromSession(c.session)); err != nil {
		c.reply(ctx, pkg.Reply{Text: msgStoreFailed})
	}

	return true
}

// chosen validates a reply against the option set last offered.
func (c *LocatorConversation) chosen(text string) (string, bool) {
	choice := strings.TrimSpace(text)
	for _, option := range c.offered {
		if option == choice {
			return choice, true
		}
	}
	return "", false
}

func resultsText(bairro string, points []string) string {
	list := msgNoPDVs
	if len(points) > 0 {
		var b strings.Builder
		for i, p := range points {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("✅ " + p)
		}
		list = b.String()
	}

	return fmt.Sprintf(
		"Encontramos os seguintes pontos de venda no bairro *%s*:\n\n%s\n\nObrigado por utilizar nosso localizador! 😊",
		bairro, list,
	)
}

func (c *LocatorConversation) reply(ctx context.Context, reply pkg.Reply) {
	if err := c.sender.Send(ctx, c.session.ChatID, reply); err != nil {
		logger.Error().Err(err).Int64("chat_id", c.session.ChatID).Msg("failed to send reply")
	}
}
