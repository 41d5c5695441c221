package bot

import (
	"context"
	"fmt"

	"album-bot/config"
	"album-bot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback data for the inline keyboards.
const (
	actionAbout          = "menu:about"
	actionBuy            = "menu:buy"
	actionRegionDomestic = "region:et"
	actionRegionAbroad   = "region:intl"
	actionBack           = "nav:back"
)

// Sender is the slice of the Telegram Bot API the state machine needs.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// PurchaseInitiator is implemented by usecase.PurchaseUsecase.
type PurchaseInitiator interface {
	InitiatePurchase(ctx context.Context, buyer domain.Buyer) (string, error)
}

// Machine drives buyers through the fixed purchase conversation:
// main menu -> region choice -> checkout link, with back/cancel escapes.
//
// Sessions live only in the map below. The map is touched exclusively from
// the dispatcher goroutine, so no locking is needed.
type Machine struct {
	tg        Sender
	purchases PurchaseInitiator
	product   config.ProductConfig
	sessions  map[int64]*domain.BuyerSession
	logger    *zap.Logger
}

func NewMachine(tg Sender, purchases PurchaseInitiator, product config.ProductConfig, logger *zap.Logger) *Machine {
	return &Machine{
		tg:        tg,
		purchases: purchases,
		product:   product,
		sessions:  make(map[int64]*domain.BuyerSession),
		logger:    logger,
	}
}

// HandleUpdate processes one buyer action. Actions that match no transition
// for the current state are ignored: no state change, no reply, never an
// error that could take the session down.
func (m *Machine) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		m.handleCommand(update.Message)
	case update.CallbackQuery != nil:
		m.handleCallback(ctx, update.CallbackQuery)
	}
}

func (m *Machine) handleCommand(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	switch msg.Command() {
	case "start":
		m.startSession(msg)
	case "cancel":
		m.cancelSession(msg)
	}
}

// startSession always builds a fresh session; whatever the buyer was doing
// before is discarded so no prior state leaks into the new conversation.
func (m *Machine) startSession(msg *tgbotapi.Message) {
	session := &domain.BuyerSession{
		BuyerID:   msg.From.ID,
		ChatID:    msg.Chat.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		State:     domain.StateMainMenu,
	}
	m.sessions[msg.From.ID] = session

	m.logger.Info("session started", zap.Int64("buyer_id", session.BuyerID))

	greeting := fmt.Sprintf("Selam %s! Welcome.\n\nWhat would you like to do?", session.FirstName)
	reply := tgbotapi.NewMessage(session.ChatID, greeting)
	reply.ReplyMarkup = mainMenuKeyboard()
	m.send(reply)
}

func (m *Machine) cancelSession(msg *tgbotapi.Message) {
	if _, ok := m.sessions[msg.From.ID]; !ok {
		return
	}
	delete(m.sessions, msg.From.ID)
	m.logger.Info("session cancelled", zap.Int64("buyer_id", msg.From.ID))
	m.send(tgbotapi.NewMessage(msg.Chat.ID, "Cancelled. Send /start to begin again."))
}

func (m *Machine) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Clear the button spinner whether or not the press matches anything.
	if _, err := m.tg.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		m.logger.Debug("failed to answer callback query", zap.Error(err))
	}

	if q.From == nil || q.Message == nil {
		return
	}
	session, ok := m.sessions[q.From.ID]
	if !ok {
		// Stale button from a finished session. A fresh /start is required.
		return
	}

	switch session.State {
	case domain.StateMainMenu:
		m.handleMainMenu(session, q)
	case domain.StateRegionChoice:
		m.handleRegionChoice(ctx, session, q)
	}
}

func (m *Machine) handleMainMenu(session *domain.BuyerSession, q *tgbotapi.CallbackQuery) {
	switch q.Data {
	case actionAbout:
		text := fmt.Sprintf("%s\n\n%s\n\nPrice: %s %s.",
			m.product.Title, m.product.Description, m.product.Price, m.product.Currency)
		m.edit(session, q, text, backKeyboard())
	case actionBuy:
		session.State = domain.StateRegionChoice
		m.edit(session, q, "Where are you paying from?", regionKeyboard())
	case actionBack:
		m.edit(session, q, "What would you like to do?", mainMenuKeyboard())
	}
}

func (m *Machine) handleRegionChoice(ctx context.Context, session *domain.BuyerSession, q *tgbotapi.CallbackQuery) {
	switch q.Data {
	case actionRegionDomestic:
		m.completePurchase(ctx, session, q)
	case actionRegionAbroad:
		// Terminal by policy: international checkout is not offered yet.
		m.edit(session, q, "International payments are not available yet. We are working on it!", tgbotapi.InlineKeyboardMarkup{})
		m.teardown(session)
	case actionBack:
		session.State = domain.StateMainMenu
		m.edit(session, q, "What would you like to do?", mainMenuKeyboard())
	}
}

// completePurchase is the terminal transition: one gateway call, then the
// checkout link or an apology, then session teardown either way.
func (m *Machine) completePurchase(ctx context.Context, session *domain.BuyerSession, q *tgbotapi.CallbackQuery) {
	waitText := fmt.Sprintf("The album costs %s %s.\n\nPreparing your payment link, one moment...",
		m.product.Price, m.product.Currency)
	m.edit(session, q, waitText, tgbotapi.InlineKeyboardMarkup{})

	checkoutURL, err := m.purchases.InitiatePurchase(ctx, domain.Buyer{
		ID:        session.BuyerID,
		FirstName: session.FirstName,
		LastName:  session.LastName,
	})
	if err != nil {
		m.send(tgbotapi.NewMessage(session.ChatID,
			"Sorry, we could not prepare a payment link right now. Please try again later."))
		m.teardown(session)
		return
	}

	text := fmt.Sprintf(
		"Use this link to complete your payment:\n\n%s\n\n"+
			"Once your payment is confirmed we will send you an invite to the album channel.",
		checkoutURL,
	)
	m.send(tgbotapi.NewMessage(session.ChatID, text))
	m.teardown(session)
}

func (m *Machine) teardown(session *domain.BuyerSession) {
	delete(m.sessions, session.BuyerID)
	m.logger.Info("session finished", zap.Int64("buyer_id", session.BuyerID))
}

func (m *Machine) send(c tgbotapi.Chattable) {
	if _, err := m.tg.Send(c); err != nil {
		m.logger.Error("failed to send message", zap.Error(err))
	}
}

// edit rewrites the menu message in place, since the triggering action was a
// button press rather than a fresh command.
func (m *Machine) edit(session *domain.BuyerSession, q *tgbotapi.CallbackQuery, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if len(markup.InlineKeyboard) == 0 {
		edit := tgbotapi.NewEditMessageText(session.ChatID, q.Message.MessageID, text)
		if _, err := m.tg.Send(edit); err != nil {
			m.logger.Error("failed to edit message", zap.Error(err))
		}
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(session.ChatID, q.Message.MessageID, text, markup)
	if _, err := m.tg.Send(edit); err != nil {
		m.logger.Error("failed to edit message", zap.Error(err))
	}
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ About the album", actionAbout),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Buy the album", actionBuy),
		),
	)
}

func regionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇪🇹 Inside Ethiopia", actionRegionDomestic),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Outside Ethiopia", actionRegionAbroad),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", actionBack),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", actionBack),
		),
	)
}
