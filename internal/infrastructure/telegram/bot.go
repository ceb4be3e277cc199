// Package telegram liga a máquina de conversa à API do Telegram via
// long polling.
package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/eoscafes/estoque-bot/internal/application/flow"
)

// Bot consome updates do Telegram e renderiza as respostas da máquina.
type Bot struct {
	api     *tgbotapi.BotAPI
	machine *flow.Machine
	log     zerolog.Logger

	mu        sync.Mutex
	lastMenus map[int64]int // última mensagem de menu por chat, para editar no lugar
}

// NewBot autentica no Telegram e cria o adaptador.
func NewBot(token string, machine *flow.Machine, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:       api,
		machine:   machine,
		log:       log,
		lastMenus: make(map[int64]int),
	}, nil
}

// Run consome updates até o contexto ser cancelado. Cada update é tratado
// em sua própria goroutine para uma resposta lenta da IA não travar os
// demais chats; updates do mesmo chat são serializados pelo lock da
// sessão na máquina.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info().Str("bot", b.api.Self.UserName).Msg("bot conectado")

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Responde o callback logo para o Telegram parar o spinner do botão.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("responder callback")
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	event, ok := ParseCallback(query.Data)
	if !ok {
		b.log.Warn().Str("data", query.Data).Msg("callback desconhecido")
		return
	}

	reply, err := b.machine.Handle(ctx, chatID, event)
	if err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("processar callback")
	}
	b.send(chatID, reply)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	var (
		event flow.Event
		ok    bool
	)
	if msg.IsCommand() {
		event, ok = ParseCommand(msg.Command())
		if !ok {
			event = flow.Event{Kind: flow.EventCommand, Value: "start"}
		}
	} else if msg.Text != "" {
		event = flow.Event{Kind: flow.EventText, Value: msg.Text}
	} else {
		return
	}

	reply, err := b.machine.Handle(ctx, chatID, event)
	if err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("processar mensagem")
	}
	b.send(chatID, reply)
}

// send renderiza a resposta: edita a última mensagem de menu quando a
// máquina pediu e há uma para editar, senão envia uma mensagem nova.
func (b *Bot) send(chatID int64, reply flow.Reply) {
	if reply.Text == "" {
		return
	}
	markup := toInlineKeyboard(reply.Keyboard)

	if reply.Edit {
		if messageID, ok := b.lastMenu(chatID); ok {
			edit := tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)
			edit.ParseMode = tgbotapi.ModeMarkdown
			edit.ReplyMarkup = markup
			if _, err := b.api.Send(edit); err == nil {
				return
			}
			// Falhou a edição (mensagem antiga demais); cai para envio novo.
		}
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("enviar mensagem")
		return
	}
	if markup != nil {
		b.rememberMenu(chatID, sent.MessageID)
	}
}

func (b *Bot) lastMenu(chatID int64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.lastMenus[chatID]
	return id, ok
}

func (b *Bot) rememberMenu(chatID int64, messageID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastMenus[chatID] = messageID
}

// toInlineKeyboard converte o teclado neutro da máquina para o formato
// do Telegram. Nil quando não há botões.
func toInlineKeyboard(rows [][]flow.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		keyboard = append(keyboard, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	return &markup
}
