package telegram

import (
	"strings"

	"github.com/eoscafes/estoque-bot/internal/application/flow"
)

// ParseCallback traduz o payload de um botão inline no evento da máquina.
// O esquema de payloads está documentado em flow/menus.go.
func ParseCallback(data string) (flow.Event, bool) {
	prefix, rest, _ := strings.Cut(data, ":")

	switch prefix {
	case "menu":
		if rest == "" {
			return flow.Event{}, false
		}
		return flow.Event{Kind: flow.EventCommand, Value: rest}, true
	case "categoria":
		return flow.Event{Kind: flow.EventCategory, Value: rest}, rest != ""
	case "produto":
		return flow.Event{Kind: flow.EventProduct, Value: rest}, rest != ""
	case "quantidade":
		return flow.Event{Kind: flow.EventQuantity, Value: rest}, rest != ""
	case "brinde":
		return flow.Event{Kind: flow.EventGift, Value: rest}, rest != ""
	case "confirmar":
		return flow.Event{Kind: flow.EventConfirm}, true
	case "cancelar":
		return flow.Event{Kind: flow.EventCancel}, true
	case "voltar":
		return flow.Event{Kind: flow.EventBack, Value: rest}, rest != ""
	case "ia":
		return flow.Event{Kind: flow.EventAIAction, Value: rest}, rest != ""
	}
	return flow.Event{}, false
}

// ParseCommand traduz um comando /cmd no evento correspondente.
func ParseCommand(command string) (flow.Event, bool) {
	switch command {
	case "start", "menu":
		return flow.Event{Kind: flow.EventCommand, Value: "start"}, true
	case "entrada", "saida", "estoque", "historico", "iacafe":
		return flow.Event{Kind: flow.EventCommand, Value: command}, true
	case "cancelar":
		return flow.Event{Kind: flow.EventCancel}, true
	}
	return flow.Event{}, false
}
