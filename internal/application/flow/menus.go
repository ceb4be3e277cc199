package flow

import (
	"fmt"

	"github.com/eoscafes/estoque-bot/internal/domain/catalog"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// Payloads de callback compartilhados com o adaptador de transporte:
//
//	menu:<home|entrada|saida|estoque|historico|iacafe>
//	categoria:<direcao>:<categoria>
//	produto:<direcao>:<id>
//	quantidade:<direcao>:<n|custom>
//	brinde:<sim|nao>
//	confirmar | cancelar
//	voltar:<categorias|produtos>
//	ia:<sugestoes|relatorios|resumo>

func mainMenuKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "☕ Entrada", Data: "menu:entrada"},
			{Label: "🚚 Saída", Data: "menu:saida"},
		},
		{
			{Label: "📦 Estoque", Data: "menu:estoque"},
			{Label: "📊 Histórico", Data: "menu:historico"},
		},
		{
			{Label: "🤖 IA Café", Data: "menu:iacafe"},
		},
	}
}

func categoriesKeyboard(direction entity.Direction) [][]Button {
	var row []Button
	var rows [][]Button
	for _, c := range catalog.Categories(direction) {
		row = append(row, Button{
			Label: fmt.Sprintf("%s %s", catalog.Icon(c), c.Label()),
			Data:  fmt.Sprintf("categoria:%s:%s", direction, c),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: "🏠 Menu principal", Data: "menu:home"}})
	return rows
}

func productsKeyboard(direction entity.Direction, category entity.Category, products []entity.Product) [][]Button {
	var rows [][]Button
	var row []Button
	for _, p := range products {
		row = append(row, Button{
			Label: fmt.Sprintf("%s %s", catalog.Icon(category), p.Name),
			Data:  fmt.Sprintf("produto:%s:%s", direction, p.ID),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{
		{Label: "🔙 Categorias", Data: "voltar:categorias"},
		{Label: "🏠 Menu principal", Data: "menu:home"},
	})
	return rows
}

func quantityKeyboard(direction entity.Direction) [][]Button {
	icon := "➕"
	if direction == entity.DirectionOut {
		icon = "➖"
	}
	quick := catalog.QuickQuantities()
	var rows [][]Button
	var row []Button
	for _, q := range quick {
		row = append(row, Button{
			Label: fmt.Sprintf("%s%d", icon, q),
			Data:  fmt.Sprintf("quantidade:%s:%d", direction, q),
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	rows = append(rows,
		[]Button{{Label: "✏️ Inserir valor manualmente", Data: fmt.Sprintf("quantidade:%s:custom", direction)}},
		[]Button{
			{Label: "🔙 Trocar produto", Data: "voltar:produtos"},
			{Label: "🏠 Menu principal", Data: "menu:home"},
		},
	)
	return rows
}

func giftKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "🎁 Sim, é brinde", Data: "brinde:sim"},
			{Label: "💰 Não, é venda", Data: "brinde:nao"},
		},
		{{Label: "🏠 Menu principal", Data: "menu:home"}},
	}
}

func confirmKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "✅ Confirmar", Data: "confirmar"},
			{Label: "❌ Cancelar", Data: "cancelar"},
		},
	}
}

func afterCommitKeyboard(direction entity.Direction) [][]Button {
	return [][]Button{
		{
			{Label: "📦 Ver estoque", Data: "menu:estoque"},
			{Label: "📊 Ver histórico", Data: "menu:historico"},
		},
		{{Label: "➕ Nova movimentação", Data: fmt.Sprintf("menu:%s", direction)}},
		{{Label: "🏠 Menu principal", Data: "menu:home"}},
	}
}

func stockKeyboard() [][]Button {
	return [][]Button{
		{{Label: "🔄 Atualizar", Data: "menu:estoque"}},
		{{Label: "🏠 Menu principal", Data: "menu:home"}},
	}
}

func historyKeyboard() [][]Button {
	return [][]Button{
		{{Label: "🔄 Atualizar", Data: "menu:historico"}},
		{{Label: "🏠 Menu principal", Data: "menu:home"}},
	}
}

func aiPanelKeyboard() [][]Button {
	return [][]Button{
		{{Label: "💡 Sugestões automáticas", Data: "ia:sugestoes"}},
		{{Label: "📈 Relatório rápido", Data: "ia:relatorios"}},
		{{Label: "🧾 Resumo semanal", Data: "ia:resumo"}},
		{{Label: "🏠 Menu principal", Data: "menu:home"}},
	}
}
