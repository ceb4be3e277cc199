package flow

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/eoscafes/estoque-bot/internal/application/dto"
	"github.com/eoscafes/estoque-bot/internal/domain/catalog"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents remove diacríticos para comparação de nomes (grãos → graos).
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return strings.ToLower(out)
}

// productIcon escolhe o ícone pelo nome do produto.
func productIcon(name string) string {
	folded := foldAccents(name)
	switch {
	case strings.Contains(folded, "verde"):
		return "🌱"
	case strings.Contains(folded, "graos"):
		return "🫘"
	case strings.Contains(folded, "embalagem"):
		return "📦"
	default:
		return "☕"
	}
}

// stockBar desenha a barra de 10 posições proporcional ao maior saldo
// da listagem.
func stockBar(quantity, maxQuantity decimal.Decimal) string {
	filled := 0
	if maxQuantity.IsPositive() {
		ratio := quantity.Div(maxQuantity)
		if ratio.GreaterThan(decimal.NewFromInt(1)) {
			ratio = decimal.NewFromInt(1)
		}
		if ratio.IsNegative() {
			ratio = decimal.Zero
		}
		filled = int(ratio.Mul(decimal.NewFromInt(10)).Round(0).IntPart())
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func stockStatusIcon(quantity, maxQuantity decimal.Decimal) string {
	if !quantity.IsPositive() {
		return "🔴"
	}
	if !maxQuantity.IsPositive() {
		return "🔴"
	}
	ratio := quantity.Div(maxQuantity)
	switch {
	case ratio.GreaterThanOrEqual(decimal.RequireFromString("0.7")):
		return "🟢"
	case ratio.GreaterThanOrEqual(decimal.RequireFromString("0.35")):
		return "🟡"
	default:
		return "🔴"
	}
}

func greetingText() string {
	return "👋 Olá! Sou o assistente de estoque da *Eos Cafés Especiais*.\n" +
		"Escolha uma opção abaixo para começar."
}

func renderStock(products []entity.Product) string {
	if len(products) == 0 {
		return "📦 *Estoque*\n\nNenhum produto cadastrado ainda."
	}

	var b strings.Builder
	b.WriteString("📦 *Estoque atual*\n")

	totalItems := decimal.Zero
	totalValue := decimal.Zero

	maxQuantity := decimal.Zero
	for _, p := range products {
		if p.Quantity.GreaterThan(maxQuantity) {
			maxQuantity = p.Quantity
		}
	}

	for _, c := range entity.AllCategories() {
		var lines []string
		for _, p := range products {
			if p.Category != c {
				continue
			}
			warn := ""
			if !p.Available() {
				warn = " ⚠️ esgotado"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s [%s] *%s %s*%s",
				productIcon(p.Name), p.Name,
				stockStatusIcon(p.Quantity, maxQuantity), stockBar(p.Quantity, maxQuantity),
				dto.FormatQuantity(p.Quantity), p.Unit, warn))
			totalItems = totalItems.Add(p.Quantity)
			totalValue = totalValue.Add(p.TotalValue())
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s *%s*\n", catalog.Icon(c), c.Label()))
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\nΣ %s itens · %s estimados",
		dto.FormatQuantity(totalItems), dto.FormatBRL(totalValue)))
	return b.String()
}

func renderHistory(views []entity.MovementView) string {
	if len(views) == 0 {
		return "📊 *Histórico*\n\nNenhuma movimentação registrada ainda."
	}

	var b strings.Builder
	b.WriteString("📊 *Últimas movimentações*\n\n")
	for _, v := range views {
		icon := "🟢"
		switch v.Type() {
		case "saida":
			icon = "🔴"
		case "brinde":
			icon = "🎁"
		}
		b.WriteString(fmt.Sprintf("%s %s · %s %s de %s (%s)\n",
			icon, v.CreatedAt.Format("02/01 15:04"),
			dto.FormatQuantity(v.Quantity), v.ProductUnit,
			v.ProductName, v.Type()))
	}
	return b.String()
}

func renderConfirmation(s *Session) string {
	action := "Entrada"
	icon := "☕"
	if s.Direction == entity.DirectionOut {
		action = "Saída"
		icon = "🚚"
	}
	if s.IsGift {
		action = "Brinde (saída)"
		icon = "🎁"
	}
	return fmt.Sprintf("%s *%s*\n\nProduto: %s\nQuantidade: %s %s\n\nConfirmar?",
		icon, action, s.ProductName, dto.FormatQuantity(s.Quantity), s.ProductUnit)
}

func renderSuccess(s *Session, newQuantity string) string {
	verb := "adicionadas ao"
	if s.Direction == entity.DirectionOut {
		verb = "retiradas do"
	}
	gift := ""
	if s.IsGift {
		gift = " 🎁 (brinde)"
	}
	return fmt.Sprintf("✅ %s %s de *%s* %s estoque%s.\nSaldo atual: %s %s.",
		dto.FormatQuantity(s.Quantity), s.ProductUnit, s.ProductName, verb, gift,
		newQuantity, s.ProductUnit)
}

func aiPanelText() string {
	return "🤖 *IA Café*\n\nMe envie uma pergunta sobre o estoque ou escolha um atalho abaixo.\nRespondo uma pergunta por vez."
}

const aiFallbackText = "🤖 O assistente está indisponível no momento. Tente novamente em instantes."
