package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/application/dto"
	"github.com/eoscafes/estoque-bot/internal/application/inventory"
	"github.com/eoscafes/estoque-bot/internal/application/ports"
	"github.com/eoscafes/estoque-bot/internal/domain"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
	"github.com/eoscafes/estoque-bot/internal/domain/repository"
)

const (
	historyLimit = 10
	aiTimeout    = 10 * time.Second
)

// Machine traduz eventos do usuário em transições de sessão e respostas.
// As transições seguem:
//
//	Idle → SelectingCategory → SelectingProduct → SelectingQuantity
//	     → ConfirmingGift (só saída) → Confirming → Idle
//
// mais o desvio AskingAI, que aceita uma pergunta e volta a Idle.
type Machine struct {
	store     *Store
	products  repository.ProductRepository
	movements repository.MovementRepository
	record    *inventory.RecordMovementUseCase
	llm       ports.LLMService
	log       zerolog.Logger
}

// NewMachine liga a máquina aos seus colaboradores.
func NewMachine(
	store *Store,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	record *inventory.RecordMovementUseCase,
	llm ports.LLMService,
	log zerolog.Logger,
) *Machine {
	return &Machine{
		store:     store,
		products:  products,
		movements: movements,
		record:    record,
		llm:       llm,
		log:       log,
	}
}

// Handle processa um evento do chat e devolve a resposta a renderizar.
// O lock da sessão fica preso durante toda a transição: um toque duplo
// em confirmar vira um commit e um no-op, nunca dois commits.
// Falhas de armazenamento viram uma resposta "tente novamente" e também
// são devolvidas como erro para o transporte logar.
func (m *Machine) Handle(ctx context.Context, chatID int64, ev Event) (Reply, error) {
	s := m.store.Get(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case EventCommand:
		return m.handleCommand(ctx, s, ev.Value)
	case EventCancel:
		s.ResetFlow()
		return Reply{Text: "❌ Operação cancelada.", Keyboard: mainMenuKeyboard(), Edit: true}, nil
	case EventCategory:
		return m.handleCategory(ctx, s, ev.Value)
	case EventProduct:
		return m.handleProduct(ctx, s, ev.Value)
	case EventQuantity:
		return m.handleQuantity(s, ev.Value)
	case EventGift:
		return m.handleGift(s, ev.Value)
	case EventConfirm:
		return m.handleConfirm(ctx, s)
	case EventBack:
		return m.handleBack(ctx, s, ev.Value)
	case EventAIAction:
		return m.handleAIAction(ctx, s, ev.Value)
	case EventText:
		return m.handleText(ctx, s, ev.Value)
	}

	return m.mainMenu("Use os botões abaixo 👇"), nil
}

func (m *Machine) mainMenu(text string) Reply {
	return Reply{Text: text, Keyboard: mainMenuKeyboard(), Edit: true}
}

func (m *Machine) handleCommand(ctx context.Context, s *Session, cmd string) (Reply, error) {
	switch cmd {
	case "start", "home":
		s.ResetFlow()
		return m.mainMenu(greetingText()), nil

	case "entrada", "saida":
		direction, _ := entity.ParseDirection(cmd)
		s.ResetFlow()
		s.Direction = direction
		s.State = StateSelectingCategory
		title := "☕ *Entrada de estoque*\nDe qual categoria?"
		if direction == entity.DirectionOut {
			title = "🚚 *Saída de estoque*\nDe qual categoria?"
		}
		return Reply{Text: title, Keyboard: categoriesKeyboard(direction), Edit: true}, nil

	case "estoque":
		s.ResetFlow()
		products, err := m.products.Overview(ctx)
		if err != nil {
			return m.storageFailure(err, "consultar estoque")
		}
		return Reply{Text: renderStock(products), Keyboard: stockKeyboard(), Edit: true}, nil

	case "historico":
		s.ResetFlow()
		views, err := m.movements.ListRecent(ctx, historyLimit, nil)
		if err != nil {
			return m.storageFailure(err, "consultar histórico")
		}
		return Reply{Text: renderHistory(views), Keyboard: historyKeyboard(), Edit: true}, nil

	case "iacafe":
		s.ResetFlow()
		s.State = StateAskingAI
		return Reply{Text: aiPanelText(), Keyboard: aiPanelKeyboard(), Edit: true}, nil
	}

	return m.mainMenu("Não entendi. Escolha uma opção 👇"), nil
}

func (m *Machine) handleCategory(ctx context.Context, s *Session, value string) (Reply, error) {
	dirRaw, catRaw, ok := strings.Cut(value, ":")
	if !ok {
		return m.mainMenu("Não entendi. Escolha uma opção 👇"), nil
	}
	direction, okDir := entity.ParseDirection(dirRaw)
	category, okCat := entity.ParseCategory(catRaw)
	if !okDir || !okCat {
		return m.mainMenu("Não entendi. Escolha uma opção 👇"), nil
	}

	// Botões antigos podem chegar com a sessão já em outro ponto;
	// recomeçamos o fluxo a partir da direção do botão.
	s.ResetFlow()
	s.Direction = direction
	s.Category = category
	s.State = StateSelectingProduct

	// A categoria Brindes é um atalho de saída de cafés com is_gift
	// pré-marcado; a pergunta de brinde é pulada.
	listCategory := category
	if category == entity.CategoryBrindes {
		s.GiftPreset = true
		s.IsGift = true
		listCategory = entity.CategoryCafes
	}

	var (
		products []entity.Product
		err      error
	)
	if direction == entity.DirectionOut {
		products, err = m.products.ListAvailableByCategory(ctx, listCategory)
	} else {
		products, err = m.products.ListByCategory(ctx, listCategory)
	}
	if err != nil {
		return m.storageFailure(err, "listar produtos")
	}
	if len(products) == 0 {
		s.State = StateSelectingCategory
		return Reply{
			Text:     fmt.Sprintf("😕 Nenhum produto disponível em *%s* agora.", category.Label()),
			Keyboard: categoriesKeyboard(direction),
			Edit:     true,
		}, nil
	}

	return Reply{
		Text:     fmt.Sprintf("Qual produto de *%s*?", category.Label()),
		Keyboard: productsKeyboard(direction, listCategory, products),
		Edit:     true,
	}, nil
}

func (m *Machine) handleProduct(ctx context.Context, s *Session, value string) (Reply, error) {
	dirRaw, id, ok := strings.Cut(value, ":")
	if !ok {
		return m.mainMenu("Não entendi. Escolha uma opção 👇"), nil
	}
	direction, okDir := entity.ParseDirection(dirRaw)
	if !okDir || id == "" {
		return m.mainMenu("Não entendi. Escolha uma opção 👇"), nil
	}
	if s.State != StateSelectingProduct || s.Direction != direction {
		// Botão antigo; sem categoria na sessão não dá para listar de
		// novo, então voltamos ao menu.
		s.ResetFlow()
		return m.mainMenu("Esse menu expirou. Vamos do começo 👇"), nil
	}

	product, err := m.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return m.reloadProducts(ctx, s, "😕 Esse produto não existe mais. Escolha outro:")
		}
		return m.storageFailure(err, "buscar produto")
	}

	s.ProductID = product.ID
	s.ProductName = product.Name
	s.ProductUnit = product.Unit
	s.State = StateSelectingQuantity

	return Reply{
		Text: fmt.Sprintf("%s *%s*\nEstoque atual: %s %s\n\nQual a quantidade?",
			productIcon(product.Name), product.Name,
			dto.FormatQuantity(product.Quantity), product.Unit),
		Keyboard: quantityKeyboard(s.Direction),
		Edit:     true,
	}, nil
}

func (m *Machine) handleQuantity(s *Session, value string) (Reply, error) {
	_, token, ok := strings.Cut(value, ":")
	if !ok {
		token = value
	}
	if s.State != StateSelectingQuantity && s.State != StateAwaitingCustomQuantity {
		return m.mainMenu("Esse menu expirou. Vamos do começo 👇"), nil
	}

	if token == "custom" {
		s.State = StateAwaitingCustomQuantity
		return Reply{Text: "✏️ Digite a quantidade (ex.: 12 ou 2,5):"}, nil
	}

	qty, err := parseQuantity(token)
	if err != nil {
		return Reply{
			Text:     "⚠️ Quantidade inválida. Use os botões ou digite um número positivo.",
			Keyboard: quantityKeyboard(s.Direction),
			Edit:     true,
		}, nil
	}
	return m.advanceWithQuantity(s, qty), nil
}

func (m *Machine) advanceWithQuantity(s *Session, qty decimal.Decimal) Reply {
	s.Quantity = qty

	if s.Direction == entity.DirectionOut && !s.GiftPreset {
		s.State = StateConfirmingGift
		return Reply{
			Text:     fmt.Sprintf("🎁 Essa saída de *%s* é um brinde (degustação, cortesia)?", s.ProductName),
			Keyboard: giftKeyboard(),
			Edit:     true,
		}
	}

	s.State = StateConfirming
	return Reply{Text: renderConfirmation(s), Keyboard: confirmKeyboard(), Edit: true}
}

func (m *Machine) handleGift(s *Session, value string) (Reply, error) {
	if s.State != StateConfirmingGift {
		return m.mainMenu("Esse menu expirou. Vamos do começo 👇"), nil
	}
	switch value {
	case "sim":
		s.IsGift = true
	case "nao":
		s.IsGift = false
	default:
		return Reply{
			Text:     "Responda com os botões: é brinde?",
			Keyboard: giftKeyboard(),
			Edit:     true,
		}, nil
	}
	s.State = StateConfirming
	return Reply{Text: renderConfirmation(s), Keyboard: confirmKeyboard(), Edit: true}, nil
}

func (m *Machine) handleConfirm(ctx context.Context, s *Session) (Reply, error) {
	// Confirmação repetida depois de um commit: a sessão já voltou a
	// Idle, então é um no-op.
	if s.State != StateConfirming {
		return m.mainMenu("✅ Nada pendente para confirmar."), nil
	}

	in := inventory.RecordMovementInput{
		ProductID: s.ProductID,
		Direction: s.Direction,
		Quantity:  s.Quantity,
		IsGift:    s.IsGift,
		Note:      noteFor(s),
	}

	result, err := m.record.Execute(ctx, in)
	switch {
	case err == nil:
		text := renderSuccess(s, dto.FormatQuantity(result.Product.Quantity))
		keyboard := afterCommitKeyboard(s.Direction)
		s.ResetFlow()
		return Reply{Text: text, Keyboard: keyboard, Edit: true}, nil

	case errors.Is(err, domain.ErrInsufficientStock):
		s.ClearQuantity()
		return Reply{
			Text:     "⚠️ Estoque insuficiente para essa saída. Escolha outra quantidade:",
			Keyboard: quantityKeyboard(s.Direction),
			Edit:     true,
		}, nil

	case errors.Is(err, domain.ErrNotFound):
		s.ResetFlow()
		return m.mainMenu("😕 Esse produto não existe mais. Vamos do começo 👇"), nil

	default:
		// Mantém a sessão em Confirming para o usuário tentar de novo.
		return Reply{
			Text:     "⚠️ Não consegui registrar agora. Tente novamente.",
			Keyboard: confirmKeyboard(),
		}, err
	}
}

func (m *Machine) handleBack(ctx context.Context, s *Session, value string) (Reply, error) {
	if !s.InFlow() {
		return m.mainMenu("Use os botões abaixo 👇"), nil
	}
	switch value {
	case "categorias":
		direction := s.Direction
		s.ResetFlow()
		s.Direction = direction
		s.State = StateSelectingCategory
		return Reply{Text: "De qual categoria?", Keyboard: categoriesKeyboard(direction), Edit: true}, nil
	case "produtos":
		return m.reloadProducts(ctx, s, fmt.Sprintf("Qual produto de *%s*?", s.Category.Label()))
	}
	return m.mainMenu("Use os botões abaixo 👇"), nil
}

func (m *Machine) reloadProducts(ctx context.Context, s *Session, title string) (Reply, error) {
	listCategory := s.Category
	if s.GiftPreset {
		listCategory = entity.CategoryCafes
	}

	var (
		products []entity.Product
		err      error
	)
	if s.Direction == entity.DirectionOut {
		products, err = m.products.ListAvailableByCategory(ctx, listCategory)
	} else {
		products, err = m.products.ListByCategory(ctx, listCategory)
	}
	if err != nil {
		return m.storageFailure(err, "listar produtos")
	}

	s.ProductID = ""
	s.ProductName = ""
	s.ProductUnit = ""
	s.Quantity = decimal.Zero
	s.State = StateSelectingProduct

	if len(products) == 0 {
		s.State = StateSelectingCategory
		return Reply{
			Text:     fmt.Sprintf("😕 Nenhum produto disponível em *%s* agora.", s.Category.Label()),
			Keyboard: categoriesKeyboard(s.Direction),
			Edit:     true,
		}, nil
	}
	return Reply{
		Text:     title,
		Keyboard: productsKeyboard(s.Direction, listCategory, products),
		Edit:     true,
	}, nil
}

func (m *Machine) handleAIAction(ctx context.Context, s *Session, action string) (Reply, error) {
	var question string
	switch action {
	case "sugestoes":
		question = "Sugira ações práticas para equilibrar o estoque atual da torrefação."
	case "relatorios":
		question = "Gere um relatório rápido das movimentações recentes do estoque."
	case "resumo":
		question = "Faça um resumo semanal do estoque e das saídas."
	default:
		return Reply{Text: aiPanelText(), Keyboard: aiPanelKeyboard(), Edit: true}, nil
	}
	s.State = StateAskingAI
	return m.askAI(ctx, s, question)
}

func (m *Machine) handleText(ctx context.Context, s *Session, text string) (Reply, error) {
	switch s.State {
	case StateAwaitingCustomQuantity:
		qty, err := parseQuantity(text)
		if err != nil {
			// Continua aguardando: entrada malformada re-pergunta sem avançar.
			return Reply{Text: "⚠️ Não entendi. Digite um número positivo (ex.: 12 ou 2,5):"}, nil
		}
		return m.advanceWithQuantity(s, qty), nil

	case StateAskingAI:
		return m.askAI(ctx, s, text)
	}

	// Texto livre fora desses estados não avança nada.
	return m.mainMenu("Use os botões abaixo 👇"), nil
}

func (m *Machine) askAI(ctx context.Context, s *Session, question string) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	summary := m.buildContextSummary(ctx)

	answer, err := m.llm.Ask(ctx, question, summary)
	s.ResetFlow() // uma pergunta por vez: sempre volta a Idle
	if err != nil {
		m.log.Warn().Err(err).Msg("assistente de IA indisponível, usando fallback")
		return Reply{Text: aiFallbackText, Keyboard: mainMenuKeyboard()}, nil
	}
	return Reply{Text: answer, Keyboard: mainMenuKeyboard()}, nil
}

// buildContextSummary monta um resumo curto do estoque para ancorar a
// resposta do modelo. Falhas de leitura degradam para um resumo vazio.
func (m *Machine) buildContextSummary(ctx context.Context) string {
	var b strings.Builder

	products, err := m.products.Overview(ctx)
	if err == nil {
		b.WriteString("Estoque atual:\n")
		for _, p := range products {
			b.WriteString(fmt.Sprintf("- %s (%s): %s %s\n",
				p.Name, p.Category.Label(), dto.FormatQuantity(p.Quantity), p.Unit))
		}
	}

	views, err := m.movements.ListRecent(ctx, historyLimit, nil)
	if err == nil && len(views) > 0 {
		b.WriteString("Movimentações recentes:\n")
		for _, v := range views {
			b.WriteString(fmt.Sprintf("- %s: %s %s de %s\n",
				v.Type(), dto.FormatQuantity(v.Quantity), v.ProductUnit, v.ProductName))
		}
	}

	return b.String()
}

func (m *Machine) storageFailure(err error, op string) (Reply, error) {
	m.log.Error().Err(err).Str("op", op).Msg("falha de armazenamento")
	return Reply{
		Text:     "⚠️ Não consegui acessar o estoque agora. Tente novamente.",
		Keyboard: mainMenuKeyboard(),
	}, err
}

func noteFor(s *Session) string {
	if s.IsGift {
		return "[BRINDE] registrado pelo bot"
	}
	return "registrado pelo bot"
}

// parseQuantity aceita ponto ou vírgula como separador decimal.
func parseQuantity(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	qty, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q não é um número", domain.ErrInvalidInput, raw)
	}
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: a quantidade deve ser positiva", domain.ErrInvalidInput)
	}
	return qty, nil
}
