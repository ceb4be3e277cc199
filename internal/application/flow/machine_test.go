package flow_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoscafes/estoque-bot/internal/application/flow"
	"github.com/eoscafes/estoque-bot/internal/application/inventory"
	"github.com/eoscafes/estoque-bot/internal/application/ports"
	"github.com/eoscafes/estoque-bot/internal/domain"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória
//
// Os repositórios compartilham um memDB guardado por mutex; o desconto
// condicional é feito sob o lock, reproduzindo a semântica do UPDATE
// condicional do Postgres. O TxRunner de teste não abre transação de
// verdade: o caso de uso só grava a movimentação depois do desconto ter
// sucesso, então não há escrita parcial a desfazer.
// ──────────────────────────────────────────────────────────────────────────────

type memDB struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []entity.Movement
}

func newMemDB() *memDB {
	return &memDB{products: map[string]*entity.Product{}}
}

func (db *memDB) addProduct(name string, category entity.Category, qty int64, price string) *entity.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := &entity.Product{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
		Unit:     "un",
		Quantity: decimal.NewFromInt(qty),
		Price:    decimal.RequireFromString(price),
	}
	db.products[p.ID] = p
	return p
}

func (db *memDB) quantityOf(id string) decimal.Decimal {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id].Quantity
}

func (db *memDB) movementCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.movements)
}

type memProductRepo struct{ db *memDB }

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, domainNotFound()
	}
	clone := *p
	return &clone, nil
}

func (r *memProductRepo) list(filter func(*entity.Product) bool) []entity.Product {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Product
	for _, p := range r.db.products {
		if filter(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memProductRepo) ListByCategory(_ context.Context, c entity.Category) ([]entity.Product, error) {
	return r.list(func(p *entity.Product) bool { return p.Category == c }), nil
}

func (r *memProductRepo) ListAvailableByCategory(_ context.Context, c entity.Category) ([]entity.Product, error) {
	return r.list(func(p *entity.Product) bool { return p.Category == c && p.Quantity.IsPositive() }), nil
}

func (r *memProductRepo) Overview(_ context.Context) ([]entity.Product, error) {
	return r.list(func(*entity.Product) bool { return true }), nil
}

func (r *memProductRepo) Increment(_ context.Context, id string, qty decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return domainNotFound()
	}
	p.Quantity = p.Quantity.Add(qty)
	return nil
}

func (r *memProductRepo) DecrementIfAvailable(_ context.Context, id string, qty decimal.Decimal) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return false, domainNotFound()
	}
	if p.Quantity.LessThan(qty) {
		return false, nil
	}
	p.Quantity = p.Quantity.Sub(qty)
	return true, nil
}

type memMovementRepo struct{ db *memDB }

func (r *memMovementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.movements = append(r.db.movements, *m)
	return nil
}

func (r *memMovementRepo) views() []entity.MovementView {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]entity.MovementView, 0, len(r.db.movements))
	for i := len(r.db.movements) - 1; i >= 0; i-- {
		m := r.db.movements[i]
		v := entity.MovementView{Movement: m}
		if p, ok := r.db.products[m.ProductID]; ok {
			v.ProductName = p.Name
			v.ProductUnit = p.Unit
			v.ProductCategory = p.Category
		}
		out = append(out, v)
	}
	return out
}

func (r *memMovementRepo) ListRecent(_ context.Context, limit int, direction *entity.Direction) ([]entity.MovementView, error) {
	var out []entity.MovementView
	for _, v := range r.views() {
		if direction != nil && v.Direction != *direction {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListSince(_ context.Context, since time.Time) ([]entity.MovementView, error) {
	var out []entity.MovementView
	for _, v := range r.views() {
		if v.CreatedAt.Before(since) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type memTxRunner struct {
	products  *memProductRepo
	movements *memMovementRepo
}

func (r *memTxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepositories) error) error {
	return fn(ctx, ports.TxRepositories{Products: r.products, Movements: r.movements})
}

type fakeLLM struct {
	answer string
	err    error
}

func (f *fakeLLM) Ask(context.Context, string, string) (string, error) {
	return f.answer, f.err
}

func domainNotFound() error {
	return domain.ErrNotFound
}

// ──────────────────────────────────────────────────────────────────────────────
// Montagem
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	machine *flow.Machine
	store   *flow.Store
	db      *memDB
	llm     *fakeLLM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newMemDB()
	products := &memProductRepo{db: db}
	movements := &memMovementRepo{db: db}
	tx := &memTxRunner{products: products, movements: movements}

	log := zerolog.Nop()
	record := inventory.NewRecordMovementUseCase(tx, log)
	llm := &fakeLLM{answer: "☕ Tudo sob controle!"}
	store := flow.NewStore(30*time.Minute, log)

	return &fixture{
		machine: flow.NewMachine(store, products, movements, record, llm, log),
		store:   store,
		db:      db,
		llm:     llm,
	}
}

func (f *fixture) handle(t *testing.T, chatID int64, ev flow.Event) flow.Reply {
	t.Helper()
	reply, err := f.machine.Handle(context.Background(), chatID, ev)
	require.NoError(t, err)
	return reply
}

// walkToConfirm leva o chat até o passo de confirmação de uma saída.
func (f *fixture) walkToConfirm(t *testing.T, chatID int64, productID, quantity string, gift bool) {
	t.Helper()
	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "saida"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "saida:cafes"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventProduct, Value: "saida:" + productID})
	f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "saida:custom"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: quantity})
	answer := "nao"
	if gift {
		answer = "sim"
	}
	f.handle(t, chatID, flow.Event{Kind: flow.EventGift, Value: answer})

	require.Equal(t, flow.StateConfirming, f.store.Get(chatID).State)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cenários
// ──────────────────────────────────────────────────────────────────────────────

const chatID = int64(4242)

// Cenário A: saída maior que o saldo é rejeitada no commit e o saldo não
// muda; a sessão volta à escolha de quantidade mantendo o produto.
func TestMachine_SaidaMaiorQueSaldo_Rejeitada(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.walkToConfirm(t, chatID, p.ID, "60", false)
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})

	assert.Contains(t, reply.Text, "insuficiente")
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(50)),
		"o saldo não pode mudar quando a saída é rejeitada")
	assert.Zero(t, f.db.movementCount(), "nenhuma movimentação deve ser gravada")

	s := f.store.Get(chatID)
	assert.Equal(t, flow.StateSelectingQuantity, s.State)
	assert.Equal(t, p.ID, s.ProductID, "produto e categoria são mantidos para nova tentativa")
}

// Cenário B: saída de 10 marcada como brinde desconta o estoque e grava a
// movimentação com is_gift.
func TestMachine_SaidaBrinde_DescontaEMarca(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.walkToConfirm(t, chatID, p.ID, "10", true)
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})

	assert.Contains(t, reply.Text, "✅")
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(40)))

	require.Equal(t, 1, f.db.movementCount())
	m := f.db.movements[0]
	assert.True(t, m.IsGift)
	assert.Equal(t, entity.DirectionOut, m.Direction)
	assert.True(t, m.UnitPrice.IsZero(), "brinde sai a custo zero")
}

// Cenário C: texto não numérico na quantidade manual re-pergunta sem
// avançar nem gravar nada.
func TestMachine_QuantidadeInvalida_RePergunta(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "saida"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "saida:cafes"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventProduct, Value: "saida:" + p.ID})
	f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "saida:custom"})

	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: "abc"})

	assert.Contains(t, reply.Text, "número positivo")
	assert.Equal(t, flow.StateAwaitingCustomQuantity, f.store.Get(chatID).State)
	assert.Zero(t, f.db.movementCount())

	// Uma quantidade válida em seguida destrava o fluxo.
	f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: "10"})
	assert.Equal(t, flow.StateConfirmingGift, f.store.Get(chatID).State)
}

// Cenário D: falha do assistente degrada para o texto de fallback e a
// sessão volta a Idle sem erro exposto.
func TestMachine_IAIndisponivel_Fallback(t *testing.T) {
	f := newFixture(t)
	f.llm.answer = ""
	f.llm.err = errors.New("timeout")

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "iacafe"})
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: "como está o estoque?"})

	assert.Contains(t, reply.Text, "indisponível")
	assert.Equal(t, flow.StateIdle, f.store.Get(chatID).State)
}

// A resposta do assistente volta ao usuário e a sessão encerra em Idle:
// uma pergunta por vez.
func TestMachine_IA_UmaRodadaEVoltaAIdle(t *testing.T) {
	f := newFixture(t)

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "iacafe"})
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: "quantos cafés temos?"})

	assert.Equal(t, "☕ Tudo sob controle!", reply.Text)
	assert.Equal(t, flow.StateIdle, f.store.Get(chatID).State)
}

// Confirmar de novo depois de um commit bem sucedido é um no-op: a sessão
// já voltou a Idle e nada é aplicado duas vezes.
func TestMachine_ConfirmRepetido_NaoDuplica(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.walkToConfirm(t, chatID, p.ID, "10", false)
	f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})
	require.Equal(t, 1, f.db.movementCount())

	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})

	assert.Contains(t, reply.Text, "Nada pendente")
	assert.Equal(t, 1, f.db.movementCount())
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(40)))
}

// Cancelar em qualquer ponto descarta a sessão sem escrita parcial.
func TestMachine_Cancelar_DescartaSessao(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.walkToConfirm(t, chatID, p.ID, "10", false)
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventCancel})

	assert.Contains(t, reply.Text, "cancelada")
	assert.Equal(t, flow.StateIdle, f.store.Get(chatID).State)
	assert.Zero(t, f.db.movementCount())
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(50)))
}

// Reconciliação: seed + Σ entradas − Σ saídas tem que bater com o saldo.
func TestMachine_MovimentacoesReconciliamComSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	// Entrada de 20.
	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "entrada"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "entrada:cafes"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventProduct, Value: "entrada:" + p.ID})
	f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "entrada:custom"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventText, Value: "20"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})

	// Saída de 15.
	f.walkToConfirm(t, chatID, p.ID, "15", false)
	f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})

	expected := decimal.NewFromInt(50)
	f.db.mu.Lock()
	for _, m := range f.db.movements {
		if m.Direction == entity.DirectionIn {
			expected = expected.Add(m.Quantity)
		} else {
			expected = expected.Sub(m.Quantity)
		}
	}
	f.db.mu.Unlock()

	assert.True(t, f.db.quantityOf(p.ID).Equal(expected),
		"saldo = seed + Σ entradas − Σ saídas")
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(55)))
}

// Duas saídas simultâneas de 30 sobre um saldo de 50: exatamente uma
// ganha, a outra recebe estoque insuficiente.
func TestMachine_SaidasConcorrentes_UmaSoGanha(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	chatA, chatB := int64(1), int64(2)
	f.walkToConfirm(t, chatA, p.ID, "30", false)
	f.walkToConfirm(t, chatB, p.ID, "30", false)

	var wg sync.WaitGroup
	replies := make([]flow.Reply, 2)
	for i, chat := range []int64{chatA, chatB} {
		wg.Add(1)
		go func(i int, chat int64) {
			defer wg.Done()
			replies[i], _ = f.machine.Handle(context.Background(), chat, flow.Event{Kind: flow.EventConfirm})
		}(i, chat)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, reply := range replies {
		switch {
		case strings.Contains(reply.Text, "✅"):
			successes++
		case strings.Contains(reply.Text, "insuficiente"):
			rejections++
		}
	}

	assert.Equal(t, 1, successes, "exatamente uma saída pode ganhar")
	assert.Equal(t, 1, rejections)
	assert.Equal(t, 1, f.db.movementCount())
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(20)))
}

// Toque duplo em confirmar no mesmo chat: as duas goroutines disputam a
// mesma sessão, mas só uma encontra o estado de confirmação; a outra
// recebe o aviso de nada pendente e o desconto acontece uma vez só.
func TestMachine_ConfirmsConcorrentesMesmoChat_NaoDuplica(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.walkToConfirm(t, chatID, p.ID, "10", false)

	var wg sync.WaitGroup
	replies := make([]flow.Reply, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i], _ = f.machine.Handle(context.Background(), chatID, flow.Event{Kind: flow.EventConfirm})
		}(i)
	}
	wg.Wait()

	commits, noops := 0, 0
	for _, reply := range replies {
		switch {
		case strings.Contains(reply.Text, "retiradas do"):
			commits++
		case strings.Contains(reply.Text, "Nada pendente"):
			noops++
		}
	}

	assert.Equal(t, 1, commits, "a movimentação só pode ser aplicada uma vez")
	assert.Equal(t, 1, noops)
	assert.Equal(t, 1, f.db.movementCount())
	assert.True(t, f.db.quantityOf(p.ID).Equal(decimal.NewFromInt(40)))
}

// A categoria Brindes na saída pré-marca is_gift e pula a pergunta.
func TestMachine_CategoriaBrindes_PulaPergunta(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "saida"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "saida:brindes"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventProduct, Value: "saida:" + p.ID})
	f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "saida:5"})

	s := f.store.Get(chatID)
	assert.Equal(t, flow.StateConfirming, s.State, "a pergunta de brinde é pulada")
	assert.True(t, s.IsGift)

	f.handle(t, chatID, flow.Event{Kind: flow.EventConfirm})
	require.Equal(t, 1, f.db.movementCount())
	assert.True(t, f.db.movements[0].IsGift)
}

// As re-perguntas de quantidade inválida e de resposta de brinde fora
// dos botões editam o menu no lugar, como os demais passos.
func TestMachine_RePerguntas_EditamMenuNoLugar(t *testing.T) {
	f := newFixture(t)
	p := f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "saida"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "saida:cafes"})
	f.handle(t, chatID, flow.Event{Kind: flow.EventProduct, Value: "saida:" + p.ID})

	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "saida:xx"})
	assert.Contains(t, reply.Text, "inválida")
	assert.True(t, reply.Edit, "quantidade inválida re-pergunta editando o menu")

	f.handle(t, chatID, flow.Event{Kind: flow.EventQuantity, Value: "saida:10"})
	reply = f.handle(t, chatID, flow.Event{Kind: flow.EventGift, Value: "talvez"})
	assert.Contains(t, reply.Text, "brinde")
	assert.True(t, reply.Edit, "resposta fora dos botões re-pergunta editando o menu")
	assert.Equal(t, flow.StateConfirmingGift, f.store.Get(chatID).State)
}

// Saída só lista produtos com saldo; um produto esgotado some do menu.
func TestMachine_SaidaNaoListaEsgotados(t *testing.T) {
	f := newFixture(t)
	f.db.addProduct("Espresso Blend", entity.CategoryCafes, 50, "30.00")
	esgotado := f.db.addProduct("Café raro", entity.CategoryCafes, 0, "99.00")

	f.handle(t, chatID, flow.Event{Kind: flow.EventCommand, Value: "saida"})
	reply := f.handle(t, chatID, flow.Event{Kind: flow.EventCategory, Value: "saida:cafes"})

	for _, row := range reply.Keyboard {
		for _, btn := range row {
			assert.NotContains(t, btn.Data, esgotado.ID, "produto sem saldo não aparece na saída")
		}
	}
}
