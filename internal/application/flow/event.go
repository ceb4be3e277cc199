package flow

// EventKind identifica o tipo de input vindo do transporte.
type EventKind int

const (
	// EventCommand é um comando ou item do menu principal: start, home,
	// entrada, saida, estoque, historico, iacafe.
	EventCommand EventKind = iota
	// EventCategory carrega "direcao:categoria".
	EventCategory
	// EventProduct carrega "direcao:id_do_produto".
	EventProduct
	// EventQuantity carrega "direcao:n" com n em {1,5,10,15,30,50} ou "custom".
	EventQuantity
	// EventGift carrega "sim" ou "nao".
	EventGift
	// EventConfirm confirma a movimentação montada.
	EventConfirm
	// EventCancel descarta o fluxo em andamento.
	EventCancel
	// EventBack navega para trás: "categorias" ou "produtos".
	EventBack
	// EventAIAction é um atalho do painel de IA: sugestoes, relatorios, resumo.
	EventAIAction
	// EventText é uma mensagem de texto livre.
	EventText
)

// Event é um input normalizado do usuário, independente do transporte.
type Event struct {
	Kind  EventKind
	Value string
}

// Button é um botão de teclado inline, com o payload de callback.
type Button struct {
	Label string
	Data  string
}

// Reply é a resposta da máquina, pronta para o adaptador renderizar.
type Reply struct {
	Text     string
	Keyboard [][]Button
	// Edit pede ao transporte para editar a última mensagem de menu em
	// vez de enviar uma nova, quando possível.
	Edit bool
}
