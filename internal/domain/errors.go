package domain

import "errors"

// Erros de domínio compartilhados. As camadas superiores mapeiam estes
// sentinelas para respostas HTTP ou mensagens de conversa.
var (
	// ErrNotFound indica que o recurso não existe.
	ErrNotFound = errors.New("recurso não encontrado")

	// ErrInvalidInput indica dados de entrada inválidos (quantidade <= 0, categoria desconhecida, etc).
	ErrInvalidInput = errors.New("dados de entrada inválidos")

	// ErrInsufficientStock indica que a saída pediu mais unidades do que há em estoque.
	ErrInsufficientStock = errors.New("estoque insuficiente")

	// ErrSessionExpired indica que a sessão de conversa expirou por inatividade.
	ErrSessionExpired = errors.New("sessão expirada")

	// ErrAlreadyExists indica violação de unicidade ao criar um recurso.
	ErrAlreadyExists = errors.New("recurso já existe")

	// ErrAIUnavailable indica falha ao consultar o serviço de IA.
	ErrAIUnavailable = errors.New("serviço de IA indisponível")
)
