package flow

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store guarda as sessões em memória, uma por chat, com expiração por
// inatividade. A expiração é silenciosa: o próximo input do chat começa
// do zero, sem mensagem de erro.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewStore cria o store com o TTL de inatividade dado.
func NewStore(ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Get devolve a sessão do chat, criando uma ociosa se não existir. Uma
// sessão expirada é reiniciada antes de ser devolvida.
func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	s, ok := st.sessions[chatID]
	if !ok {
		s = &Session{ChatID: chatID, State: StateIdle, CreatedAt: now}
		st.sessions[chatID] = s
	} else if st.expired(s, now) {
		s.mu.Lock()
		s.ResetFlow()
		s.mu.Unlock()
	}
	s.LastActivity = now
	return s
}

// Reset descarta o fluxo em andamento do chat.
func (st *Store) Reset(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[chatID]; ok {
		s.mu.Lock()
		s.ResetFlow()
		s.mu.Unlock()
	}
}

// Sweep remove sessões paradas além do TTL e devolve quantas caíram.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	evicted := 0
	for chatID, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, chatID)
			evicted++
		}
	}
	return evicted
}

// StartJanitor varre as sessões expiradas no intervalo dado até o
// contexto ser cancelado.
func (st *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := st.Sweep(); n > 0 {
					st.log.Debug().Int("sessoes", n).Msg("sessões expiradas removidas")
				}
			}
		}
	}()
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.LastActivity) > st.ttl
}

// setClock troca o relógio do store nos testes.
func (st *Store) setClock(now func() time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}
