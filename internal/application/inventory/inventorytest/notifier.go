package inventorytest

import (
	"context"
	"errors"
	"sync"
)

var errForeignKey = errors.New("movimentacoes_materias_primas_id_fkey")

// Event evento capturado pelo RecordingNotifier.
type Event struct {
	Name    string
	Payload any
}

// RecordingNotifier guarda os eventos recebidos, em ordem.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *RecordingNotifier) Notify(_ context.Context, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{Name: event, Payload: payload})
}

// Events devolve uma cópia dos eventos.
func (n *RecordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// Names devolve apenas os nomes dos eventos.
func (n *RecordingNotifier) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.events))
	for _, e := range n.events {
		names = append(names, e.Name)
	}
	return names
}

// Reset descarta os eventos já recebidos.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}
