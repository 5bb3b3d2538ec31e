package repository

import (
	"context"
	"sync"

	"github.com/ticketdesk/ticket-bot/internal/domain"
)

type memoryCreatorIndex struct {
	mu      sync.RWMutex
	records map[string]domain.TicketRecord
}

// NewMemoryCreatorIndex returns a process-local index. Records are lost on restart.
func NewMemoryCreatorIndex() CreatorIndex {
	return &memoryCreatorIndex{records: make(map[string]domain.TicketRecord)}
}

func (m *memoryCreatorIndex) Put(_ context.Context, record *domain.TicketRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ChannelID] = *record
	return nil
}

func (m *memoryCreatorIndex) Get(_ context.Context, channelID string) (*domain.TicketRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[channelID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *memoryCreatorIndex) Delete(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, channelID)
	return nil
}

func (m *memoryCreatorIndex) Close() error { return nil }
