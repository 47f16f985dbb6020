package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// AppState is the root aggregate owned by the ledger.
// Transactions are ordered newest first.
type AppState struct {
	Kids         []Child
	Settings     Settings
	Transactions []Transaction
}

// NewAppState returns an empty, freshly initialized state.
func NewAppState() *AppState {
	return &AppState{
		Kids:         []Child{},
		Settings:     DefaultSettings(),
		Transactions: []Transaction{},
	}
}

// Child returns a pointer to the child with the given ID, or nil.
func (s *AppState) Child(id uuid.UUID) *Child {
	for i := range s.Kids {
		if s.Kids[i].ID == id {
			return &s.Kids[i]
		}
	}
	return nil
}

// Prepend adds transactions to the head of the log, preserving their order.
func (s *AppState) Prepend(txs ...Transaction) {
	if len(txs) == 0 {
		return
	}
	log := make([]Transaction, 0, len(txs)+len(s.Transactions))
	log = append(log, txs...)
	s.Transactions = append(log, s.Transactions...)
}

// Clone returns a deep copy safe to hand to callers.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Kids:         make([]Child, len(s.Kids)),
		Settings:     s.Settings,
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.Kids, s.Kids)
	for i := range out.Kids {
		if g := s.Kids[i].Goal; g != nil {
			goal := *g
			out.Kids[i].Goal = &goal
		}
	}
	if s.Settings.LastAllowanceAt != nil {
		last := *s.Settings.LastAllowanceAt
		out.Settings.LastAllowanceAt = &last
	}
	copy(out.Transactions, s.Transactions)
	return out
}

// Validate checks every child, the settings and every transaction.
func (s *AppState) Validate() error {
	seen := make(map[uuid.UUID]struct{}, len(s.Kids))
	for i := range s.Kids {
		if err := s.Kids[i].Validate(); err != nil {
			return fmt.Errorf("kids[%d]: %w", i, err)
		}
		if _, dup := seen[s.Kids[i].ID]; dup {
			return fmt.Errorf("kids[%d]: duplicate child ID %s", i, s.Kids[i].ID)
		}
		seen[s.Kids[i].ID] = struct{}{}
	}
	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for i := range s.Transactions {
		if err := s.Transactions[i].Validate(); err != nil {
			return fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}
	return nil
}
