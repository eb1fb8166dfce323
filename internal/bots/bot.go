package bots

import (
	"time"
)

// Bot is a synthetic order-flow producer bound to one market.
type Bot interface {
	ID() string
	Start()
	Stop()
}

// Manager owns a set of bots and starts/stops them together.
type Manager struct {
	bots []Bot
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(bot Bot) {
	m.bots = append(m.bots, bot)
}

func (m *Manager) StartAll() {
	for _, b := range m.bots {
		b.Start()
	}
}

func (m *Manager) StopAll() {
	for _, b := range m.bots {
		b.Stop()
	}
}

func (m *Manager) Count() int {
	return len(m.bots)
}

// runPeriodic drives fn on a fixed cadence until stopCh closes.
func runPeriodic(interval time.Duration, stopCh <-chan struct{}, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-stopCh:
			return
		}
	}
}
