// internal/models/model.go
package models

import (
	"context"
	"sync"
)

// Model is the interface all model backends must implement
type Model interface {
	// Info returns the descriptor of the model
	Info() ModelInfo

	// Send sends a prompt and returns a channel of chunks
	Send(ctx context.Context, prompt string) <-chan Chunk

	// Stop interrupts any in-progress generation
	Stop()

	// Status returns the current status of the model
	Status() ModelStatus

	// SetStatus updates the model status
	SetStatus(status ModelStatus)
}

// BaseModel provides common functionality for all models
type BaseModel struct {
	info ModelInfo

	mu     sync.RWMutex
	status ModelStatus
}

func NewBaseModel(info ModelInfo) BaseModel {
	return BaseModel{
		info:   info,
		status: StatusIdle,
	}
}

func (m *BaseModel) Info() ModelInfo {
	return m.info
}

func (m *BaseModel) Status() ModelStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *BaseModel) SetStatus(status ModelStatus) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
