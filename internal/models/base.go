package models

import "time"

type Base struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBase() Base {
	now := time.Now()
	return Base{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *Base) Touch() {
	b.UpdatedAt = time.Now()
}
