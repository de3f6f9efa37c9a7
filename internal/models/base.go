package models

import (
	"github.com/google/uuid"
)

type IBase interface {
	GenIDIfEmpty()
	GenID()
	SetID(id string)
}

// Base carries the string identifier shared by account-scoped documents.
type Base struct {
	ID string `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID == "" {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = uuid.NewString()
}

func (m *Base) SetID(id string) {
	m.ID = id
}

func NewBase() Base {
	return Base{
		ID: uuid.NewString(),
	}
}
