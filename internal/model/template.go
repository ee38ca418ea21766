package model

import (
	"encoding/json"
	"time"
)

// Template is named markup with {{key}} placeholders. Documents reference it
// by name only.
type Template struct {
	Name      string    `gorm:"primaryKey;size:255;not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Template) MarshalBinary() ([]byte, error) {
	return json.Marshal(t)
}

func (t *Template) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, t)
}
