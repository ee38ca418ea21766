package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultTemplateName = "default"
	DefaultLanguage     = "fr"
	DefaultCurrency     = "EUR"
)

// Preferences are the per-user rendering defaults.
type Preferences struct {
	DefaultTemplate string `json:"defaultTemplate"`
	Language        string `json:"language"`
	Currency        string `json:"currency"`
}

// User is the company profile of a document owner. Credentials live with the
// identity provider and are never stored here.
type User struct {
	ID          string                          `gorm:"primaryKey;uuid;not null;" json:"id"`
	Email       string                          `gorm:"size:255;index" json:"email"`
	CompanyName string                          `json:"companyName"`
	Logo        string                          `json:"logo"`
	Address     string                          `json:"address"`
	Phone       string                          `json:"phone"`
	Siret       string                          `json:"siret"`
	VATNumber   string                          `json:"tva"`
	IBAN        string                          `json:"iban"`
	BIC         string                          `json:"bic"`
	Preferences datatypes.JSONType[Preferences] `json:"preferences"`
	CreatedAt   time.Time                       `json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
}

// Prefs returns the user preferences with defaults applied. It is safe on a nil user.
func (u *User) Prefs() Preferences {
	p := Preferences{}
	if u != nil {
		p = u.Preferences.Data()
	}
	if p.DefaultTemplate == "" {
		p.DefaultTemplate = DefaultTemplateName
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	return p
}

// Fields exposes the profile to templates under the user prefix.
func (u *User) Fields() map[string]any {
	if u == nil {
		return map[string]any{}
	}
	return map[string]any{
		"email":       u.Email,
		"companyName": u.CompanyName,
		"logo":        u.Logo,
		"address":     u.Address,
		"phone":       u.Phone,
		"siret":       u.Siret,
		"tva":         u.VATNumber,
		"iban":        u.IBAN,
		"bic":         u.BIC,
	}
}
