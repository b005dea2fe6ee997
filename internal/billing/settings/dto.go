package settings

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalidSettings = errors.New("invalid settings")

// UpdateSettingsRequest carries the fields the settings editor may change.
type UpdateSettingsRequest struct {
	CompanyName            *string              `json:"company_name,omitempty" validate:"omitempty,min=1,max=200"`
	Address                *string              `json:"address,omitempty" validate:"omitempty,max=500"`
	Email                  *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone                  *string              `json:"phone,omitempty" validate:"omitempty,max=50"`
	LogoURL                *string              `json:"logo_url,omitempty" validate:"omitempty,url"`
	Currency               *string              `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	VatPercentage          *decimal.Decimal     `json:"vat_percentage,omitempty"`
	NumberingFormatQuote   *string              `json:"numbering_format_quote,omitempty" validate:"omitempty,min=1,max=100"`
	NumberingFormatInvoice *string              `json:"numbering_format_invoice,omitempty" validate:"omitempty,min=1,max=100"`
	TermsText              *string              `json:"terms_text,omitempty"`
	PaymentInstructions    *PaymentInstructions `json:"payment_instructions,omitempty"`
}

var validate = validator.New()

// Apply validates req and returns s with the requested changes. s is not modified.
func (s CompanySettings) Apply(req UpdateSettingsRequest) (CompanySettings, error) {
	if err := validate.Struct(req); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if req.VatPercentage != nil {
		vat := *req.VatPercentage
		if vat.IsNegative() || vat.GreaterThan(decimal.NewFromInt(100)) {
			return s, fmt.Errorf("%w: vat_percentage must be between 0 and 100", ErrInvalidSettings)
		}
		s.VatPercentage = vat
	}
	if req.CompanyName != nil {
		s.CompanyName = *req.CompanyName
	}
	if req.Address != nil {
		s.Address = *req.Address
	}
	if req.Email != nil {
		s.Email = *req.Email
	}
	if req.Phone != nil {
		s.Phone = *req.Phone
	}
	if req.LogoURL != nil {
		s.LogoURL = *req.LogoURL
	}
	if req.Currency != nil {
		s.Currency = *req.Currency
	}
	if req.NumberingFormatQuote != nil {
		s.NumberingFormatQuote = *req.NumberingFormatQuote
	}
	if req.NumberingFormatInvoice != nil {
		s.NumberingFormatInvoice = *req.NumberingFormatInvoice
	}
	if req.TermsText != nil {
		s.TermsText = *req.TermsText
	}
	if req.PaymentInstructions != nil {
		s.PaymentInstructions = *req.PaymentInstructions
	}
	return s, nil
}
