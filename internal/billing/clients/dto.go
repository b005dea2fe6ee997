package clients

type SaveClientRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Company         string  `json:"company" validate:"max=200"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Phone           string  `json:"phone" validate:"max=50"`
	BillingAddress  string  `json:"billing_address" validate:"max=500"`
	DeliveryAddress string  `json:"delivery_address" validate:"max=500"`
	VatNumber       *string `json:"vat_number,omitempty" validate:"omitempty,max=50"`
}

// ToClient builds the client record for id.
func (r SaveClientRequest) ToClient(id string) Client {
	c := Client{
		ID:              id,
		Name:            r.Name,
		Company:         r.Company,
		Email:           r.Email,
		Phone:           r.Phone,
		BillingAddress:  r.BillingAddress,
		DeliveryAddress: r.DeliveryAddress,
	}
	if r.VatNumber != nil && *r.VatNumber != "" {
		vat := *r.VatNumber
		c.VatNumber = &vat
	}
	return c
}

// Upsert replaces the client with a matching id or appends it. The input slice
// is not modified.
func Upsert(list []Client, c Client) []Client {
	out := make([]Client, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if existing.ID == c.ID {
			out = append(out, c)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, c)
	}
	return out
}

// Remove drops the client with id. Documents that reference it keep the id.
func Remove(list []Client, id string) ([]Client, bool) {
	out := make([]Client, 0, len(list))
	found := false
	for _, c := range list {
		if c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	return out, found
}
