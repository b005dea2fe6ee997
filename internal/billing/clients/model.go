// Package clients holds client records. Documents refer to clients by id only.
package clients

type Client struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Company         string  `json:"company"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	BillingAddress  string  `json:"billing_address"`
	DeliveryAddress string  `json:"delivery_address"`
	VatNumber       *string `json:"vat_number,omitempty"`
}

// Lookup resolves a client id. A missing client is reported with ok=false,
// never as an error.
type Lookup interface {
	LookupClient(id string) (Client, bool)
}

// Samples returns the two clients the application ships with.
func Samples() []Client {
	vat := "4123456789"
	return []Client{
		{
			ID:              "client1",
			Name:            "Contas",
			Company:         "Contas Inc.",
			Email:           "billing@contas.com",
			Phone:           "+27 11 555 1234",
			BillingAddress:  "Waterfall Ridge, Vorna Valley, Midrand",
			DeliveryAddress: "Waterfall Ridge, Vorna Valley, Midrand",
			VatNumber:       &vat,
		},
		{
			ID:              "client2",
			Name:            "John Doe",
			Company:         "JD Enterprises",
			Email:           "john.doe@jdenterprises.com",
			Phone:           "+27 11 555 5678",
			BillingAddress:  "456 Business Blvd, Sandton, Johannesburg",
			DeliveryAddress: "456 Business Blvd, Sandton, Johannesburg",
		},
	}
}
