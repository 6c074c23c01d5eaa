package checkout

// FormData is the record built up across wizard steps. Nothing here is
// persisted anywhere durable until the terminal submit hands it to the
// payment orchestrator.
type FormData struct {
	CustomerName string  `json:"customerName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	CompanyName  *string `json:"companyName,omitempty"`
	TaxID        *string `json:"taxId,omitempty"`
	CompanyType  *string `json:"companyType,omitempty"`

	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`

	Notes *string `json:"notes,omitempty"`
}

// CustomerFields is the customer step's payload.
type CustomerFields struct {
	CustomerName string  `json:"customerName" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required"`
	CompanyName  *string `json:"companyName,omitempty"`
	TaxID        *string `json:"taxId,omitempty"`
	CompanyType  *string `json:"companyType,omitempty"`
}

// ShippingFields is the shipping step's payload.
type ShippingFields struct {
	Address    string  `json:"address" validate:"required"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postalCode" validate:"required"`
	Notes      *string `json:"notes,omitempty"`
}
