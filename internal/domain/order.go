package domain

// OrderDraft is the checkout state mutated by form input before submission
type OrderDraft struct {
	Quantity    int
	Interval    Interval
	TotalAmount *int // minor currency units, nil when not specified
	Tier        Tier
	Description string
}

// PaymentMethod holds only the fields the API accepts from the browser
type PaymentMethod struct {
	UUID       string                 `json:"uuid,omitempty"`
	Service    string                 `json:"service,omitempty"`
	Type       string                 `json:"type,omitempty"`
	Token      string                 `json:"token,omitempty"`
	CustomerID string                 `json:"customerId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Name       string                 `json:"name,omitempty"`
	Currency   string                 `json:"currency,omitempty"`
	Save       *bool                  `json:"save,omitempty"`
}

// PaymentMethodFields lists the payment method fields forwarded to the API
var PaymentMethodFields = []string{"uuid", "service", "type", "token", "customerId", "data", "name", "currency", "save"}

// ProjectPaymentMethod keeps the allow-listed fields of a raw payment method
// submitted by the browser and drops everything else.
func ProjectPaymentMethod(raw map[string]interface{}) *PaymentMethod {
	if len(raw) == 0 {
		return nil
	}
	pm := &PaymentMethod{
		UUID:       stringField(raw, "uuid"),
		Service:    stringField(raw, "service"),
		Type:       stringField(raw, "type"),
		Token:      stringField(raw, "token"),
		CustomerID: stringField(raw, "customerId"),
		Name:       stringField(raw, "name"),
		Currency:   stringField(raw, "currency"),
	}
	if data, ok := raw["data"].(map[string]interface{}); ok {
		pm.Data = data
	}
	switch v := raw["save"].(type) {
	case bool:
		pm.Save = &v
	case string:
		save := v == "true" || v == "on" || v == "1"
		pm.Save = &save
	}
	return pm
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// UserInput identifies the contributor when nobody is logged in
type UserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// TierRef references a tier in an order
type TierRef struct {
	ID int `json:"id"`
}

// OrderInput is the createOrder mutation payload
type OrderInput struct {
	Quantity      int            `json:"quantity"`
	Interval      Interval       `json:"interval,omitempty"`
	TotalAmount   int            `json:"totalAmount"`
	Description   string         `json:"description,omitempty"`
	PublicMessage string         `json:"publicMessage,omitempty"`
	Collective    Ref            `json:"collective"`
	Tier          *TierRef       `json:"tier,omitempty"`
	User          *UserInput     `json:"user,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Referral      *Ref           `json:"referral,omitempty"`
}

// Transaction is a ledger entry created by an order
type Transaction struct {
	ID int `json:"id"`
}

// Order is the entity returned by the createOrder mutation
type Order struct {
	ID             int           `json:"id"`
	Status         string        `json:"status"`
	FromCollective Ref           `json:"fromCollective"`
	Collective     Ref           `json:"collective"`
	Transactions   []Transaction `json:"transactions"`
}

// FirstTransactionID returns the id of the first transaction, 0 if none
func (o *Order) FirstTransactionID() int {
	if len(o.Transactions) == 0 {
		return 0
	}
	return o.Transactions[0].ID
}

// EventInput is the createEvent/editEvent mutation payload
type EventInput struct {
	ID                 int       `json:"id,omitempty"`
	Slug               string    `json:"slug,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	LongDescription    string    `json:"longDescription,omitempty"`
	StartsAt           string    `json:"startsAt,omitempty"`
	EndsAt             string    `json:"endsAt,omitempty"`
	Timezone           string    `json:"timezone,omitempty"`
	Location           *Location `json:"location,omitempty"`
	ParentCollectiveID int       `json:"ParentCollectiveId,omitempty"`
}

// CollectiveInput is the createCollective mutation payload
type CollectiveInput struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Type     CollectiveType `json:"type"`
	Location Location       `json:"location"`
	Tiers    []Tier         `json:"tiers"`
}
