package domain

// Buyer identifies a chat participant as reported by the conversation
// front-end. The id doubles as the private chat id for outbound messages.
type Buyer struct {
	ID        int64
	FirstName string
	LastName  string
}

// PaymentRequest carries everything one outbound payment-initiation call
// needs. It is built per purchase attempt and not retained afterwards.
type PaymentRequest struct {
	Amount      string
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
	Title       string
	Description string
}
