package model

// CardProduct is a card offering (e.g. a specific travel card) that
// defines a set of benefits.
type CardProduct struct {
	ID       string
	Name     string
	Issuer   string
	Benefits []CardBenefit
}

// LinkedAccount associates a synced bank/card account with the card
// product it was issued under. Only linked accounts participate in
// benefit matching.
type LinkedAccount struct {
	AccountID string
	ProductID string
	UserID    string
}
