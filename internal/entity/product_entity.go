package entity

// Product is one catalog record. Id is the SKU printed in customer emails
// (e.g. "LTH-0978"). Stock is owned by the stock ledger; search fields are
// owned by the catalog index.
type Product struct {
	Id          string
	Name        string
	Category    string
	Stock       int
	Description string
	Season      string
}
