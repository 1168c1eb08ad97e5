package models

import (
	"strings"
	"time"
)

// Region is a sales region, unique by name.
type Region struct {
	ID   int64
	Name string
}

// Country belongs to one Region.
type Country struct {
	ID       int64
	Name     string
	RegionID int64
}

// Values returns the insert values in CountryTable column order.
func (c Country) Values() []any { return []any{c.Name, c.RegionID} }

// Customer is one customer occurrence from the source; customers are not deduplicated.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Address   string
	City      string
	CountryID int64
}

// Values returns the insert values in CustomerTable column order.
func (c Customer) Values() []any {
	return []any{c.FirstName, c.LastName, c.Address, c.City, c.CountryID}
}

// Key returns the business key used to resolve this customer.
func (c Customer) Key() string { return CustomerKey(c.FirstName, c.LastName) }

// ProductCategory is unique by name.
type ProductCategory struct {
	ID          int64
	Name        string
	Description string
}

// Values returns the insert values in ProductCategoryTable column order.
func (c ProductCategory) Values() []any { return []any{c.Name, c.Description} }

// Product belongs to one ProductCategory.
type Product struct {
	ID         int64
	Name       string
	UnitPrice  float64
	CategoryID int64
}

// Values returns the insert values in ProductTable column order.
func (p Product) Values() []any { return []any{p.Name, p.UnitPrice, p.CategoryID} }

// OrderDetail is one item of one source order line.
type OrderDetail struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	OrderDate  time.Time
	Quantity   int
}

// SplitCustomerName splits a full name at the first space. A name without a
// space has an empty last name.
func SplitCustomerName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	first, last, _ = strings.Cut(full, " ")
	return strings.TrimSpace(first), strings.TrimSpace(last)
}

// CustomerKey joins first and last name into the customer business key.
func CustomerKey(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
