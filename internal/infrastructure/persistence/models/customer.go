package models

import (
	"github.com/invoiceme/backend/internal/domain/partner"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	Name       string `gorm:"type:varchar(200);not null"`
	Email      string `gorm:"type:varchar(254);not null;uniqueIndex:idx_customers_email"`
	Phone      string `gorm:"type:varchar(50)"`
	Street     string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
// A stored address that no longer validates is dropped rather than failing the read.
func (m *CustomerModel) ToDomain() *partner.Customer {
	address := valueobject.EmptyAddress()
	if m.Street != "" {
		if a, err := valueobject.NewAddress(m.Street, m.City,
			valueobject.WithPostalCode(m.PostalCode),
			valueobject.WithCountry(m.Country),
		); err == nil {
			address = a
		}
	}
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		BillingAddress:    address,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Street = c.BillingAddress.Street()
	m.City = c.BillingAddress.City()
	m.PostalCode = c.BillingAddress.PostalCode()
	m.Country = c.BillingAddress.Country()
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
