package models

import "time"

// InvoiceSequenceModel holds the last issued sequence value per prefix and year.
type InvoiceSequenceModel struct {
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
