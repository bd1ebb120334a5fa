package partner

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/kegledger/backend/internal/domain/shared"
)

// Client is an account that receives kegs, cups and equipment on deposit.
type Client struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(200);not null;default:''"`
	Phone   string `gorm:"type:varchar(50);not null;default:''"`
	Address string `gorm:"type:text;not null;default:''"`
	Notes   string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// ContactInfo groups the optional contact fields of a client.
type ContactInfo struct {
	Email   string
	Phone   string
	Address string
	Notes   string
}

// NewClient creates a new client
func NewClient(name string, contact ContactInfo) (*Client, error) {
	c := &Client{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(name, contact); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// Update replaces name and contact details.
func (c *Client) Update(name string, contact ContactInfo) error {
	name = strings.TrimSpace(name)
	if err := validateClientName(name); err != nil {
		return err
	}
	email := strings.TrimSpace(contact.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewValidationError("invalid client email %q", email)
		}
	}

	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(contact.Phone)
	c.Address = strings.TrimSpace(contact.Address)
	c.Notes = contact.Notes
	c.Touch()
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewValidationError("client name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("client name cannot exceed 200 characters")
	}
	return nil
}
