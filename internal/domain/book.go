package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlankTitle is returned when a book is created or updated without a title.
	ErrBlankTitle = errors.New("book title must not be blank")

	// ErrBlankAuthor is returned when a book is created or updated without an author.
	ErrBlankAuthor = errors.New("book author must not be blank")

	// ErrNegativePurchasePrice is returned when a purchase price below zero is supplied.
	// A price of exactly zero is valid: gifted or inherited copies are recorded at zero.
	ErrNegativePurchasePrice = errors.New("purchase price must not be negative")
)

// Books is an alias type for a slice of Book.
type Books = []Book

// Book is a single copy in the collection.
//
// Every descriptive field beyond title and author is optional and modeled
// as a pointer: nil means "not recorded", while a pointed-to zero value is
// a real recorded value. PurchasePriceCents in particular distinguishes
// "never priced" (nil) from "acquired for nothing" (pointer to 0).
type Book struct {
	ID                 uuid.UUID       `json:"id"`
	Title              string          `json:"title"`
	Author             string          `json:"author"`
	PublisherID        *uuid.UUID      `json:"publisher_id,omitempty"`
	Edition            *string         `json:"edition,omitempty"`
	Binding            *string         `json:"binding,omitempty"`
	Condition          *ConditionGrade `json:"condition,omitempty"`
	PurchasePriceCents *int64          `json:"purchase_price_cents,omitempty"`
	Provenance         *string         `json:"provenance,omitempty"`
	AcquiredAt         *time.Time      `json:"acquired_at,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	Version            uint            `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Validate checks the invariants that hold for every stored book.
func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrBlankTitle
	}

	if strings.TrimSpace(b.Author) == "" {
		return ErrBlankAuthor
	}

	if b.PurchasePriceCents != nil && *b.PurchasePriceCents < 0 {
		return ErrNegativePurchasePrice
	}

	if b.Condition != nil {
		if _, err := ParseConditionGrade(b.Condition.String()); err != nil {
			return err
		}
	}

	return nil
}
