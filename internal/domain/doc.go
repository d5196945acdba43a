// Package domain holds the entities of the collection: books, publishers,
// users and sessions, together with their validation rules.
//
// The types here are storage- and transport-agnostic; the bookstore package
// persists them and the httpapi package serializes them. Optionality of
// descriptive book fields is expressed with pointers so that a recorded
// zero value (a purchase price of 0 cents) never collapses into "absent".
package domain
