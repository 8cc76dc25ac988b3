// Package models contains the shared data structures for vocabulary extraction.
package models

// Card represents a single flashcard-ready vocabulary record.
//
// Word is the front of the card. Back carries the definition plus any
// parenthesized example sentences as free text. Tags is typically a part
// of speech label.
type Card struct {
	Word string `json:"word" yaml:"word"`
	Back string `json:"back" yaml:"back"`
	Tags string `json:"tags" yaml:"tags"`
}
