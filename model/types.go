package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Ordinal is the dense position of a record in corpus order.
type Ordinal uint32

// Language selects the text field a query runs against.
type Language string

const (
	Arabic  Language = "arabic"
	English Language = "english"
	// Both runs a query against Arabic and English and sums the scores.
	Both Language = "both"
)

// String returns the language name.
func (l Language) String() string { return string(l) }

// Record is a single corpus node. Text fields are stored verbatim.
type Record struct {
	ID         string `msgpack:"id" json:"id"`
	Collection string `msgpack:"collection" json:"collection"`
	Book       int    `msgpack:"book" json:"book"`
	Number     int    `msgpack:"number" json:"number"`
	Arabic     string `msgpack:"arabic" json:"arabic"`
	English    string `msgpack:"english,omitempty" json:"english,omitempty"`
	Isnad      string `msgpack:"isnad,omitempty" json:"isnad,omitempty"`
	Reference  string `msgpack:"reference,omitempty" json:"reference,omitempty"`
	Grade      string `msgpack:"grade,omitempty" json:"grade,omitempty"`
	URL        string `msgpack:"url,omitempty" json:"url,omitempty"`
}

// HasText reports whether the record carries any Arabic or English text.
func (r *Record) HasText() bool {
	return strings.TrimSpace(r.Arabic) != "" || strings.TrimSpace(r.English) != ""
}

// RawRecord is a record as produced by the upstream scraper.
// Only ID (or Collection/Volume/Number) and one text field are required.
type RawRecord struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Volume     int    `json:"volume"`
	Book       int    `json:"book"`
	Number     int    `json:"number"`
	URL        string `json:"url"`
	Arabic     string `json:"arabic"`
	English    string `json:"english"`
	Reference  string `json:"reference"`
	Grade      string `json:"grade"`
	Isnad      string `json:"isnad"`
}

// Scored is a ranked engine result.
type Scored struct {
	ID    string
	Score float64
}

// Hit is a scored record returned by the query facade.
type Hit struct {
	Record
	Score float64 `json:"score"`
}

// Rawi is a deduplicated narrator.
type Rawi struct {
	// Name is the canonical spelling (the most frequent alias).
	Name string `json:"name"`
	// Aliases holds every distinct spelling merged into this narrator.
	Aliases []string `json:"aliases"`
	// Hadiths lists the identifiers of the hadiths the narrator appears in.
	Hadiths []string `json:"hadiths"`
}

// Edge states that From reports the hadith from To, at chain position
// Position (0-based index of From within the chain).
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Hadith   string `json:"hadith"`
	Position int    `json:"position"`
}

// ParseID splits an identifier into collection, book and number.
// The collection may itself contain underscores.
func ParseID(id string) (collection string, book, number int, err error) {
	last := strings.LastIndexByte(id, '_')
	if last <= 0 {
		return "", 0, 0, fmt.Errorf("invalid identifier %q", id)
	}
	mid := strings.LastIndexByte(id[:last], '_')
	if mid <= 0 {
		return "", 0, 0, fmt.Errorf("invalid identifier %q", id)
	}
	book, err = strconv.Atoi(id[mid+1 : last])
	if err != nil || book < 0 {
		return "", 0, 0, fmt.Errorf("invalid book in identifier %q", id)
	}
	number, err = strconv.Atoi(id[last+1:])
	if err != nil || number < 0 {
		return "", 0, 0, fmt.Errorf("invalid number in identifier %q", id)
	}
	return id[:mid], book, number, nil
}

// FormatID builds an identifier from its parts.
func FormatID(collection string, book, number int) string {
	return fmt.Sprintf("%s_%d_%d", collection, book, number)
}
