package builder

import (
	"fmt"
	"strings"

	"github.com/hupe1980/hfabric/isnad"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
)

// resolveID returns the record identifier, deriving it from collection and
// volume/book and number when the id field is empty.
func resolveID(raw *model.RawRecord) string {
	if id := strings.TrimSpace(raw.ID); id != "" {
		return id
	}
	book := raw.Book
	if book == 0 {
		book = raw.Volume
	}
	coll := strings.ToLower(strings.TrimSpace(raw.Collection))
	if coll == "" || book <= 0 {
		return ""
	}
	return model.FormatID(coll, book, raw.Number)
}

// toRecord validates a raw record. Text fields are copied verbatim.
func toRecord(raw *model.RawRecord, file string, line int) (model.Record, *ValidationError) {
	id := resolveID(raw)
	if id == "" {
		return model.Record{}, &ValidationError{File: file, Line: line, Reason: ReasonMissingID}
	}
	coll, book, number, err := model.ParseID(id)
	if err != nil {
		return model.Record{}, &ValidationError{File: file, Line: line, ID: id, Reason: ReasonInvalidID, Err: err}
	}
	// The collection names a corpus table file.
	if !manifest.ValidName(coll) {
		return model.Record{}, &ValidationError{File: file, Line: line, ID: id, Reason: ReasonInvalidID,
			Err: fmt.Errorf("invalid collection %q", coll)}
	}
	rec := model.Record{
		ID:         id,
		Collection: coll,
		Book:       book,
		Number:     number,
		Arabic:     raw.Arabic,
		English:    raw.English,
		Isnad:      raw.Isnad,
		Reference:  raw.Reference,
		Grade:      raw.Grade,
		URL:        raw.URL,
	}
	if !rec.HasText() {
		return model.Record{}, &ValidationError{File: file, Line: line, ID: id, Reason: ReasonNoText}
	}
	if strings.TrimSpace(rec.Isnad) == "" {
		rec.Isnad = isnad.ExtractIsnad(rec.Arabic)
	}
	return rec, nil
}
