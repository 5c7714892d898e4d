package storage

import (
	"database/sql"
	"fmt"
	"time"

	"sitebuilder/internal/domain"
)

// DocumentStore implements domain.DocumentStore. Each page row carries its
// document as JSON.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// LoadDocument returns the page's document. A page that was never saved
// yields an empty document.
func (s *DocumentStore) LoadDocument(pageID string) (domain.Document, error) {
	var raw string
	err := s.db.Conn().QueryRow(`SELECT document_json FROM pages WHERE id = ?`, pageID).Scan(&raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load document %s: %w", pageID, notFound(err))
	}
	doc, err := domain.UnmarshalDocument([]byte(raw))
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode document %s: %w", pageID, err)
	}
	return doc, nil
}

// SaveDocument overwrites the page's document.
func (s *DocumentStore) SaveDocument(pageID string, doc domain.Document) error {
	data, err := domain.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", pageID, err)
	}
	res, err := s.db.Conn().Exec(
		`UPDATE pages SET document_json = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now(), pageID,
	)
	return affectedOne(res, err, "save document "+pageID)
}

func affectedOne(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
