// Package sqldb provides a SQL-backed document store built on GORM.
package sqldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/pkg/randid"
)

// documentRow is the table layout for stored documents. Data and permissions
// are kept as JSON text; ordering on data fields uses json_extract.
type documentRow struct {
	DatabaseID   string    `gorm:"primaryKey;size:64"`
	CollectionID string    `gorm:"primaryKey;size:64"`
	ID           string    `gorm:"primaryKey;size:64"`
	Data         string    `gorm:"type:text;not null"`
	Permissions  string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"index"`
}

func (documentRow) TableName() string {
	return "documents"
}

// DocStore implements docstore.Store using a GORM database.
type DocStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) a SQLite database file and migrates it.
func OpenSQLite(path string) (*DocStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return New(db)
}

// New wraps db and runs the schema migration.
func New(db *gorm.DB) (*DocStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &DocStore{db: db, now: time.Now}, nil
}

// Close closes the underlying connection pool.
func (s *DocStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListDocuments queries a collection, ordering on a JSON data field.
func (s *DocStore) ListDocuments(ctx context.Context, databaseID, collectionID string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).
		Where("database_id = ? AND collection_id = ?", databaseID, collectionID)

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		// Field name is validated by q.Validate, safe to interpolate.
		tx = tx.Order(fmt.Sprintf("json_extract(data, '$.%s') %s", q.OrderBy, dir))
	}
	tx = tx.Order("created_at ASC").Order("rowid ASC")

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []documentRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	docs := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CreateDocument inserts a document, failing if the ID is already used in the
// collection.
func (s *DocStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any, perms []docstore.Permission) (docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return docstore.Document{}, err
	}

	if documentID == "" {
		documentID = randid.Document()
	}
	if perms == nil {
		perms = []docstore.Permission{}
	}

	doc := docstore.Document{
		ID:           documentID,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		CreatedAt:    s.now().UTC(),
		Permissions:  perms,
		Data:         data,
	}

	row, err := fromDocument(doc)
	if err != nil {
		return docstore.Document{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&documentRow{}).
			Where("database_id = ? AND collection_id = ? AND id = ?", databaseID, collectionID, documentID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", docstore.ErrDocumentExists, documentID)
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return docstore.Document{}, err
	}

	return doc, nil
}

func fromDocument(doc docstore.Document) (documentRow, error) {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return documentRow{}, fmt.Errorf("encode data: %w", err)
	}
	perms, err := json.Marshal(doc.Permissions)
	if err != nil {
		return documentRow{}, fmt.Errorf("encode permissions: %w", err)
	}
	return documentRow{
		DatabaseID:   doc.DatabaseID,
		CollectionID: doc.CollectionID,
		ID:           doc.ID,
		Data:         string(data),
		Permissions:  string(perms),
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r documentRow) toDocument() (docstore.Document, error) {
	doc := docstore.Document{
		ID:           r.ID,
		DatabaseID:   r.DatabaseID,
		CollectionID: r.CollectionID,
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Data), &doc.Data); err != nil {
		return docstore.Document{}, fmt.Errorf("decode data of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Permissions), &doc.Permissions); err != nil {
		return docstore.Document{}, fmt.Errorf("decode permissions of %s: %w", r.ID, err)
	}
	return doc, nil
}
