package content

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"vitrine/models"
)

// Export returns the whole document as indented JSON.
func (s *Store) Export() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	s.read(func(doc *models.Document) {
		data, err = json.MarshalIndent(doc, "", "  ")
	})
	if err != nil {
		return nil, fmt.Errorf("export content: %w", err)
	}
	return data, nil
}

// Import replaces the document with data merged over the defaults. On a
// parse error the current document is left untouched.
func (s *Store) Import(data []byte) error {
	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Warn("rejected content import", zap.Error(err))
		return err
	}
	return s.mutate(OpImport, func(next *models.Document) error {
		*next = *doc
		if id := maxID(doc); id > s.lastID {
			s.lastID = id
		}
		return nil
	})
}

// Reset restores the defaults and removes the persisted copy.
func (s *Store) Reset() {
	s.mu.Lock()
	s.doc = Default()
	s.revision++
	change := Change{Op: OpReset, Revision: s.revision, At: s.now()}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to clear persisted content", zap.Error(err))
	}
	cancel()
	s.mu.Unlock()

	s.publish(change)
}
