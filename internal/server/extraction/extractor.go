// Package extraction defines the boundary to whatever reads uploaded invoice
// documents and turns them into field values.
package extraction

import (
	"context"

	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

// Extractor inspects an uploaded document, addressed by a presigned download
// URL, and reports the attributes it managed to recognize. Unrecognized
// attributes stay nil. The rest of the system stores the values verbatim and
// never interprets them.
type Extractor interface {
	Extract(ctx context.Context, fileURL string) (*models.ExtractionResult, error)
}

// NopExtractor recognizes nothing. It keeps the server usable when no
// extraction deployment is configured; every field starts out null and users
// fill them in by hand.
type NopExtractor struct{}

func (NopExtractor) Extract(ctx context.Context, fileURL string) (*models.ExtractionResult, error) {
	return &models.ExtractionResult{}, nil
}
