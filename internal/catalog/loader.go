// internal/catalog/loader.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	stderrors "abiturbot/internal/common/errors"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/models"
)

// Load reads, validates and decodes the catalog file. The result is
// immutable for the life of the process; callers treat it as read-only.
func Load(path string, log logger.Logger) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stderrors.NewCatalogUnavailableError(fmt.Errorf("read %s: %w", path, err))
	}

	if err := validateDocument(data); err != nil {
		return nil, stderrors.NewCatalogUnavailableError(err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, stderrors.NewCatalogUnavailableError(fmt.Errorf("decode %s: %w", path, err))
	}

	programs := 0
	for i := range catalog.Universities {
		programs += len(catalog.Universities[i].Programs)
	}
	log.Info("catalog loaded", map[string]interface{}{
		"path":         path,
		"universities": len(catalog.Universities),
		"programs":     programs,
	})

	return &catalog, nil
}
