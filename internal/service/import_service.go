package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinvita/clinstock/internal/ingest"
	"github.com/clinvita/clinstock/internal/repository"
	"github.com/clinvita/clinstock/internal/storage"
)

// ImportService loads the clinic's spreadsheets into the database. Each
// import optionally archives the source file to object storage and triggers
// the follow-up work its data affects.
type ImportService struct {
	catalog   repository.CatalogRepository
	movements repository.MovementRepository
	lots      repository.LotRepository
	verifier  *VerifyService
	archive   storage.ObjectStorage
}

// NewImportService builds the import service. archive may be nil, in which
// case imported files are not archived.
func NewImportService(
	catalog repository.CatalogRepository,
	movements repository.MovementRepository,
	lots repository.LotRepository,
	verifier *VerifyService,
	archive storage.ObjectStorage,
) *ImportService {
	return &ImportService{
		catalog:   catalog,
		movements: movements,
		lots:      lots,
		verifier:  verifier,
		archive:   archive,
	}
}

// ImportCatalog upserts products and consumption dimensions from a catalog
// sheet. Existing codes are updated in place.
func (s *ImportService) ImportCatalog(ctx context.Context, path string) error {
	products, dims, err := ingest.LoadCatalog(path)
	if err != nil {
		return err
	}

	for i := range products {
		if err := s.catalog.UpsertProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("catalog import of %s: %w", products[i].Code, err)
		}
	}
	for i := range dims {
		if err := s.catalog.UpsertDimension(ctx, &dims[i]); err != nil {
			return fmt.Errorf("dimension import of %s: %w", dims[i].Code, err)
		}
	}

	s.archiveFile(ctx, "catalog", path)
	log.Info().Int("products", len(products)).Int("dimensions", len(dims)).Msg("catalog imported")
	return nil
}

// ImportEntries appends entry records and replaces the lot snapshot state
// when the sheet carries lot quantities.
func (s *ImportService) ImportEntries(ctx context.Context, path string) error {
	entries, lots, err := ingest.LoadEntries(path)
	if err != nil {
		return err
	}

	if err := s.movements.InsertEntries(ctx, entries); err != nil {
		return fmt.Errorf("entries import: %w", err)
	}
	if len(lots) > 0 {
		if err := s.lots.ReplaceSnapshots(ctx, lots); err != nil {
			return fmt.Errorf("lot snapshot import: %w", err)
		}
	}

	s.archiveFile(ctx, "entries", path)
	log.Info().Int("entries", len(entries)).Int("lots", len(lots)).Msg("entries imported")
	return nil
}

// ImportExits appends exit records and rebuilds the demand aggregates, since
// every exit is a demand observation.
func (s *ImportService) ImportExits(ctx context.Context, path string) error {
	exits, err := ingest.LoadExits(path)
	if err != nil {
		return err
	}

	if err := s.movements.InsertExits(ctx, exits); err != nil {
		return fmt.Errorf("exits import: %w", err)
	}
	if err := s.verifier.RebuildDemand(ctx); err != nil {
		return fmt.Errorf("demand rebuild after exits import: %w", err)
	}

	s.archiveFile(ctx, "exits", path)
	log.Info().Int("exits", len(exits)).Msg("exits imported")
	return nil
}

// archiveFile uploads the imported file under a dated key. Archiving is
// best-effort; an unreachable store must not fail the import itself.
func (s *ImportService) archiveFile(ctx context.Context, kind, path string) {
	if s.archive == nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not read file for archiving")
		return
	}

	key := fmt.Sprintf("%s/%s/%s", kind, time.Now().Format("2006-01-02"), filepath.Base(path))
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("could not archive imported file")
		return
	}
	log.Info().Str("key", key).Msg("imported file archived")
}
