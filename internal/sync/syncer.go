package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats summarizes one SyncAll run.
type Stats struct {
	New            int
	Updated        int
	Skipped        int
	Errors         int
	PagesExtracted int
}

// Syncer mirrors the cookbook folder from Drive into the local images
// directory, expanding PDFs into page images along the way. Sync state per
// Drive file lives in the sync_files table so unchanged files are not
// downloaded twice.
type Syncer struct {
	cloud     CloudFiles
	pdf       PageExtractor
	repo      *Repository
	imagesDir string
}

func NewSyncer(cloud CloudFiles, pdf PageExtractor, repo *Repository, imagesDir string) *Syncer {
	return &Syncer{cloud: cloud, pdf: pdf, repo: repo, imagesDir: imagesDir}
}

// SyncAll lists the Drive folder and brings every supported file up to date
// locally. Individual file failures are recorded and counted, not fatal.
func (s *Syncer) SyncAll(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create images directory: %w", err)
	}

	files, err := s.cloud.List(ctx)
	if err != nil {
		return stats, err
	}
	log.Printf("Found %d file(s) in Drive folder", len(files))

	for _, f := range files {
		if !isSupportedFile(f.MimeType, f.Name) {
			log.Printf("Skipping unsupported file: %s", f.Name)
			stats.Skipped++
			continue
		}

		existing, err := s.repo.Get(ctx, f.ID)
		if err != nil {
			return stats, err
		}
		if existing != nil && existing.LastModified == f.ModifiedTime && existing.SyncStatus == "synced" {
			stats.Skipped++
			continue
		}

		pages, err := s.syncFile(ctx, f)
		if err != nil {
			stats.Errors++
			log.Printf("Error syncing %s: %v", f.Name, err)
			continue
		}

		if existing != nil {
			stats.Updated++
		} else {
			stats.New++
		}
		stats.PagesExtracted += pages
		log.Printf("Synced %s (%d page(s))", f.Name, pages)
	}
	return stats, nil
}

// syncFile downloads one Drive file, expands it to page images when it is a
// PDF, and records the outcome. The returned count is the number of page
// images now available for this file.
func (s *Syncer) syncFile(ctx context.Context, f DriveFile) (int, error) {
	ft := fileType(f.MimeType, f.Name)
	localPath := filepath.Join(s.imagesDir, f.Name)

	record := SyncFile{
		DriveFileID:  f.ID,
		LocalPath:    localPath,
		LastModified: f.ModifiedTime,
		FileType:     ft,
	}

	fail := func(err error) (int, error) {
		record.SyncStatus = "error"
		record.ErrorMessage = err.Error()
		if uerr := s.repo.Upsert(ctx, record); uerr != nil {
			log.Printf("Failed to record sync error for %s: %v", f.Name, uerr)
		}
		return 0, err
	}

	if err := s.cloud.Download(ctx, f.ID, localPath); err != nil {
		return fail(err)
	}

	pages := 1
	if ft == "pdf" {
		extracted, err := s.pdf.ExtractPages(ctx, localPath, s.imagesDir)
		if err != nil {
			os.Remove(localPath)
			return fail(fmt.Errorf("failed to extract pdf pages: %w", err))
		}
		pages = len(extracted)
	}

	record.SyncStatus = "synced"
	if err := s.repo.Upsert(ctx, record); err != nil {
		return 0, err
	}
	return pages, nil
}

// UnprocessedImages returns every page image currently in the images
// directory, sorted by name. Extraction-level dedupe decides what is new.
func (s *Syncer) UnprocessedImages() ([]string, error) {
	entries, err := os.ReadDir(s.imagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read images directory: %w", err)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(s.imagesDir, e.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}
