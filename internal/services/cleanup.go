package services

import (
	"strings"
	"time"

	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// uploadGracePeriod spares freshly uploaded files that may belong to a
// bug form still being filled in.
const uploadGracePeriod = 24 * time.Hour

// CleanupService sweeps the uploads directory daily, deleting files no
// bug references anymore.
type CleanupService struct {
	db      *gorm.DB
	storage *Storage
	cron    *cron.Cron
}

func NewCleanupService(db *gorm.DB, storage *Storage) *CleanupService {
	return &CleanupService{
		db:      db,
		storage: storage,
		cron:    cron.New(),
	}
}

// Start schedules the nightly sweep.
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		removed, err := s.SweepUploads()
		if err != nil {
			logger.Error().Err(err).Msg("Upload sweep failed")
			return
		}
		logger.Info().Int("removed", removed).Msg("Upload sweep complete")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler.
func (s *CleanupService) Stop() {
	s.cron.Stop()
}

// SweepUploads deletes stored files that no bug references in its
// screenshots or description, skipping files younger than the grace
// period. Returns the number of files removed.
func (s *CleanupService) SweepUploads() (int, error) {
	referenced, err := s.referencedNames()
	if err != nil {
		return 0, err
	}

	names, err := s.storage.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-uploadGracePeriod)
	for _, name := range names {
		if referenced[name] {
			continue
		}
		modTime, err := s.storage.ModTime(name)
		if err != nil {
			continue
		}
		if modTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(name); err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("Failed to delete orphaned upload")
			continue
		}
		removed++
	}

	return removed, nil
}

// referencedNames collects every upload filename reachable from a bug:
// screenshot lists plus inline image URIs pasted into descriptions.
func (s *CleanupService) referencedNames() (map[string]bool, error) {
	var bugs []models.Bug
	if err := s.db.Find(&bugs).Error; err != nil {
		return nil, err
	}

	referenced := make(map[string]bool)
	for _, bug := range bugs {
		for _, uri := range bug.Screenshots {
			if name := uploadName(uri); name != "" {
				referenced[name] = true
			}
		}
		for _, name := range uploadNamesInText(bug.Description) {
			referenced[name] = true
		}
	}
	return referenced, nil
}

// uploadName extracts the stored filename from an /uploads URI.
func uploadName(uri string) string {
	idx := strings.LastIndex(uri, "/uploads/")
	if idx == -1 {
		return ""
	}
	name := uri[idx+len("/uploads/"):]
	if name == "" || strings.ContainsAny(name, "/\\") {
		return ""
	}
	return name
}

// uploadNamesInText scans markdown text for embedded /uploads URIs.
func uploadNamesInText(text string) []string {
	var names []string
	rest := text
	for {
		idx := strings.Index(rest, "/uploads/")
		if idx == -1 {
			break
		}
		rest = rest[idx+len("/uploads/"):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r == ')' || r == '"' || r == '\'' || r == ' ' || r == '\n' || r == '\t' || r == '<' || r == '>'
		})
		var name string
		if end == -1 {
			name = rest
			rest = ""
		} else {
			name = rest[:end]
			rest = rest[end:]
		}
		if name != "" && !strings.ContainsAny(name, "/\\") {
			names = append(names, name)
		}
	}
	return names
}
