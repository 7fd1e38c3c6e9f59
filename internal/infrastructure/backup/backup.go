package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"grocery-backend/internal/config"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/pkg/logger"
)

// Service dumps the database with pg_dump and ships the archive to the
// asset host under the database/ folder. The local file is removed once
// the upload succeeds.
type Service struct {
	db    config.DatabaseConfig
	dir   string
	store storage.AssetStore
}

func NewService(db config.DatabaseConfig, cfg config.BackupConfig, store storage.AssetStore) *Service {
	return &Service{
		db:    db,
		dir:   cfg.Directory,
		store: store,
	}
}

func (s *Service) Run(ctx context.Context) error {
	name := fmt.Sprintf("%s-%s.dump", s.db.Name, time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	cmd := exec.CommandContext(ctx, "pg_dump",
		"--format=custom",
		"--compress=6",
		"--file="+path,
		"--host="+s.db.Host,
		"--port="+s.db.Port,
		"--username="+s.db.User,
		"--dbname="+s.db.Name,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+s.db.Password)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pg_dump: %w: %s", err, out)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dump %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat dump %s: %w", path, err)
	}

	result, err := s.store.Upload(ctx, "database", name, file, info.Size(), "application/gzip")
	if err != nil {
		return fmt.Errorf("upload dump: %w", err)
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("could not remove local dump", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	logger.Info("database backup uploaded", map[string]interface{}{
		"object": result.PublicID,
		"bytes":  result.Bytes,
	})
	return nil
}
