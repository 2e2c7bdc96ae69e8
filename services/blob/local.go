// Package blobsvc stores backup files either in a local directory or in an S3 compatible
// bucket (minio).
package blobsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
)

// LocalStore writes objects as files under a directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory %s", dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	fp := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(fp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "creating file %s", fp)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrapf(err, "writing file %s", fp)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing file %s", fp)
	}
	return fp, nil
}

// New returns the minio store when an endpoint is configured, otherwise the local store.
func New(ctx context.Context, conf core.BackupConfig, logger core.Logger) (backup.Store, error) {
	if conf.Endpoint == "" {
		dir := conf.Dir
		if dir == "" {
			dir = "backups"
		}
		return NewLocalStore(dir)
	}
	return NewMinioStore(ctx, conf, logger)
}

var (
	_ backup.Store = (*LocalStore)(nil)
	_ backup.Store = (*MinioStore)(nil)
)
