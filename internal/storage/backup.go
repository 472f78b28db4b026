package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager copies the dataset database aside and restores it. Imports
// replace every dataset row, so a backup is taken before each one.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a new backup manager for the given database path.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// BackupDir defaults to a "backups" directory next to the database.
	BackupDir string

	// BackupName is the file name without extension. Defaults to a timestamp.
	BackupName string

	// VerifyBackup checks the copy holds the dataset tables.
	VerifyBackup bool
}

// DefaultBackupConfig returns a BackupConfig with verification on.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{VerifyBackup: true}
}

// BackupDir returns the default backup directory path.
func (bm *BackupManager) BackupDir() string {
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// returns its path.
func (bm *BackupManager) Backup(config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	backupDir := config.BackupDir
	if backupDir == "" {
		backupDir = bm.BackupDir()
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := config.BackupName
	if name == "" {
		name = "dataset_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(backupDir, name+".db")
	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup already exists: %s", backupPath)
	}

	source, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()

	if _, err := source.Exec("VACUUM INTO " + quoteLiteral(backupPath)); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if config.VerifyBackup {
		if err := VerifyBackup(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	return backupPath, nil
}

// Restore replaces the database with a verified backup. The current file is
// kept as <db>.old.<timestamp>. Callers must close open connections first.
func (bm *BackupManager) Restore(backupPath string) error {
	if err := VerifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to copy backup: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		oldPath := bm.dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}

	// WAL side files belong to the database being replaced.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(bm.dbPath + suffix)
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// VerifyBackup checks that path is an SQLite database holding the dataset tables.
func VerifyBackup(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer db.Close()

	var tables int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		AND name IN ('dialogue_sentiments', 'sentence_types', 'modality_pauses', 'flow_events')`).Scan(&tables)
	if err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}
	if tables != 4 {
		return fmt.Errorf("backup holds %d of 4 dataset tables", tables)
	}
	return nil
}

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Checksum string    `json:"checksum"`
}

// ListBackups returns the backups in backupDir, newest first. An empty
// backupDir means the default directory.
func (bm *BackupManager) ListBackups(backupDir string) ([]BackupInfo, error) {
	if backupDir == "" {
		backupDir = bm.BackupDir()
	}

	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(backupDir, entry.Name())
		checksum, err := checksumFile(path)
		if err != nil {
			checksum = "unknown"
		}
		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
