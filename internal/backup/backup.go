// Package backup snapshots and restores the SQLite habit database.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/logger"
)

// stampFormat is the UTC timestamp embedded in backup file names
const stampFormat = "20060102T150405Z"

// ErrNotHabitDatabase is returned when a file opens as SQLite but lacks the habit schema
var ErrNotHabitDatabase = errors.New("file is not a daystreak database")

// Info describes one backup file
type Info struct {
	Path      string
	Name      string
	CreatedAt time.Time
	Size      int64

	seq int
}

// Manager creates, lists, rotates and restores backups kept next to the database
type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the clock used to stamp backup names
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRetention sets how many backups rotation keeps
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

// NewManager returns a manager storing backups in a directory beside dbPath
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:   constants.MaxBackups,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup directory
func (m *Manager) Dir() string {
	return m.dir
}

// Create snapshots the database and rotates old backups. reason is only logged.
func (m *Manager) Create(reason string) (Info, error) {
	info, err := m.create()
	if err != nil {
		return Info{}, err
	}
	logger.Info("backup created", "file", info.Name, "reason", reason)

	if err := m.rotate(); err != nil {
		logger.Warn("backup rotation failed", "err", err)
	}
	return info, nil
}

func (m *Manager) create() (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := m.snapshot(path); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}
	return stat(path)
}

// nextPath picks an unused file name for the current time, adding a counter on collision
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().UTC().Format(stampFormat)
	for n := 0; n <= 100; n++ {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += "-" + strconv.Itoa(n)
		}
		path := filepath.Join(m.dir, name+constants.BackupFileSuffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// snapshot writes a consistent copy with VACUUM INTO, falling back to a file copy
func (m *Manager) snapshot(dest string) error {
	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	if err := checkSchema(src); err != nil {
		return err
	}
	if _, err := src.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "err", err)
		src.Close()
		return copyFile(m.dbPath, dest)
	}
	return nil
}

// List returns the backups, newest first. Files that do not follow the naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, ok := parseName(entry.Name()); !ok {
			continue
		}
		info, err := stat(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].seq > backups[j].seq
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Find resolves a backup by file name or path
func (m *Manager) Find(name string) (Info, error) {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return stat(name)
	}
	return stat(filepath.Join(m.dir, name))
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for _, b := range backups[min(m.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Name, err)
		}
		logger.Debug("backup rotated out", "file", b.Name)
	}
	return nil
}

// Restore replaces the database with a backup. The current database, if any,
// is backed up first and that safety copy is returned. The store must be
// closed while this runs.
func (m *Manager) Restore(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := Verify(path); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety *Info
	if _, err := os.Stat(m.dbPath); err == nil {
		info, err := m.create()
		if err != nil {
			return nil, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		safety = &info
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return safety, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("failed to remove temporary restore file", "file", tmp, "err", rmErr)
		}
		return safety, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("database restored", "from", filepath.Base(path))
	return safety, nil
}

// Verify checks that path is a readable SQLite database carrying the habit schema
func Verify(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return checkSchema(db)
}

func checkSchema(db *sql.DB) error {
	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'habits'").Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHabitDatabase
	}
	return nil
}

// parseName extracts the timestamp and collision counter from a backup file name
func parseName(name string) (time.Time, int, bool) {
	stamp, ok := strings.CutPrefix(name, constants.BackupFilePrefix)
	if !ok {
		return time.Time{}, 0, false
	}
	stamp, ok = strings.CutSuffix(stamp, constants.BackupFileSuffix)
	if !ok {
		return time.Time{}, 0, false
	}
	seq := 0
	if base, counter, found := strings.Cut(stamp, "-"); found {
		n, err := strconv.Atoi(counter)
		if err != nil || n <= 0 {
			return time.Time{}, 0, false
		}
		stamp, seq = base, n
	}
	ts, err := time.Parse(stampFormat, stamp)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	created, seq, ok := parseName(fi.Name())
	if !ok {
		created = fi.ModTime().UTC()
	}
	return Info{Path: path, Name: fi.Name(), CreatedAt: created, Size: fi.Size(), seq: seq}, nil
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
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
