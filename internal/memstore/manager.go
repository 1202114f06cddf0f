package memstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/litetable/litetable-mapper/internal/litetable"
)

const (
	backupDirName      = ".table_backup"
	dataFamilyLockFile = "families.config.json"
	backupFileGlob     = "backup-*.db"
)

var (
	defaultShardCount = 2
	defaultMaxBackups = 5
)

// ErrFamilyNotAllowed is returned when a cell names a family that was never created.
var ErrFamilyNotAllowed = errors.New("column family not allowed")

type emitter interface {
	Emit(event *litetable.Event)
}

// Manager is a sharded in-memory wide-column store.
type Manager struct {
	rootDir      string
	dataDir      string
	familiesFile string
	maxVersions  int
	maxBackups   int

	// familyMutex guards allowedFamilies
	familyMutex     sync.RWMutex
	allowedFamilies []string

	cdc emitter

	keys       *keyIndex
	shardCount int
	shardMap   []*shard

	// now is the clock used for writes without an explicit timestamp
	now func() int64
}

type Config struct {
	// RootDir enables persistence: families are kept in a lock file and the data is backed up
	// on Stop and restored on Start. Empty keeps everything in memory.
	RootDir string
	// ShardCount defaults to 2.
	ShardCount int
	// MaxVersions caps the versions kept per cell; 0 keeps every version.
	MaxVersions int
	// MaxBackups is the number of backup files kept. Defaults to 5.
	MaxBackups int
	// Families are created on construction.
	Families []string
	// CDC receives one event per written or deleted cell.
	CDC emitter
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ShardCount < 0 || c.ShardCount > 50 {
		errGrp = append(errGrp, fmt.Errorf("shard count must be between 1 and 50"))
	}
	if c.MaxVersions < 0 {
		errGrp = append(errGrp, fmt.Errorf("max versions cannot be negative"))
	}
	if c.MaxBackups < 0 || c.MaxBackups > 50 {
		errGrp = append(errGrp, fmt.Errorf("max backups must be between 1 and 50"))
	}
	return errors.Join(errGrp...)
}

// New creates a new in-memory storage manager.
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	shardCount := cfg.ShardCount
	if shardCount == 0 {
		shardCount = defaultShardCount
	}
	maxBackups := cfg.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	m := &Manager{
		rootDir:     cfg.RootDir,
		maxVersions: cfg.MaxVersions,
		maxBackups:  maxBackups,
		cdc:         cfg.CDC,
		keys:        newKeyIndex(),
		shardCount:  shardCount,
		now:         func() int64 { return time.Now().UnixNano() },
	}

	if cfg.RootDir != "" {
		m.dataDir = filepath.Join(cfg.RootDir, backupDirName)
		if err := os.MkdirAll(m.dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		m.familiesFile = filepath.Join(cfg.RootDir, dataFamilyLockFile)

		// load any existing column families
		if err := m.loadAllowedFamilies(); err != nil {
			return nil, fmt.Errorf("failed to load allowed families: %w", err)
		}
	}

	shards, err := initializeDataShards(shardCount)
	if err != nil {
		return nil, err
	}
	m.shardMap = shards

	if len(cfg.Families) > 0 {
		if err = m.CreateFamilies(cfg.Families...); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Start restores the latest backup when persistence is enabled.
func (m *Manager) Start() error {
	if m.dataDir == "" {
		return nil
	}
	return m.loadFromLatestBackup()
}

// Stop writes a backup when persistence is enabled.
func (m *Manager) Stop() error {
	if m.dataDir == "" {
		return nil
	}
	if err := m.saveBackup(m.snapshot()); err != nil {
		return err
	}
	m.maintainBackupLimit()
	return nil
}

func (m *Manager) Name() string {
	return "Memory Storage"
}

// CreateFamilies allows cells to be written to the given families.
func (m *Manager) CreateFamilies(families ...string) error {
	m.familyMutex.Lock()
	defer m.familyMutex.Unlock()

	// create a copy of configured families
	newFamilies := slices.Clone(m.allowedFamilies)

	// Add each family to the slice if it doesn't already exist
	for _, family := range families {
		family = strings.TrimSpace(family)
		if family == "" {
			return errors.New("family name cannot be empty")
		}
		if !slices.Contains(newFamilies, family) {
			newFamilies = append(newFamilies, family)
		}
	}
	m.allowedFamilies = newFamilies

	if m.familiesFile == "" {
		return nil
	}
	data, err := json.Marshal(newFamilies)
	if err != nil {
		return fmt.Errorf("failed to marshal allowed families: %w", err)
	}
	return os.WriteFile(m.familiesFile, data, 0644)
}

// Families returns a copy of the allowed families.
func (m *Manager) Families() []string {
	m.familyMutex.RLock()
	defer m.familyMutex.RUnlock()
	return slices.Clone(m.allowedFamilies)
}

func (m *Manager) IsFamilyAllowed(family string) bool {
	m.familyMutex.RLock()
	defer m.familyMutex.RUnlock()
	return slices.Contains(m.allowedFamilies, family)
}

// Len is the number of stored rows.
func (m *Manager) Len() int {
	return m.keys.len()
}

func (m *Manager) loadAllowedFamilies() error {
	data, err := os.ReadFile(m.familiesFile)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, not an error
			return nil
		}
		return fmt.Errorf("failed to read allowed families file: %w", err)
	}

	return json.Unmarshal(data, &m.allowedFamilies)
}

func (m *Manager) emit(event *litetable.Event) {
	if m.cdc == nil {
		return
	}
	m.cdc.Emit(event)
}
