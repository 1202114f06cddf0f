package memstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/rs/zerolog/log"
)

// snapshot merges every shard into one data set.
func (m *Manager) snapshot() litetable.Data {
	data := make(litetable.Data)
	for _, s := range m.shardMap {
		s.mutex.RLock()
		for rowKey, columns := range s.data {
			data[rowKey] = (&litetable.Row{Key: rowKey, Columns: columns}).Clone().Columns
		}
		s.mutex.RUnlock()
	}
	return data
}

// saveBackup creates a new backup file with the provided data. It does not interact with the
// shards.
func (m *Manager) saveBackup(data litetable.Data) error {
	start := time.Now()
	filename := filepath.Join(m.dataDir, fmt.Sprintf("backup-%d.db", start.UnixNano()))

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize backup: %w", err)
	}

	if err = os.WriteFile(filename, dataBytes, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	log.Debug().Str("duration", time.Since(start).String()).Msgf("Backup saved to %s", filename)
	return nil
}

// loadFromLatestBackup loads the latest backup file into the shards.
func (m *Manager) loadFromLatestBackup() error {
	start := time.Now()
	latest, err := m.getLatestBackup()
	if err != nil {
		return fmt.Errorf("failed to get latest backup: %w", err)
	}

	if latest == "" {
		log.Debug().Msg("No backups found, nothing to load")
		return nil
	}

	dataBytes, err := os.ReadFile(latest)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", latest, err)
	}

	var loadedData litetable.Data
	if err = json.Unmarshal(dataBytes, &loadedData); err != nil {
		return fmt.Errorf("failed to parse backup %s: %w", latest, err)
	}

	for rowKey, columns := range loadedData {
		s := m.shardFor(rowKey)
		s.mutex.Lock()
		s.data[rowKey] = columns
		m.keys.add(rowKey)
		s.mutex.Unlock()
	}

	log.Debug().
		Str("duration", time.Since(start).String()).
		Int("rows", len(loadedData)).
		Msg("Data loaded from backup")
	return nil
}

// getLatestBackup returns the latest backup file in the data directory.
func (m *Manager) getLatestBackup() (string, error) {
	files, err := filepath.Glob(filepath.Join(m.dataDir, backupFileGlob))
	if err != nil {
		return "", err
	}

	if len(files) == 0 {
		return "", nil
	}

	// Find the newest backup file
	latest := files[0]
	for _, file := range files {
		if file > latest {
			latest = file
		}
	}

	return latest, nil
}

// maintainBackupLimit prunes the oldest backups beyond maxBackups.
func (m *Manager) maintainBackupLimit() {
	files, err := filepath.Glob(filepath.Join(m.dataDir, backupFileGlob))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list backup files")
		return
	}

	if len(files) <= m.maxBackups {
		return
	}

	// Sort files by name (which contains timestamp)
	// This works because the timestamp format ensures lexicographical sorting matches chronological order
	sort.Strings(files)

	for i := 0; i < len(files)-m.maxBackups; i++ {
		if err = os.Remove(files[i]); err != nil {
			log.Error().Err(err).Msgf("Failed to remove old backup %s", files[i])
		} else {
			log.Debug().Msgf("Pruned old backup: %s", files[i])
		}
	}
}
