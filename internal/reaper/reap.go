package reaper

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Task names the cells of one row and family to delete.
type Task struct {
	RowKey     string   `json:"rowKey"`
	Family     string   `json:"family"`
	Qualifiers []string `json:"qualifiers"`
}

// write replaces the GC log with tasks.
func (r *Reaper) write(tasks []Task) error {
	file, err := os.OpenFile(r.filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("failed to open GC log file: %w", err)
	}
	defer func(file *os.File) {
		closeErr := file.Close()
		if closeErr != nil {
			log.Error().Err(closeErr).Str("file", r.filePath).Msg("failed to close file")
		}
	}(file)

	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}
		if _, err = file.WriteString(string(data) + "\n"); err != nil {
			return fmt.Errorf("failed to write task: %w", err)
		}
	}

	// Ensure data is written to disk
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync GC log file: %w", err)
	}

	log.Info().Int("tasks", len(tasks)).Str("file", r.filePath).Msg("persisted pending reaper tasks")
	return nil
}

// load reads and truncates the GC log. A missing file is not an error.
func (r *Reaper) load() ([]Task, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var tasks []Task
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var t Task
		if err = json.Unmarshal(line, &t); err != nil {
			log.Error().Err(err).Msg("Error unmarshalling GC log entry")
			continue
		}
		tasks = append(tasks, t)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GC log file: %w", err)
	}

	// the tasks are queued now; a later Stop writes back whatever is still pending
	if err = os.Truncate(r.filePath, 0); err != nil {
		return nil, fmt.Errorf("failed to truncate GC log file: %w", err)
	}
	return tasks, nil
}
