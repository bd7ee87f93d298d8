package events

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// fileStore owns the durable copy of the queue. Writes go through a temp
// file followed by a rename so a crash mid-write never corrupts the
// previous copy. No other component touches this file.
type fileStore struct {
	path string
	log  zerolog.Logger
}

func newFileStore(path string, logger zerolog.Logger) *fileStore {
	return &fileStore{path: path, log: logger.With().Str("component", "events.store").Logger()}
}

// save atomically replaces the durable copy with the given events.
func (s *fileStore) save(events []Event) error {
	data, err := json.Marshal(queueFile{Events: events})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// load reads the durable copy. A missing file means an empty queue. An
// unreadable or unparseable file is quarantined with a .corrupted suffix
// and the queue starts empty; corruption is never fatal.
func (s *fileStore) load() []Event {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error().Err(err).Str("path", s.path).Msg("failed to read queue file")
			s.quarantine()
		}
		return nil
	}

	var f queueFile
	if err := json.Unmarshal(data, &f); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("queue file is corrupted, starting empty")
		s.quarantine()
		return nil
	}

	s.log.Info().Int("events", len(f.Events)).Msg("loaded queued events from file")
	return f.Events
}

// remove deletes the durable copy.
func (s *fileStore) remove() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Error().Err(err).Msg("failed to delete queue file")
	}
}

func (s *fileStore) quarantine() {
	if err := os.Rename(s.path, s.path+".corrupted"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Error().Err(err).Msg("failed to quarantine corrupted queue file")
	}
}
