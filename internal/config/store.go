package config

import (
	"fmt"
	"strconv"
)

// FileStore is the command settings table of a config file. Every write is
// saved to disk before returning.
type FileStore struct {
	path string
	cfg  *Config
}

func NewFileStore(path string, cfg *Config) *FileStore {
	if cfg.Commands == nil {
		cfg.Commands = map[string]any{}
	}
	return &FileStore{path: path, cfg: cfg}
}

func (s *FileStore) Bool(key string, fallback bool) bool {
	return lookupBool(s.cfg.Commands, key, fallback)
}

func (s *FileStore) String(key string, fallback string) string {
	return lookupString(s.cfg.Commands, key, fallback)
}

func (s *FileStore) Set(key string, value any) error {
	switch value.(type) {
	case bool, string:
	default:
		return fmt.Errorf("unsupported value type %T for %s", value, key)
	}
	previous, existed := s.cfg.Commands[key]
	s.cfg.Commands[key] = value
	if err := Save(s.path, *s.cfg); err != nil {
		if existed {
			s.cfg.Commands[key] = previous
		} else {
			delete(s.cfg.Commands, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Remove(key string) error {
	previous, existed := s.cfg.Commands[key]
	if !existed {
		return nil
	}
	delete(s.cfg.Commands, key)
	if err := Save(s.path, *s.cfg); err != nil {
		s.cfg.Commands[key] = previous
		return err
	}
	return nil
}

// MemoryStore keeps command settings in memory only. It backs --dry-run and
// tests.
type MemoryStore struct {
	values map[string]any
}

// NewMemoryStore copies seed so later writes do not leak back into it.
func NewMemoryStore(seed map[string]any) *MemoryStore {
	values := make(map[string]any, len(seed))
	for key, value := range seed {
		values[key] = value
	}
	return &MemoryStore{values: values}
}

func (s *MemoryStore) Bool(key string, fallback bool) bool {
	return lookupBool(s.values, key, fallback)
}

func (s *MemoryStore) String(key string, fallback string) string {
	return lookupString(s.values, key, fallback)
}

func (s *MemoryStore) Set(key string, value any) error {
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	delete(s.values, key)
	return nil
}

func lookupBool(values map[string]any, key string, fallback bool) bool {
	switch v := values[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	default:
		return fallback
	}
}

func lookupString(values map[string]any, key string, fallback string) string {
	v, ok := values[key].(string)
	if !ok {
		return fallback
	}
	return v
}
