package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store — персистентное key/value хранилище сессии.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileStore хранит значения в одном JSON-файле.
// Все операции сериализуются мьютексом, файл перечитывается при каждом Get,
// чтобы несколько процессов видели общие данные.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore создает хранилище поверх указанного файла.
// Файл создается при первой записи.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	data := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileStore) save(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Get возвращает значение ключа и признак его наличия.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	const op = "session.FileStore.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	value, ok := data[key]
	return value, ok, nil
}

// Set сохраняет значение ключа.
func (s *FileStore) Set(key string, value []byte) error {
	const op = "session.FileStore.Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	data[key] = json.RawMessage(value)
	if err := s.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не считается ошибкой.
func (s *FileStore) Delete(key string) error {
	const op = "session.FileStore.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	if err := s.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
