// Package infra guarda os leads do cliente (badger ou memória), fala com o servidor
// e exporta CSV.
package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"leadfinder/leads/domain"
)

// keyPrefix separa as chaves do leadctl de qualquer outra coisa no mesmo diretório.
const keyPrefix = "leadfinder:"

// BadgerKV é um KVStore persistido num diretório local.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadgerKV abre (ou cria) o banco em dir.
func OpenBadgerKV(dir string, logger *slog.Logger) (*BadgerKV, error) {
	if dir == "" {
		return nil, errors.New("leads: data dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger: loggerOrDefault(logger)})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

// NewBadgerKV usa um *badger.DB já aberto (ex: em memória nos testes).
func NewBadgerKV(db *badger.DB) *BadgerKV {
	return &BadgerKV{db: db}
}

func (s *BadgerKV) Get(_ context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, nil
}

func (s *BadgerKV) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (s *BadgerKV) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// badgerLogger manda o log interno do badger para o slog, rebaixando info para debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(f string, args ...any)   { l.logger.Error(trim(f, args...)) }
func (l badgerLogger) Warningf(f string, args ...any) { l.logger.Warn(trim(f, args...)) }
func (l badgerLogger) Infof(f string, args ...any)    { l.logger.Debug(trim(f, args...)) }
func (l badgerLogger) Debugf(f string, args ...any)   { l.logger.Debug(trim(f, args...)) }

func trim(f string, args ...any) string {
	return "badger: " + strings.TrimSpace(fmt.Sprintf(f, args...))
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
