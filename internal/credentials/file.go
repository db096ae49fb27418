package credentials

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

// FileStore persists the slot in a SQLite file with the value sealed by AES-256-GCM.
type FileStore struct {
	db     *gorm.DB
	sealer *Sealer
}

// FileConfig holds configuration for the file store
type FileConfig struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte key.
	// If empty, the key is read from KeyFilePath or generated there.
	EncryptionKey string

	// KeyFilePath defaults to DatabasePath + ".key"
	KeyFilePath string
}

func NewFileStore(cfg FileConfig) (*FileStore, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	sealer, err := NewSealerFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create sealer: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials database: %w", err)
	}

	if err := db.AutoMigrate(&entities.StoredCredential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &FileStore{db: db, sealer: sealer}, nil
}

func resolveEncryptionKey(cfg FileConfig) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		keyFilePath = cfg.DatabasePath + ".key"
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(data)), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read key file %s: %w", keyFilePath, err)
	}

	newKey, err := GenerateKey()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	log.Printf("Generated new credentials key at %s", keyFilePath)
	return newKey, nil
}

func (s *FileStore) Token(ctx context.Context) (string, error) {
	var stored entities.StoredCredential
	err := s.db.WithContext(ctx).Where("slot = ?", Slot).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	token, err := s.sealer.Open(Slot, stored.Value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	return token, nil
}

func (s *FileStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	sealed, err := s.sealer.Seal(Slot, token)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.StoredCredential{
		Slot:      Slot,
		Value:     sealed,
		UpdatedAt: time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("slot = ?", Slot).Delete(&entities.StoredCredential{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *FileStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
