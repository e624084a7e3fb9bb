package db

import (
	"encoding/json"
	"fmt"

	"github.com/fedragon/media-timediff/internal/models"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// Repository keeps a journal of the corrections applied to media files.
type Repository interface {
	Record(c models.Correction) error
	List() ([]models.Correction, error)
}

type BoltRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

func NewRepository(db *bolt.DB, logger *zap.Logger) (Repository, error) {
	return &BoltRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Record stores c under its done path; recording the same path twice keeps the latest.
func (r *BoltRepository) Record(c models.Correction) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s doesn't exist", string(bucketName))
		}

		marshalled, err := json.Marshal(&c)
		if err != nil {
			return err
		}

		r.logger.Debug("Recording correction", zap.String("path", c.DonePath))
		return bucket.Put([]byte(c.DonePath), marshalled)
	})
}

// List returns every recorded correction ordered by done path.
func (r *BoltRepository) List() ([]models.Correction, error) {
	var corrections []models.Correction

	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("bucket %s doesn't exist", string(bucketName))
		}

		return b.ForEach(func(k, v []byte) error {
			var c models.Correction
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("corrupted entry %s: %w", string(k), err)
			}

			corrections = append(corrections, c)
			return nil
		})
	})

	return corrections, err
}
