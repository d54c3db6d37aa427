package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnold/goalforge-api/internal/models"
)

// GormStore keeps documents as JSON rows in a relational database. Change
// notifications come from an in-process hub, so subscribers only observe
// writes made through the same GormStore.
type GormStore struct {
	db  *gorm.DB
	hub *hub
	log *zap.Logger
	now func() time.Time
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormStore{
		db:  db,
		hub: newHub(),
		log: log.With(zap.String("component", "gorm_store")),
		now: time.Now,
	}
}

func (s *GormStore) List(ctx context.Context, ownerID string, kind models.Kind) ([]models.Record, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID, string(kind)).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	records := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := decode(d)
		if err != nil {
			s.log.Warn("skipping undecodable document", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *GormStore) Get(ctx context.Context, ownerID string, kind models.Kind, id string) (models.Record, error) {
	doc, err := s.find(s.db.WithContext(ctx), ownerID, kind, id)
	if err != nil {
		return models.Record{}, err
	}
	return decode(*doc)
}

func (s *GormStore) Create(ctx context.Context, ownerID string, kind models.Kind, fields map[string]any) (string, error) {
	now := s.now().UTC()
	data := copyFields(fields)
	data["userId"] = ownerID
	data["createdAt"] = now
	data["updatedAt"] = now

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", kind, err)
	}
	doc := models.Document{
		OwnerID:   ownerID,
		Kind:      string(kind),
		Data:      string(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", fmt.Errorf("create %s: %w", kind, err)
	}

	s.changed(ctx, ownerID, kind)
	return doc.ID, nil
}

func (s *GormStore) Update(ctx context.Context, ownerID string, kind models.Kind, id string, patch map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.find(tx, ownerID, kind, id)
		if err != nil {
			return err
		}
		rec, err := decode(*doc)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		for k, v := range patch {
			rec.Fields[k] = v
		}
		rec.Fields["updatedAt"] = now

		raw, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		return tx.Model(doc).Updates(map[string]any{"data": string(raw), "updated_at": now}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}

	s.changed(ctx, ownerID, kind)
	return nil
}

func (s *GormStore) Delete(ctx context.Context, ownerID string, kind models.Kind, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND kind = ?", id, ownerID, string(kind)).
		Delete(&models.Document{})
	if result.Error != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.changed(ctx, ownerID, kind)
	return nil
}

func (s *GormStore) Subscribe(ctx context.Context, ownerID string, kind models.Kind) (*Stream, error) {
	key := roomKey{owner: ownerID, kind: kind}
	var stream *Stream
	stream = newStream(func() { s.hub.unregister(key, stream) })

	mu := s.hub.room(key)
	mu.Lock()
	defer mu.Unlock()

	s.hub.register(key, stream)
	snap, err := s.List(ctx, ownerID, kind)
	if err != nil {
		stream.Stop()
		return nil, err
	}
	stream.push(snap)

	stream.stopWith(ctx)
	return stream, nil
}

// changed republishes the collection to its subscribers after a write.
func (s *GormStore) changed(ctx context.Context, ownerID string, kind models.Kind) {
	key := roomKey{owner: ownerID, kind: kind}
	if !s.hub.watched(key) {
		return
	}
	mu := s.hub.room(key)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.List(context.WithoutCancel(ctx), ownerID, kind)
	if err != nil {
		s.log.Error("refreshing subscribers", zap.String("owner", ownerID), zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	s.hub.broadcast(key, snap)
}

func (s *GormStore) find(tx *gorm.DB, ownerID string, kind models.Kind, id string) (*models.Document, error) {
	var doc models.Document
	err := tx.Where("id = ? AND owner_id = ? AND kind = ?", id, ownerID, string(kind)).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return &doc, nil
}

func decode(doc models.Document) (models.Record, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(doc.Data), &fields); err != nil {
		return models.Record{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return models.Record{ID: doc.ID, OwnerID: doc.OwnerID, Fields: fields}, nil
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *GormStore) FindProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (s *GormStore) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *GormStore) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Close ends every open subscription and the database pool.
func (s *GormStore) Close() error {
	s.hub.closeAll()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
