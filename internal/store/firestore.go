package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/arnold/goalforge-api/internal/models"
)

const usersCollection = "users"

// FirestoreStore keeps every owner's collections under users/{owner}/{kind}
// and the profile in users/{owner}.
type FirestoreStore struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewFirestoreStore(client *firestore.Client, log *zap.Logger) *FirestoreStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FirestoreStore{client: client, log: log.With(zap.String("component", "firestore_store"))}
}

func (s *FirestoreStore) collection(ownerID string, kind models.Kind) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(ownerID).Collection(string(kind))
}

func (s *FirestoreStore) List(ctx context.Context, ownerID string, kind models.Kind) ([]models.Record, error) {
	snaps, err := s.collection(ownerID, kind).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return records(ownerID, snaps), nil
}

func (s *FirestoreStore) Get(ctx context.Context, ownerID string, kind models.Kind, id string) (models.Record, error) {
	snap, err := s.collection(ownerID, kind).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Record{}, ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return models.Record{ID: snap.Ref.ID, OwnerID: ownerID, Fields: snap.Data()}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, ownerID string, kind models.Kind, fields map[string]any) (string, error) {
	data := copyFields(fields)
	data["userId"] = ownerID
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := s.collection(ownerID, kind).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", kind, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Update(ctx context.Context, ownerID string, kind models.Kind, id string, patch map[string]any) error {
	updates := make([]firestore.Update, 0, len(patch)+1)
	for k, v := range patch {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	_, err := s.collection(ownerID, kind).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, ownerID string, kind models.Kind, id string) error {
	_, err := s.collection(ownerID, kind).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// Subscribe relays Firestore's own snapshot listener.
func (s *FirestoreStore) Subscribe(ctx context.Context, ownerID string, kind models.Kind) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	it := s.collection(ownerID, kind).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)
	stream := newStream(func() {
		cancel()
		it.Stop()
	})

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					stream.Stop()
					return
				}
				s.log.Error("snapshot listener failed", zap.String("owner", ownerID), zap.String("kind", string(kind)), zap.Error(err))
				stream.close(fmt.Errorf("listen %s: %w", kind, err))
				cancel()
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				s.log.Warn("reading snapshot", zap.String("kind", string(kind)), zap.Error(err))
				continue
			}
			stream.push(records(ownerID, snaps))
		}
	}()
	return stream, nil
}

func records(ownerID string, snaps []*firestore.DocumentSnapshot) []models.Record {
	out := make([]models.Record, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, models.Record{ID: snap.Ref.ID, OwnerID: ownerID, Fields: snap.Data()})
	}
	return out
}

func (s *FirestoreStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profileOf(snap)
}

func (s *FirestoreStore) FindProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	snaps, err := s.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return profileOf(snaps[0])
}

func (s *FirestoreStore) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if _, err := s.client.Collection(usersCollection).Doc(p.ID).Set(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	snaps, err := s.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]models.UserProfile, 0, len(snaps))
	for _, snap := range snaps {
		p, err := profileOf(snap)
		if err != nil {
			s.log.Warn("skipping unreadable profile", zap.String("id", snap.Ref.ID), zap.Error(err))
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func profileOf(snap *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
