package portrait

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"character-manager/core/protocol"
	"character-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrPortraitNotFound is returned when a character has no stored portrait.
var ErrPortraitNotFound = errors.New("Portrait not found")

// Publisher delivers a change event to every session in a character's room.
type Publisher interface {
	Publish(characterID uint, ev protocol.Envelope)
}

// Service stores and retrieves character portraits.
type Service struct {
	client storage.Client
	bucket string
	pub    Publisher
	logger *zap.Logger
}

// NewService creates a new portrait service.
func NewService(client storage.Client, bucket string, pub Publisher, logger *zap.Logger) *Service {
	return &Service{client: client, bucket: bucket, pub: pub, logger: logger}
}

// EnsureBucket creates the portrait bucket when missing.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func objectName(characterID uint) string {
	return fmt.Sprintf("portraits/%d", characterID)
}

// Upload stores a portrait and broadcasts a status signal to the room.
func (s *Service) Upload(ctx context.Context, characterID uint, contentType string, body []byte) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, objectName(characterID),
		bytes.NewReader(body), int64(len(body)), opts)
	if err != nil {
		return fmt.Errorf("failed to store portrait for character %d: %w", characterID, err)
	}
	s.pub.Publish(characterID, protocol.NewStatus(characterID))
	return nil
}

// Fetch returns the portrait body and content type.
func (s *Service) Fetch(ctx context.Context, characterID uint) ([]byte, string, error) {
	name := objectName(characterID)
	info, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, "", ErrPortraitNotFound
		}
		return nil, "", fmt.Errorf("failed to stat portrait for character %d: %w", characterID, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch portrait for character %d: %w", characterID, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read portrait for character %d: %w", characterID, err)
	}
	return body, info.ContentType, nil
}

// Remove deletes the portrait and broadcasts a status signal to the room.
func (s *Service) Remove(ctx context.Context, characterID uint) error {
	name := objectName(characterID)
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return ErrPortraitNotFound
		}
		return fmt.Errorf("failed to stat portrait for character %d: %w", characterID, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove portrait for character %d: %w", characterID, err)
	}
	s.pub.Publish(characterID, protocol.NewStatus(characterID))
	return nil
}
