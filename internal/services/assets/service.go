package assets

import (
	"context"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/calmhive/pomodoro-bot-discord/internal/clients/objectstore"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	"github.com/calmhive/pomodoro-bot-discord/internal/storage/trackcache"
)

// Service resolves track keys to playable bytes, cache-aside over a
// local store with the remote object store as the source of truth on miss
type Service interface {
	// Resolve returns a reader over the track's bytes. A cold key
	// costs exactly one remote fetch and one local write; a warm key
	// costs zero remote calls.
	Resolve(ctx context.Context, trackKey string) (io.ReadCloser, error)

	// List enumerates locally cached track keys, never touching the remote
	List(ctx context.Context) ([]string, error)

	// ListRemote enumerates the remote bucket
	ListRemote(ctx context.Context) ([]string, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	ObjectStore objectstore.Client // Required
	Cache       *trackcache.Store  // Required
}

type service struct {
	objectStore objectstore.Client
	cache       *trackcache.Store
}

// NewService creates a new asset cache service
func NewService(cfg *ServiceConfig) Service {
	if cfg.ObjectStore == nil {
		panic("object store client is required")
	}
	if cfg.Cache == nil {
		panic("cache store is required")
	}

	return &service{
		objectStore: cfg.ObjectStore,
		cache:       cfg.Cache,
	}
}

// Resolve returns a reader over the track's bytes
func (s *service) Resolve(ctx context.Context, trackKey string) (io.ReadCloser, error) {
	if trackKey == "" {
		return nil, apperrors.InvalidArgument("track key cannot be empty")
	}

	if s.cache.Exists(trackKey) {
		log.Printf("Using cached audio file: %s", trackKey)
		return s.cache.Open(trackKey)
	}

	log.Printf("Fetching audio file from object storage: %s", trackKey)
	body, err := s.objectStore.GetObject(ctx, trackKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to fetch audio file")
	}
	defer body.Close()

	// Write through before serving; a failed write leaves no partial entry
	if err := s.cache.Write(trackKey, body); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to cache audio file")
	}

	return s.cache.Open(trackKey)
}

// List enumerates locally cached track keys
func (s *service) List(ctx context.Context) ([]string, error) {
	keys, err := s.cache.Keys()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list cached tracks")
	}

	tracks := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, ".mp3") {
			tracks = append(tracks, key)
		}
	}
	sort.Strings(tracks)

	return tracks, nil
}

// ListRemote enumerates the remote bucket
func (s *service) ListRemote(ctx context.Context) ([]string, error) {
	return s.objectStore.ListObjects(ctx)
}
