// Package objectstore provides a NATS JetStream blob store used to publish
// finished audio archives to a shared bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ClipStore implements core.ObjectStore over a NATS JetStream object store
// bucket. It is the delivery target for exported archives; the pipeline
// itself never persists line state here.
type ClipStore struct {
	bucket string
	store  nats.ObjectStore
}

// New creates a ClipStore over bucketName, creating the bucket when it does
// not exist yet and binding to it when it does.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*ClipStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Exported audio archives for the %s bucket.", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("failed to create clip bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to clip bucket '%s': %w", bucketName, err)
		}
	}

	return &ClipStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Upload stores data under key, overwriting any previous object.
func (c *ClipStore) Upload(_ context.Context, key string, data []byte) error {
	_, err := c.store.Put(&nats.ObjectMeta{
		Name:        key,
		Description: "",
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to put object '%s' to bucket '%s': %w", key, c.bucket, err)
	}

	return nil
}

// Download retrieves the object stored under key.
func (c *ClipStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := c.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", key, c.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// Keys lists the object names currently in the bucket.
func (c *ClipStore) Keys() ([]string, error) {
	infos, err := c.store.List()
	if err != nil {
		if errors.Is(err, nats.ErrNoObjectsFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list bucket '%s': %w", c.bucket, err)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Name)
	}

	return keys, nil
}
