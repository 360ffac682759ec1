package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
)

// PhotoService stores daily photo proof in the Firebase Storage bucket.
// Photos are evidence attached to a challenge day; nothing downstream ever
// reads them back for decisions.
type PhotoService struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewPhotoService(ctx context.Context, app *firebase.App, bucketName string) (*PhotoService, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage client: %w", err)
	}

	var bucket *storage.BucketHandle
	if bucketName != "" {
		bucket, err = client.Bucket(bucketName)
	} else {
		bucket, err = client.DefaultBucket()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get storage bucket: %w", err)
	}

	return &PhotoService{bucket: bucket, bucketName: bucketName}, nil
}

// UploadChallengeProof streams one day's photo to
// challenges/{challengeID}/{userID}/{date}.jpg and returns its public URL.
func (s *PhotoService) UploadChallengeProof(ctx context.Context, challengeID, userID, dateKey string, body io.Reader, contentType string) (string, error) {
	objectPath := fmt.Sprintf("challenges/%s/%s/%s.jpg", challengeID, userID, dateKey)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = "image/jpeg"
	}

	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize photo upload: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectPath), nil
}

// DeleteChallengeProofs removes every stored photo under a challenge. Used
// when a sender cancels the challenge.
func (s *PhotoService) DeleteChallengeProofs(ctx context.Context, challengeID string) error {
	// Objects are keyed by prefix; storage has no recursive delete, so the
	// caller lists and deletes one by one.
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: fmt.Sprintf("challenges/%s/", challengeID)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list photos: %w", err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete photo %s: %w", attrs.Name, err)
		}
	}
}
