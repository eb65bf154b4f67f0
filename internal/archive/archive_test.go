package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/khabar/internal/models"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveUploadsSnapshot(t *testing.T) {
	put := &fakePutter{}
	now := time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC)
	a := New(put, "newsapi", func() time.Time { return now })

	records := []models.PersistedNews{{ID: 1, Title: "a", Link: "https://x/a", Tag: models.TagTech}}
	key, err := a.Archive(context.Background(), models.TagTech, records)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if !regexp.MustCompile(`^tech_news/2024/06/09/[0-9a-f]{64}\.json$`).MatchString(key) {
		t.Errorf("key = %q", key)
	}
	if *put.input.Bucket != "newsapi" || *put.input.Key != key {
		t.Errorf("bucket/key = %s/%s", *put.input.Bucket, *put.input.Key)
	}

	var snap Snapshot
	if err := json.Unmarshal(put.body, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Count != 1 || snap.Tag != models.TagTech || snap.Items[0].Title != "a" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestArchiveSkipsEmpty(t *testing.T) {
	put := &fakePutter{}
	_, err := New(put, "b", nil).Archive(context.Background(), models.TagTech, nil)
	if !errors.Is(err, ErrNothingToArchive) {
		t.Errorf("error = %v, want ErrNothingToArchive", err)
	}
	if put.input != nil {
		t.Error("PutObject called for empty snapshot")
	}
}

func TestKeyIsContentAddressed(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if Key("t", at, []byte("a")) == Key("t", at, []byte("b")) {
		t.Error("different bodies share a key")
	}
	if Key("t", at, []byte("a")) != Key("t", at, []byte("a")) {
		t.Error("same body produced different keys")
	}
}
