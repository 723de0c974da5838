package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/yusufstar/photoai/internal/config"
	"github.com/yusufstar/photoai/internal/repository"
)

type fakeFetcher struct {
	bodies map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("fetch failed: connection refused")
	}
	return body, nil
}

// memObjectStore satisfies storage.ObjectStorage and records uploads.
type memObjectStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *memObjectStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *memObjectStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memObjectStore) GetURL(key string) string { return "https://cdn.example.com/" + key }

func (m *memObjectStore) SignedUploadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example.com/put/" + key, nil
}

func (m *memObjectStore) SignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example.com/get/" + key, nil
}

func (m *memObjectStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newGenerationFixture(t *testing.T, fetcher *fakeFetcher) (*GenerationService, *repository.ImageRepository, *memObjectStore) {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	images := repository.NewImageRepository(db)
	store := newMemObjectStore()
	svc := NewGenerationService(images, nil, nil, fetcher, store)
	return svc, images, store
}

func TestStoreImages(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://out.example.com/a": encodePNG(t, 768, 1024),
		"https://out.example.com/b": encodeJPEG(t, 512, 512),
		"https://out.example.com/c": []byte("definitely not an image"),
	}}
	svc, images, store := newGenerationFixture(t, fetcher)

	params := GenerateInput{
		Model:      "photoai/user-1_1_my_model:v1",
		Prompt:     "ohwx person on a beach",
		Megapixels: "1",
		NumOutputs: 4,
	}
	results, err := svc.StoreImages(context.Background(), "user-1", []StoreImageInput{
		{URL: "https://out.example.com/a", GenerateInput: params},
		{URL: "https://out.example.com/b", GenerateInput: params},
		{URL: "https://out.example.com/c", GenerateInput: params},
		{URL: "https://out.example.com/missing", GenerateInput: params},
	})
	if err != nil {
		t.Fatalf("StoreImages: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	if !results[0].Success || !strings.HasSuffix(results[0].ImageName, ".png") {
		t.Errorf("png result = %+v", results[0])
	}
	if !results[1].Success || !strings.HasSuffix(results[1].ImageName, ".jpeg") {
		t.Errorf("jpeg result = %+v", results[1])
	}
	if results[2].Success || !strings.Contains(results[2].Error, "unrecognized image data") {
		t.Errorf("junk-bytes result = %+v", results[2])
	}
	if results[3].Success || results[3].Error == "" {
		t.Errorf("fetch-failure result = %+v", results[3])
	}

	// One failure never loses the batch: only the decodable images are stored.
	stored, total, err := images.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("failed to list images: %v", err)
	}
	if total != 2 || len(stored) != 2 {
		t.Fatalf("stored %d images (total %d), want 2", len(stored), total)
	}
	for _, img := range stored {
		if !strings.HasPrefix(img.ImageName, "image_") {
			t.Errorf("image_name = %q", img.ImageName)
		}
		if img.Prompt != params.Prompt || img.Megapixels != "1" || img.NumOutputs != 4 {
			t.Errorf("persisted params = %+v", img)
		}
		key := "user-1/" + img.ImageName
		if _, ok := store.objects[key]; !ok {
			t.Errorf("no uploaded object under %q", key)
		}
		switch {
		case strings.HasSuffix(img.ImageName, ".png"):
			if img.Width != 768 || img.Height != 1024 {
				t.Errorf("png dimensions = %dx%d", img.Width, img.Height)
			}
			if ct := store.contentTypes[key]; ct != "image/png" {
				t.Errorf("png content type = %q", ct)
			}
		case strings.HasSuffix(img.ImageName, ".jpeg"):
			if img.Width != 512 || img.Height != 512 {
				t.Errorf("jpeg dimensions = %dx%d", img.Width, img.Height)
			}
			if ct := store.contentTypes[key]; ct != "image/jpeg" {
				t.Errorf("jpeg content type = %q", ct)
			}
		default:
			t.Errorf("unexpected image_name %q", img.ImageName)
		}
	}
}

func TestListImagesSignsViewURLs(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://out.example.com/a": encodePNG(t, 8, 8),
	}}
	svc, _, _ := newGenerationFixture(t, fetcher)

	if _, err := svc.StoreImages(context.Background(), "user-1", []StoreImageInput{
		{URL: "https://out.example.com/a", GenerateInput: GenerateInput{Model: "m", Prompt: "p"}},
	}); err != nil {
		t.Fatalf("StoreImages: %v", err)
	}

	page, err := svc.ListImages(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if page.Total != 1 || len(page.Images) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if want := "https://storage.example.com/get/user-1/" + page.Images[0].ImageName; page.Images[0].URL != want {
		t.Errorf("signed url = %q, want %q", page.Images[0].URL, want)
	}
}
