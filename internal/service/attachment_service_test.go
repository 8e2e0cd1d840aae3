package service

import (
	"paper_review_backend/internal/util"
	"testing"
)

func testPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFiles:     10,
		MaxSizeBytes: 10 * 1024 * 1024,
		MaxSizeMB:    10,
		AllowedTypes: util.AllowedAttachmentMimeTypes,
	}
}

func TestValidateUpload(t *testing.T) {
	image := func(name string, size int64) IncomingFile {
		return IncomingFile{Name: name, Size: size, Mime: "image/png"}
	}

	t.Run("count limit raises the exact message and nothing is stored", func(t *testing.T) {
		files := []IncomingFile{
			image("a.png", 100),
			image("b.png", 100),
			image("c.png", 100),
		}
		err := ValidateUpload(testPolicy(), 8, files)
		if err == nil {
			t.Fatal("expected validation error")
		}
		want := "Maximum 10 files allowed. Current: 8, Adding: 3"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("count is checked before size", func(t *testing.T) {
		// 超量的同时也超大，报数量而不是大小
		files := []IncomingFile{
			image("huge1.png", 100*1024*1024),
			image("huge2.png", 100*1024*1024),
			image("huge3.png", 100*1024*1024),
		}
		err := ValidateUpload(testPolicy(), 8, files)
		if err == nil {
			t.Fatal("expected validation error")
		}
		want := "Maximum 10 files allowed. Current: 8, Adding: 3"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("size is checked before type", func(t *testing.T) {
		files := []IncomingFile{
			{Name: "movie.mp4", Size: 50 * 1024 * 1024, Mime: "video/mp4"},
		}
		err := ValidateUpload(testPolicy(), 0, files)
		if err == nil {
			t.Fatal("expected validation error")
		}
		want := "File movie.mp4 exceeds the maximum size of 10MB"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("rejects media type outside the allow list", func(t *testing.T) {
		files := []IncomingFile{
			{Name: "movie.mp4", Size: 100, Mime: "video/mp4"},
		}
		err := ValidateUpload(testPolicy(), 0, files)
		if err == nil {
			t.Fatal("expected validation error")
		}
		want := "File type video/mp4 is not allowed"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("accepts a valid batch", func(t *testing.T) {
		files := []IncomingFile{
			image("diagram.png", 1024),
			{Name: "scheme.pdf", Size: 2048, Mime: "application/pdf"},
		}
		if err := ValidateUpload(testPolicy(), 8, files); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("validation failures are typed for the transport layer", func(t *testing.T) {
		err := ValidateUpload(testPolicy(), 10, []IncomingFile{image("a.png", 1)})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if _, ok := err.(*UploadValidationError); !ok {
			t.Errorf("error type = %T, want *UploadValidationError", err)
		}
	})
}
