package util

import (
	"bytes"
	"testing"
)

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png magic bytes", []byte("\x89PNG\r\n\x1a\n rest"), "image/png"},
		{"pdf magic bytes", []byte("%PDF-1.7 rest"), "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectMimeType(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("DetectMimeType error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectMimeType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMimeAllowed(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"application/pdf", true},
		{"application/msword", true},
		{"video/mp4", false},
		{"application/zip", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := MimeAllowed(tt.mime, AllowedAttachmentMimeTypes); got != tt.want {
				t.Errorf("MimeAllowed(%q) = %v, want %v", tt.mime, got, tt.want)
			}
		})
	}
}

func TestFormatMarks(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{2.5, "2.5"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatMarks(tt.in); got != tt.want {
			t.Errorf("FormatMarks(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
