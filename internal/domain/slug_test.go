package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"templora/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaces and punctuation", "My Cool Template!", "my-cool-template"},
		{"already a slug", "my-cool-template", "my-cool-template"},
		{"uppercase", "INVOICE", "invoice"},
		{"digits kept", "Top 10 Fonts 2026", "top-10-fonts-2026"},
		{"run of separators collapses", "a  --  b", "a-b"},
		{"leading and trailing junk", "  !!Hello World!!  ", "hello-world"},
		{"unicode stripped", "café münü", "caf-m-n"},
		{"empty", "", ""},
		{"only junk", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, domain.Slugify(tc.input))
		})
	}
}

func TestUploadKind_IsValid(t *testing.T) {
	assert.True(t, domain.UploadKindSource.IsValid())
	assert.True(t, domain.UploadKindVideo.IsValid())
	assert.True(t, domain.UploadKindThumbnail.IsValid())
	assert.True(t, domain.UploadKindAudioPreview.IsValid())
	assert.True(t, domain.UploadKind3DModel.IsValid())
	assert.False(t, domain.UploadKind("archive").IsValid())
	assert.False(t, domain.UploadKind("").IsValid())
}

func TestUploadKind_IsPreview(t *testing.T) {
	assert.False(t, domain.UploadKindSource.IsPreview())
	assert.True(t, domain.UploadKindVideo.IsPreview())
	assert.True(t, domain.UploadKindThumbnail.IsPreview())

	// Each preview kind maps to its key path segment.
	assert.Equal(t, "audio", domain.PreviewPathSegments[domain.UploadKindAudioPreview])
	assert.Equal(t, "3d", domain.PreviewPathSegments[domain.UploadKind3DModel])
}
