package service

import (
	"testing"

	"policyassist-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		format   models.SourceFormat
		wantErr  bool
	}{
		{"policy.pdf", models.SourceFormatPDF, false},
		{"POLICY.PDF", models.SourceFormatPDF, false},
		{"notes.txt", models.SourceFormatText, false},
		{"notes.text", models.SourceFormatText, false},
		{"report.docx", "", true},
		{"archive.zip", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			format, err := DetectFormat(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
		})
	}
}

func TestExtractPages_TextFormFeedSplit(t *testing.T) {
	pages, err := ExtractPages([]byte("page one text\fpage two text\fpage three"), models.SourceFormatText)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "page one text", pages[0])
	assert.Equal(t, "page three", pages[2])
}

func TestExtractPages_TextSinglePage(t *testing.T) {
	pages, err := ExtractPages([]byte("no form feeds here"), models.SourceFormatText)
	require.NoError(t, err)
	require.Len(t, pages, 1)
}

func TestExtractPages_BlankTextFails(t *testing.T) {
	_, err := ExtractPages([]byte("   \f   "), models.SourceFormatText)
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestExtractPages_GarbagePDFFails(t *testing.T) {
	_, err := ExtractPages([]byte("definitely not a pdf"), models.SourceFormatPDF)
	assert.ErrorIs(t, err, ErrParseFailure)
}
