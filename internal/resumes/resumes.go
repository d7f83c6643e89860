// Package resumes turns an uploaded file into the structured profile that
// personalizes interviews.
package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

var ErrUnreadable = errors.New("resumes: file contains no extractable text")

type Service struct {
	DB  *sqlx.DB
	Gw  *gateway.Gateway
	Log *zap.Logger
}

// ExtractText pulls plain text out of an upload. PDFs go through the PDF
// text extractor; anything else is accepted as-is when it is valid UTF-8.
func ExtractText(filename string, data []byte) (string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return extractPDF(data)
	}
	if !utf8.Valid(data) {
		return "", ErrUnreadable
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrUnreadable
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("resumes: parse pdf: %w", err)
	}
	var b strings.Builder
	for page := 1; page <= reader.NumPage(); page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrUnreadable
	}
	return text, nil
}

// Ingest extracts, profiles, and persists one upload. The stored resume is a
// new immutable row; profiling failure degrades to an empty profile rather
// than rejecting the upload.
func (s *Service) Ingest(ctx context.Context, userID, filename string, data []byte) (*models.Resume, bool, error) {
	text, err := ExtractText(filename, data)
	if err != nil {
		return nil, false, err
	}
	profile, degraded := s.Gw.ExtractResumeProfile(ctx, text)
	if degraded {
		s.Log.Warn("resume profiling degraded to fallback", zap.String("user", userID))
	}
	resume, err := store.SaveResume(s.DB, &models.Resume{
		UserID:     userID,
		Filename:   filename,
		RawText:    text,
		Skills:     profile.Skills,
		Experience: profile.Experience,
		Education:  profile.Education,
		Summary:    profile.Summary,
	})
	if err != nil {
		return nil, false, err
	}
	return resume, degraded, nil
}
