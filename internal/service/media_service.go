package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/repository"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidGraphicName  = errors.New("invalid graphic name")
	ErrSchoolNotFound      = errors.New("school not found")
)

// DefaultMaxUploadBytes caps graphics and logos when no limit is configured.
const DefaultMaxUploadBytes = 5 << 20

// Names end up inside \includegraphics{...}.
var graphicNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,99}$`)

// MediaService stores question graphics and school logos.
type MediaService struct {
	questions QuestionStore
	graphics  GraphicWriter
	logos     LogoWriter
	maxBytes  int64
	log       zerolog.Logger
}

// NewMediaService creates a new MediaService. maxBytes <= 0 selects DefaultMaxUploadBytes.
func NewMediaService(questions QuestionStore, graphics GraphicWriter, logos LogoWriter, maxBytes int64, log zerolog.Logger) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MediaService{
		questions: questions,
		graphics:  graphics,
		logos:     logos,
		maxBytes:  maxBytes,
		log:       log.With().Str("component", "media_service").Logger(),
	}
}

// MaxBytes is the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// SaveGraphic stores r as graphic name of question questionID. The file type
// is taken from the content, not from the client.
func (s *MediaService) SaveGraphic(ctx context.Context, questionID int64, name string, r io.Reader) (*model.Graphic, error) {
	if !graphicNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGraphicName, name)
	}
	blob, ext, err := s.readImage(r)
	if err != nil {
		return nil, err
	}

	found, err := s.questions.GetByIDs(ctx, []int64{questionID})
	if err != nil {
		return nil, err
	}
	if _, ok := found[questionID]; !ok {
		return nil, ErrQuestionNotFound
	}

	g := &model.Graphic{QuestionID: questionID, Name: name, FileType: ext, Blob: blob}
	if err := s.graphics.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("save graphic: %w", err)
	}

	s.log.Info().Int64("question_id", questionID).Str("file", g.FileName()).Int("bytes", len(blob)).Msg("Graphic stored")
	return g, nil
}

// SaveLogo replaces the logo of school code.
func (s *MediaService) SaveLogo(ctx context.Context, code string, r io.Reader) (string, error) {
	blob, _, err := s.readImage(r)
	if err != nil {
		return "", err
	}
	if err := s.logos.SetLogo(ctx, code, blob); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSchoolNotFound
		}
		return "", fmt.Errorf("save logo: %w", err)
	}

	name := latex.LogoFileName(blob)
	s.log.Info().Str("school", code).Str("file", name).Int("bytes", len(blob)).Msg("Logo stored")
	return name, nil
}

// readImage reads at most maxBytes and sniffs an extension pdflatex can embed.
func (s *MediaService) readImage(r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if n > s.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	ext := latex.ImageExtension(buf.Bytes(), "")
	if ext == "" {
		return nil, "", ErrUnsupportedFileType
	}
	return buf.Bytes(), ext, nil
}
