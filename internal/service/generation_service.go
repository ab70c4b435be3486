package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/pdf"
	"github.com/stemsi/klausurgen/internal/storage"
)

var ErrNoOutputSelected = errors.New("no output selected")

// Progress milestones of a generation run.
var (
	ProgressPreparing  = model.Progress{Percent: 10, Message: "Klausur-Daten werden vorbereitet..."}
	ProgressAssembling = model.Progress{Percent: 30, Message: "LaTeX-Code wird generiert..."}
	ProgressCompiling  = model.Progress{Percent: 60, Message: "PDF wird kompiliert..."}
	ProgressReordering = model.Progress{Percent: 80, Message: "Seiten werden für Duplex-Druck umsortiert..."}
	ProgressSaving     = model.Progress{Percent: 95, Message: "PDF wird gespeichert..."}
	ProgressDone       = model.Progress{Percent: 100, Message: "Fertig!"}
)

// Compiler turns markup plus attachments into a PDF. Implemented by compiler.Client.
type Compiler interface {
	Compile(ctx context.Context, markup string, attachments []model.Attachment) ([]byte, error)
}

// Result is the outcome of one generation run.
type Result struct {
	PDF      []byte
	Filename string
	Pages    int
	// Reordered is false when the page reorder failed or was not needed.
	Reordered bool
	Markup    string
	// Location is the storage key of the saved document, empty without a store.
	Location string
}

// GenerationService runs assemble, compile, reorder and save for one exam.
type GenerationService struct {
	assembler *latex.Assembler
	compiler  Compiler
	reorderer *pdf.Reorderer
	graphics  GraphicStore
	store     storage.Store
	log       zerolog.Logger
}

// NewGenerationService wires the pipeline. graphics and store may be nil.
func NewGenerationService(
	assembler *latex.Assembler,
	compiler Compiler,
	reorderer *pdf.Reorderer,
	graphics GraphicStore,
	store storage.Store,
	log zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		assembler: assembler,
		compiler:  compiler,
		reorderer: reorderer,
		graphics:  graphics,
		store:     store,
		log:       log.With().Str("component", "generation_service").Logger(),
	}
}

// Run generates the complete document for exam. progress may be nil.
func (s *GenerationService) Run(ctx context.Context, exam *model.Exam, progress func(model.Progress)) (*Result, error) {
	report := func(p model.Progress) {
		if progress != nil {
			progress(p)
		}
	}

	// ─── Prepare ────────────────────────────────────────────────────────
	report(ProgressPreparing)
	if !exam.Options.Any() {
		return nil, ErrNoOutputSelected
	}
	work, attachments, err := s.prepare(ctx, exam)
	if err != nil {
		return nil, err
	}

	// ─── Assemble ───────────────────────────────────────────────────────
	report(ProgressAssembling)
	markup, err := s.assembler.Assemble(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// ─── Compile ────────────────────────────────────────────────────────
	report(ProgressCompiling)
	compiled, err := s.compiler.Compile(ctx, markup, attachments)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	// ─── Reorder ────────────────────────────────────────────────────────
	report(ProgressReordering)
	result := &Result{
		PDF:      compiled,
		Filename: latex.SanitizeFilename(exam.CompleteFilename()),
		Markup:   markup,
	}
	s.reorder(exam.ID, result)

	// ─── Save ───────────────────────────────────────────────────────────
	report(ProgressSaving)
	if s.store != nil {
		key := fmt.Sprintf("exams/%d/%s", exam.ID, result.Filename)
		loc, err := s.store.Put(key, bytes.NewReader(result.PDF))
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", key, err)
		}
		result.Location = loc
	}

	report(ProgressDone)
	s.log.Info().
		Int64("exam_id", exam.ID).
		Int("pages", result.Pages).
		Bool("reordered", result.Reordered).
		Str("file", result.Filename).
		Msg("Exam document generated")

	return result, nil
}

// prepare returns a copy of exam whose question markup points at the
// attachment names, plus the attachments to ship.
func (s *GenerationService) prepare(ctx context.Context, exam *model.Exam) (*model.Exam, []model.Attachment, error) {
	var attachments []model.Attachment
	if logo, ok := latex.LogoAttachment(exam.School); ok {
		attachments = append(attachments, logo)
	}

	work := *exam
	if s.graphics == nil {
		return &work, attachments, nil
	}

	active := exam.ActiveSlots()
	ids := make([]int64, len(active))
	for i, slot := range active {
		ids[i] = slot.Question.ID
	}
	graphics, err := s.graphics.ListForQuestions(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load graphics: %w", err)
	}
	if len(graphics) == 0 {
		return &work, attachments, nil
	}

	work.Slots = make([]model.ExamQuestionSlot, len(exam.Slots))
	copy(work.Slots, exam.Slots)
	for i := range work.Slots {
		q := &work.Slots[i].Question
		q.Body = latex.RewriteGraphics(q.Body, q.ID, graphics)
		q.Solution = latex.RewriteGraphics(q.Solution, q.ID, graphics)
	}
	return &work, append(attachments, latex.GraphicAttachments(graphics)...), nil
}

// reorder applies the duplex page order in place. Failures keep the compiled
// document as is.
func (s *GenerationService) reorder(examID int64, result *Result) {
	ok, pages := pdf.Validate(result.PDF)
	if !ok {
		s.log.Warn().Int64("exam_id", examID).Msg("Compiled PDF could not be read, page order kept")
		return
	}
	result.Pages = pages
	if !s.reorderer.NeedsReorder(pages) {
		return
	}

	out, err := s.reorderer.ReorderBytes(result.PDF)
	if err != nil {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("Reorder failed, page order kept")
		return
	}
	result.PDF = out
	result.Reordered = true
}
