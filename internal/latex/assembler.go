// Package latex assembles the LaTeX source of an exam run: optional sample
// copies followed by one personalised copy per student.
package latex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/allocator"
	"github.com/stemsi/klausurgen/internal/model"
)

// Markers the rest of the pipeline relies on.
const (
	SectionOpen  = `\begin{exemplar}`
	SectionClose = `\end{exemplar}`
	PageBreak    = `\newpage`
	ClosingPage  = `\leerseite`
	NoSolution   = `\keineloesung`
	QuestionHead = `\aufgabe{`
)

// DefaultAnswerSpaceCM is the blank space left below a question without a hint.
const DefaultAnswerSpaceCM = 5.0

// PaddingBreaks is the forced-break count for which a closing blank page is
// added, bringing a three-page copy to four pages.
const PaddingBreaks = 2

var (
	ErrEmptyQuestionSet = errors.New("exam has no active questions")
	ErrEmptyRoster      = errors.New("per-student set requested but roster is empty")
)

type copyKind struct {
	label      string
	solved     bool
	perStudent bool
}

// copyKinds is the fixed emission order.
var copyKinds = []copyKind{
	{label: "Muster ohne Lösung"},
	{label: "Muster mit Lösung", solved: true},
	{label: "Klassensatz ohne Lösung", perStudent: true},
	{label: "Klassensatz mit Lösung", solved: true, perStudent: true},
}

func (k copyKind) requested(o model.OutputOptions) bool {
	switch {
	case !k.perStudent && !k.solved:
		return o.SampleUnsolved
	case !k.perStudent && k.solved:
		return o.SampleSolved
	case !k.solved:
		return o.ClassSetUnsolved
	default:
		return o.ClassSetSolved
	}
}

// Assembler turns an exam into a single LaTeX document.
type Assembler struct {
	alloc allocator.Allocator
	log   zerolog.Logger
}

func NewAssembler(alloc allocator.Allocator, log zerolog.Logger) *Assembler {
	return &Assembler{
		alloc: alloc,
		log:   log.With().Str("component", "latex_assembler").Logger(),
	}
}

// header holds the exam fields shared by every section, escaped once.
type header struct {
	subject  string
	class    string
	topic    string
	date     string
	school   string
	examType string
	number   int
	minutes  int
	points   int
	logo     string
	padding  bool
}

func newHeader(exam *model.Exam) header {
	school := exam.SchoolCode
	logo := ""
	if exam.School != nil {
		if exam.School.Name != "" {
			school = exam.School.Name
		}
		if len(exam.School.Logo) > 0 {
			logo = LogoFileName(exam.School.Logo)
		}
	}
	return header{
		subject:  Escape(exam.Subject),
		class:    Escape(exam.Class),
		topic:    Escape(exam.Topic),
		date:     Escape(FormatDate(exam.Date)),
		school:   Escape(school),
		examType: Escape(string(exam.Type)),
		number:   exam.Number,
		minutes:  exam.DurationMinutes,
		points:   exam.TotalPoints(),
		logo:     logo,
		padding:  len(exam.PageBreaks()) == PaddingBreaks,
	}
}

// copyInfo identifies one section of the document.
type copyInfo struct {
	kind    copyKind
	index   int // 1-based within a per-student set
	student *model.Student
	kasusID int64
}

// Assemble builds the LaTeX document for exam. One KaSuSId is allocated per
// student copy; an allocation failure aborts the whole document.
func (a *Assembler) Assemble(ctx context.Context, exam *model.Exam) (string, error) {
	opts := exam.Options
	active := exam.ActiveSlots()

	if opts.Any() && len(active) == 0 {
		return "", ErrEmptyQuestionSet
	}
	if opts.PerStudent() && len(exam.Students) == 0 {
		return "", ErrEmptyRoster
	}

	h := newHeader(exam)

	var copies []copyInfo
	for _, kind := range copyKinds {
		if !kind.requested(opts) {
			continue
		}
		if !kind.perStudent {
			copies = append(copies, copyInfo{kind: kind})
			continue
		}
		for i := range exam.Students {
			st := &exam.Students[i]
			id, err := a.alloc.Next(ctx)
			if err != nil {
				return "", fmt.Errorf("allocate kasusid for student %d: %w", st.StudentID, err)
			}
			copies = append(copies, copyInfo{kind: kind, index: i + 1, student: st, kasusID: id})
		}
	}

	var b strings.Builder
	writePreamble(&b)
	b.WriteString("\\begin{document}\n\n")
	for i, c := range copies {
		if i > 0 {
			b.WriteString(PageBreak + "\n\n")
		}
		writeSection(&b, h, active, c)
	}
	b.WriteString("\\end{document}\n")

	a.log.Debug().
		Int64("exam_id", exam.ID).
		Int("sections", len(copies)).
		Int("questions", len(active)).
		Bool("padding", h.padding).
		Msg("LaTeX assembled")

	return b.String(), nil
}

func writePreamble(b *strings.Builder) {
	b.WriteString(`\documentclass[a4paper,11pt]{article}

\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage[ngerman]{babel}
\usepackage{amsmath,amssymb,amsfonts}
\usepackage{graphicx}
\usepackage{tabularx}
\usepackage[a4paper,left=2cm,right=2cm,top=3cm,bottom=2cm]{geometry}
\usepackage{fancyhdr}
\usepackage{qrcode}
\usepackage{enumitem}
\usepackage{xcolor}

\setlength{\parindent}{0pt}
\setlength{\parskip}{0.5em}

\pagestyle{fancy}
\fancyhf{}
\renewcommand{\headrulewidth}{0.4pt}
\fancyfoot[C]{\thepage}
\fancypagestyle{erste}{\fancyhf{}\renewcommand{\headrulewidth}{0pt}\fancyfoot[C]{\thepage}}

\newenvironment{exemplar}{\setcounter{page}{1}}{}
\newenvironment{loesung}{\par\color{blue}\textbf{Lösung:}\par}{\par}
\newcommand{\keineloesung}{\par\textcolor{blue}{[Keine Lösung verfügbar]}\par}
\newcommand{\leerseite}{\thispagestyle{empty}\mbox{}}
\newcommand{\aufgabe}[3]{\subsection*{Aufgabe #1 \hfill {\normalsize(#3)}}\textit{#2}\par}

`)
}

func writeSection(b *strings.Builder, h header, active []model.ExamQuestionSlot, c copyInfo) {
	marker := "Muster"
	name := "MUSTER"
	if c.student != nil {
		marker = "Nr. " + strconv.Itoa(c.index)
		name = Escape(c.student.FullName())
	}

	fmt.Fprintf(b, "%% %s, %s\n", c.kind.label, marker)

	// Running header for pages after the first. Set outside the section group
	// so it is still in effect when the last page ships out after SectionClose.
	fmt.Fprintf(b, "\\fancyhead[L]{%s}\n", h.subject)
	fmt.Fprintf(b, "\\fancyhead[C]{Klasse %s}\n", h.class)
	fmt.Fprintf(b, "\\fancyhead[R]{%s}\n", marker)
	b.WriteString("\\thispagestyle{erste}\n")
	b.WriteString(SectionOpen + "\n")

	writeFirstPageHeader(b, h, c, name)

	for i, slot := range active {
		writeQuestion(b, i+1, slot, c.kind.solved)
		if slot.BreakAfter {
			b.WriteString(PageBreak + "\n")
		}
		b.WriteString("\n")
	}

	if h.padding {
		b.WriteString(PageBreak + "\n" + ClosingPage + "\n")
	}
	b.WriteString(SectionClose + "\n\n")
}

func writeFirstPageHeader(b *strings.Builder, h header, c copyInfo, name string) {
	b.WriteString("\\noindent\n\\begin{minipage}[c]{0.3\\textwidth}\n")
	if h.logo != "" {
		fmt.Fprintf(b, "\\includegraphics[height=1.5cm,keepaspectratio]{%s}\n", h.logo)
	} else {
		b.WriteString("\\fbox{\\parbox[c][1.5cm][c]{3cm}{\\centering\\small Schullogo}}\n")
	}
	b.WriteString("\\end{minipage}\\hfill\n\\begin{minipage}[c]{0.4\\textwidth}\n\\centering\n")
	fmt.Fprintf(b, "{\\large\\textbf{%s}}\\\\\n%s\\\\\nKlasse %s, %s\n", h.subject, h.school, h.class, h.date)
	b.WriteString("\\end{minipage}\\hfill\n\\begin{minipage}[c]{0.25\\textwidth}\n\\raggedleft\n")
	if c.student != nil {
		fmt.Fprintf(b, "\\qrcode[height=1.5cm]{%s}\n", QRPayload(c.kasusID, c.student.StudentID))
	} else {
		b.WriteString("{\\Large\\textbf{MUSTER}}\n")
	}
	b.WriteString("\\end{minipage}\n\n\\vspace{1em}\n")

	fmt.Fprintf(b, "\\begin{center}\n{\\LARGE\\textbf{%s}}\n\\end{center}\n", h.topic)

	b.WriteString("\\noindent\n\\begin{tabularx}{\\textwidth}{@{}lXlX@{}}\n")
	fmt.Fprintf(b, "\\textbf{Name:} & %s & \\textbf{Datum:} & %s \\\\\n", name, h.date)
	fmt.Fprintf(b, "\\textbf{Klasse:} & %s & \\textbf{Zeit:} & %d Minuten \\\\\n", h.class, h.minutes)
	fmt.Fprintf(b, "\\textbf{Art:} & %s Nr. %d & \\textbf{Punkte:} & \\underline{\\hspace{1.2cm}} / %d \\\\\n",
		h.examType, h.number, h.points)
	b.WriteString("\\end{tabularx}\n\\vspace{1em}\n\n")
}

func writeQuestion(b *strings.Builder, number int, slot model.ExamQuestionSlot, solved bool) {
	q := slot.Question
	fmt.Fprintf(b, "%s%d}{%s}{%s}\n", QuestionHead, number, Escape(q.Title), PointsLabel(q.Points))
	if q.Body != "" {
		b.WriteString(q.Body + "\n")
	}

	if !solved {
		space := q.MinSpaceCM
		if space <= 0 {
			space = DefaultAnswerSpaceCM
		}
		fmt.Fprintf(b, "\\vspace{%s}\n", formatCM(space))
		return
	}

	if q.HasSolution() {
		b.WriteString("\\begin{loesung}\n" + q.Solution + "\n\\end{loesung}\n")
	} else {
		b.WriteString(NoSolution + "\n")
	}
}

// EstimatePages is a rough page estimate for one copy with the given number
// of active questions.
func EstimatePages(activeQuestions int) int {
	switch {
	case activeQuestions <= 2:
		return 1
	case activeQuestions <= 5:
		return 2
	case activeQuestions <= 8:
		return 3
	default:
		return 4
	}
}
