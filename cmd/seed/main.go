package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/database"
	"github.com/stemsi/klausurgen/internal/logger"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/repository"
	"github.com/stemsi/klausurgen/internal/service"
)

const (
	schoolCode = "GYM1"
	schoolYear = "2024/2025"
	className  = "8a"
)

var names = [][2]string{
	{"Anna", "Becker"}, {"Ben", "Schulz"}, {"Clara", "Hoffmann"}, {"David", "Koch"},
	{"Emma", "Richter"}, {"Felix", "Klein"}, {"Greta", "Wolf"}, {"Hannes", "Neumann"},
	{"Ida", "Schwarz"}, {"Jonas", "Zimmermann"}, {"Klara", "Braun"}, {"Leon", "Krüger"},
	{"Mia", "Hofmann"}, {"Noah", "Hartmann"}, {"Paula", "Lange"}, {"Quentin", "Schmitt"},
	{"Romy", "Werner"}, {"Simon", "Krause"}, {"Tilda", "Meier"}, {"Ulrich", "Lehmann"},
	{"Vera", "Schmid"}, {"Willi", "Schulze"}, {"Yara", "Maier"}, {"Zoe", "Köhler"},
}

var questions = []model.Question{
	{
		Title: "Volumen eines Kegels", Subject: "Mathematik", Topic: "Kegel", GradeLevel: 8,
		Difficulty: model.DifficultyEasy, Demand: model.DemandI, Points: 4, MinSpaceCM: 5,
		Body: `Berechne das Volumen eines Kegels mit $r = 3\,\mathrm{cm}$ und $h = 7\,\mathrm{cm}$.

\begin{center}\includegraphics[width=4cm]{kegel}\end{center}`,
		Solution: `$V = \frac{1}{3}\pi r^2 h = \frac{1}{3}\pi \cdot 9 \cdot 7 \approx 65{,}97\,\mathrm{cm}^3$`,
		Keywords: "Volumen, Kegel",
	},
	{
		Title: "Mantelfläche", Subject: "Mathematik", Topic: "Kegel", GradeLevel: 8,
		Difficulty: model.DifficultyMedium, Demand: model.DemandII, Points: 6, MinSpaceCM: 6,
		Body:     `Ein kegelförmiges Zelt hat den Radius $2\,\mathrm{m}$ und die Mantellinie $s = 3{,}5\,\mathrm{m}$. Wie viel Stoff wird für den Mantel benötigt?`,
		Solution: `$M = \pi r s = \pi \cdot 2 \cdot 3{,}5 \approx 21{,}99\,\mathrm{m}^2$`,
		Keywords: "Mantel, Zelt",
	},
	{
		Title: "Höhe bestimmen", Subject: "Mathematik", Topic: "Kegel", GradeLevel: 8,
		Difficulty: model.DifficultyHard, Demand: model.DemandIII, Points: 8, MinSpaceCM: 8,
		Body:     `Ein Kegel hat das Volumen $V = 100\,\mathrm{cm}^3$ und den Radius $r = 4\,\mathrm{cm}$. Bestimme die Höhe und begründe, wie sich die Höhe ändert, wenn der Radius verdoppelt wird.`,
		Keywords: "Umkehraufgabe",
	},
}

func main() {
	var withExam bool
	flag.BoolVar(&withExam, "exam", true, "Also create a demo exam using the seeded questions")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	schoolRepo := repository.NewSchoolRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	graphicRepo := repository.NewGraphicRepository(pool)
	examRepo := repository.NewExamRepository(pool)

	// ─── School ────────────────────────────────────────────────────────
	logo, err := drawLogo()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to draw logo")
	}
	school := &model.School{Code: schoolCode, Name: "Gymnasium am Stadtpark", Logo: logo}
	if err := schoolRepo.Upsert(ctx, school); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed school")
	}

	// ─── Roster ────────────────────────────────────────────────────────
	seeded := 0
	for i, n := range names {
		s := &model.Student{
			SchoolYear: schoolYear,
			School:     schoolCode,
			StudentID:  int64(12001 + i),
			GivenName:  n[0],
			FamilyName: n[1],
			Class:      className,
			Account:    fmt.Sprintf("%s.%s", n[0], n[1]),
			GradeLevel: 8,
		}
		if err := studentRepo.Upsert(ctx, s); err != nil {
			log.Error().Err(err).Int64("student_id", s.StudentID).Msg("Failed to seed student")
			continue
		}
		seeded++
	}
	log.Info().Int("students", seeded).Str("class", className).Msg("Roster seeded")

	// ─── Questions ─────────────────────────────────────────────────────
	ids := make([]int64, 0, len(questions))
	for i := range questions {
		q := questions[i]
		if err := questionRepo.Create(ctx, &q); err != nil {
			log.Fatal().Err(err).Str("title", q.Title).Msg("Failed to seed question")
		}
		ids = append(ids, q.ID)
	}

	cone, err := drawCone()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to draw graphic")
	}
	if err := graphicRepo.Create(ctx, &model.Graphic{QuestionID: ids[0], Name: "kegel", FileType: "pdf", Blob: cone}); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed graphic")
	}
	log.Info().Ints64("question_ids", ids).Msg("Questions seeded")

	if !withExam {
		return
	}

	// ─── Demo Exam ─────────────────────────────────────────────────────
	exams := service.NewExamService(examRepo, questionRepo, studentRepo, schoolRepo, log)
	slots := make([]model.SlotRequest, len(ids))
	for i, id := range ids {
		slots[i] = model.SlotRequest{QuestionID: id}
	}
	exam, err := exams.Create(ctx, &model.ExamRequest{
		SchoolCode:      schoolCode,
		Subject:         "Mathematik",
		SubjectCode:     "Ma",
		GradeLevel:      8,
		Class:           className,
		Type:            model.ExamTypeClassTest,
		Number:          2,
		Date:            time.Now().Format("2006-01-02"),
		DurationMinutes: 45,
		Topic:           "Kegel",
		SchoolYear:      schoolYear,
		Slots:           slots,
		PageBreaks:      []int{1},
		Options:         model.OutputOptions{SampleSolved: true, ClassSetUnsolved: true},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}
	log.Info().Int64("exam_id", exam.ID).Int("total_points", exam.TotalPoints).Msg("Demo exam created")
}

// drawCone renders a small cone sketch as a one-page PDF.
func drawCone() ([]byte, error) {
	doc := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "mm", Size: gofpdf.SizeType{Wd: 60, Ht: 70}})
	doc.AddPage()
	doc.SetLineWidth(0.4)
	doc.Line(30, 8, 8, 55)
	doc.Line(30, 8, 52, 55)
	doc.Ellipse(30, 55, 22, 6, 0, "D")
	doc.SetDashPattern([]float64{1.5, 1}, 0)
	doc.Line(30, 8, 30, 55)
	doc.Line(30, 55, 52, 55)
	doc.SetFont("Helvetica", "", 10)
	doc.Text(32, 34, "h")
	doc.Text(40, 53, "r")
	return output(doc)
}

// drawLogo renders a plain text logo as a one-page PDF.
func drawLogo() ([]byte, error) {
	doc := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "mm", Size: gofpdf.SizeType{Wd: 40, Ht: 20}})
	doc.AddPage()
	doc.SetFillColor(30, 80, 140)
	doc.Rect(0, 0, 40, 20, "F")
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 14)
	doc.Text(6, 13, schoolCode)
	return output(doc)
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
