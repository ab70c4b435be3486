package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirGraphics(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"kegel.jpg":  {0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00},
		"netz.pdf":   []byte("%PDF-1.4\n"),
		"README":     []byte("no extension"),
		"skizze.png": []byte("not really a png"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := dirGraphics(dir).ListForQuestions(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListForQuestions: %v", err)
	}
	byName := map[string]string{}
	for _, g := range got {
		byName[g.Name] = g.FileName()
	}
	want := map[string]string{"kegel": "kegel.jpeg", "netz": "netz.pdf", "skizze": "skizze.png"}
	if len(byName) != len(want) {
		t.Fatalf("graphics = %v, want %v", byName, want)
	}
	for name, file := range want {
		if byName[name] != file {
			t.Errorf("%s -> %q, want %q", name, byName[name], file)
		}
	}
}

func TestLoadExam(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exam.json")
	logo := filepath.Join(dir, "logo.png")
	exam := `{"school_code":"GYM1","subject_code":"Ma","number":2,"class":"8a","date":"2025-03-24",
		"slots":[{"question":{"id":1,"points":3},"active":true},{"question":{"id":2,"points":4},"active":true}]}`
	if err := os.WriteFile(path, []byte(exam), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(logo, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := loadExam(path, logo)
	if err != nil {
		t.Fatalf("loadExam: %v", err)
	}
	if got.Slots[0].Position != 1 || got.Slots[1].Position != 2 {
		t.Errorf("positions not renumbered: %+v", got.Slots)
	}
	if got.School == nil || got.School.Code != "GYM1" || len(got.School.Logo) != 4 {
		t.Errorf("school = %+v", got.School)
	}
	if got.TotalPoints() != 7 {
		t.Errorf("TotalPoints = %d", got.TotalPoints())
	}

	if _, err := loadExam(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("missing file should fail")
	}
}
