package latex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// escaper runs in a single pass, so replacement text such as
// \textbackslash{} is never escaped a second time.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape makes free text safe to embed in LaTeX. Apply it exactly once per field.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	return escaper.Replace(s)
}

// FormatDate renders an ISO date (2006-01-02) as TT.MM.JJJJ.
// Dates already in German notation and unparsable input are returned unchanged.
func FormatDate(date string) string {
	if date == "" || strings.Contains(date, ".") {
		return date
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

// QRPayload is the text encoded in a student copy's QR code, "<KaSuSId>-<StudentID>".
func QRPayload(kasusID, studentID int64) string {
	return fmt.Sprintf("%d-%d", kasusID, studentID)
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename replaces characters that are invalid in file names on
// common platforms and caps the length at 255 bytes.
func SanitizeFilename(name string) string {
	clean := invalidFilenameChars.ReplaceAllString(name, "_")
	clean = strings.Trim(clean, ". ")
	for len(clean) > 255 {
		_, size := utf8.DecodeLastRuneInString(clean)
		clean = clean[:len(clean)-size]
	}
	return clean
}

// PointsLabel returns "1 Punkt" or "<n> Punkte".
func PointsLabel(points int) string {
	if points == 1 {
		return "1 Punkt"
	}
	return strconv.Itoa(points) + " Punkte"
}

func formatCM(cm float64) string {
	return strconv.FormatFloat(cm, 'f', -1, 64) + "cm"
}
