package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrExamNotFound     ErrCode = "EXAM_NOT_FOUND"
	ErrUnknownQuestion  ErrCode = "UNKNOWN_QUESTION"
	ErrPageBreakRange   ErrCode = "PAGE_BREAK_OUT_OF_RANGE"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"
	ErrSchoolNotFound   ErrCode = "SCHOOL_NOT_FOUND"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Generation ────────────────────────────────────────────────────
	ErrEmptyQuestionSet  ErrCode = "EMPTY_QUESTION_SET"
	ErrEmptyRoster       ErrCode = "EMPTY_ROSTER"
	ErrNoOutputSelected  ErrCode = "NO_OUTPUT_SELECTED"
	ErrStorageFailure    ErrCode = "STORAGE_UNAVAILABLE"
	ErrMarkupUnbalanced  ErrCode = "MARKUP_UNBALANCED"
	ErrCompileTimeout    ErrCode = "COMPILE_TIMEOUT"
	ErrCompileRejected   ErrCode = "COMPILE_REJECTED"
	ErrCompileNetwork    ErrCode = "COMPILE_NETWORK"
	ErrCompileEmpty      ErrCode = "COMPILE_EMPTY_RESPONSE"
	ErrJobNotFound       ErrCode = "JOB_NOT_FOUND"
	ErrJobAlreadyRunning ErrCode = "JOB_ALREADY_RUNNING"
	ErrJobNotFinished    ErrCode = "JOB_NOT_FINISHED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validierung fehlgeschlagen. Bitte Eingaben prüfen."
	case ErrInvalidID:
		return "Ungültiges ID-Format."
	case ErrInvalidPayload:
		return "Ungültiger Anfrageinhalt."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ressource nicht gefunden."
	case ErrExamNotFound:
		return "Klausur nicht gefunden."
	case ErrUnknownQuestion:
		return "Mindestens eine ausgewählte Aufgabe existiert nicht."
	case ErrPageBreakRange:
		return "Seitenumbruch nach einer nicht vorhandenen Aufgabe."
	case ErrQuestionNotFound:
		return "Aufgabe nicht gefunden."
	case ErrSchoolNotFound:
		return "Schule nicht gefunden."

	// ─── Uploads ───────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Es wurde keine Datei übermittelt."
	case ErrUnsupportedFile:
		return "Dateityp nicht unterstützt. Erlaubt sind PNG, JPEG und PDF."
	case ErrFileTooLarge:
		return "Die Datei ist zu groß."

	// ─── Generation ────────────────────────────────────────────────────
	case ErrEmptyQuestionSet:
		return "Die Klausur enthält keine aktiven Aufgaben."
	case ErrEmptyRoster:
		return "Für den Klassensatz wurden keine Schüler gefunden."
	case ErrNoOutputSelected:
		return "Es wurde keine Ausgabe ausgewählt."
	case ErrStorageFailure:
		return "Der KaSuSId-Zähler ist nicht erreichbar."
	case ErrMarkupUnbalanced:
		return "Das LaTeX-Dokument ist nicht wohlgeformt."
	case ErrCompileTimeout:
		return "Die PDF-Erstellung hat zu lange gedauert."
	case ErrCompileRejected:
		return "Der LaTeX-Dienst hat das Dokument abgelehnt."
	case ErrCompileNetwork:
		return "Der LaTeX-Dienst ist nicht erreichbar."
	case ErrCompileEmpty:
		return "Der LaTeX-Dienst hat kein PDF geliefert."
	case ErrJobNotFound:
		return "Auftrag nicht gefunden oder abgelaufen."
	case ErrJobAlreadyRunning:
		return "Für diese Klausur läuft bereits eine Erstellung."
	case ErrJobNotFinished:
		return "Der Auftrag ist noch nicht abgeschlossen."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Zu viele Anfragen. Bitte später erneut versuchen."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Interner Serverfehler."
	default:
		return "Unerwarteter Fehler."
	}
}
