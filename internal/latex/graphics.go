package latex

import (
	"regexp"

	"github.com/gabriel-vasile/mimetype"

	"github.com/stemsi/klausurgen/internal/model"
)

var includeGraphicsRe = regexp.MustCompile(`\\includegraphics(\[[^\]]*\])?\{([^}]+)\}`)

// RewriteGraphics points the \includegraphics{name} references of question
// questionID at their attachment file names. Only the question's own graphics
// and shared ones (QuestionID 0) are visible; its own win on a name clash.
// Unknown names are left alone.
func RewriteGraphics(markup string, questionID int64, graphics []model.Graphic) string {
	if len(graphics) == 0 || markup == "" {
		return markup
	}
	files := make(map[string]string, len(graphics))
	for _, g := range graphics {
		if g.QuestionID == 0 {
			if _, taken := files[g.Name]; !taken {
				files[g.Name] = g.AttachmentName()
			}
		}
	}
	for _, g := range graphics {
		if g.QuestionID == questionID && questionID != 0 {
			files[g.Name] = g.AttachmentName()
		}
	}
	if len(files) == 0 {
		return markup
	}
	return includeGraphicsRe.ReplaceAllStringFunc(markup, func(m string) string {
		sub := includeGraphicsRe.FindStringSubmatch(m)
		file, ok := files[sub[2]]
		if !ok {
			return m
		}
		return `\includegraphics` + sub[1] + "{" + file + "}"
	})
}

// GraphicAttachments converts graphics into compile attachments, one per
// attachment name.
func GraphicAttachments(graphics []model.Graphic) []model.Attachment {
	seen := make(map[string]bool, len(graphics))
	out := make([]model.Attachment, 0, len(graphics))
	for _, g := range graphics {
		name := g.AttachmentName()
		if seen[name] || len(g.Blob) == 0 {
			continue
		}
		seen[name] = true
		out = append(out, model.Attachment{Name: name, Content: g.Blob})
	}
	return out
}

// LogoFileName picks the logo attachment name from the image's content type.
func LogoFileName(logo []byte) string {
	return "logo." + ImageExtension(logo, "png")
}

// ImageExtension sniffs the file extension pdflatex needs for an embedded
// image: jpeg, png or pdf. Anything else yields fallback.
func ImageExtension(data []byte, fallback string) string {
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("image/jpeg"):
		return "jpeg"
	case mime.Is("image/png"):
		return "png"
	case mime.Is("application/pdf"):
		return "pdf"
	default:
		return fallback
	}
}

// LogoAttachment returns the school logo as an attachment, if the school has one.
func LogoAttachment(school *model.School) (model.Attachment, bool) {
	if school == nil || len(school.Logo) == 0 {
		return model.Attachment{}, false
	}
	return model.Attachment{Name: LogoFileName(school.Logo), Content: school.Logo}, true
}
