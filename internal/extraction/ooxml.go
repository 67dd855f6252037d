package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/avelez/scoping-agent/internal/types"
)

// The OOXML containers (docx, pptx) are zip archives of XML parts. Text lives
// in <w:t>/<a:t> runs; walking those in document order preserves the reading
// order the format defines.

// extractWordProcessor pulls text, tracked-change and comment signals from a
// .docx container.
func extractWordProcessor(data []byte) (result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatWordProc),
			Message: "not a valid docx container",
			Cause:   err,
		}
	}

	main := zipEntry(zr, "word/document.xml")
	if main == nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatWordProc),
			Message: "missing word/document.xml",
		}
	}

	text, tracked, err := wordMLText(main)
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatWordProc),
			Message: "failed to parse document XML",
			Cause:   err,
		}
	}

	res := result{text: text}

	// Headers and footers carry translatable text too; a parse failure
	// there degrades to partial rather than failing the document.
	for _, name := range matchingEntries(zr, regexp.MustCompile(`^word/(header|footer)\d*\.xml$`)) {
		extra, _, err := wordMLText(zipEntry(zr, name))
		if err != nil {
			res.partial = true
			continue
		}
		if strings.TrimSpace(extra) != "" {
			res.text += "\n" + extra
		}
	}

	if tracked {
		res.flags = append(res.flags, "tracked changes detected")
	}
	if zipEntry(zr, "word/comments.xml") != nil {
		res.flags = append(res.flags, "document contains reviewer comments")
	}
	if n := countPrefix(zr, "word/media/"); n > 0 {
		res.meta.ImageCount = intPtr(n)
		res.flags = append(res.flags, fmt.Sprintf("contains %d embedded images", n))
	}
	if pages, ok := docPropsPages(zr); ok {
		res.meta.PageCount = intPtr(pages)
	}
	return res, nil
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPresentation pulls slide text in slide order from a .pptx container,
// appending speaker notes after each slide's body.
func extractPresentation(data []byte) (result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatPresentation),
			Message: "not a valid pptx container",
			Cause:   err,
		}
	}

	type slide struct {
		index int
		name  string
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePattern.FindStringSubmatch(f.Name); m != nil {
			idx, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{index: idx, name: f.Name})
		}
	}
	if len(slides) == 0 {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatPresentation),
			Message: "no slides found",
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	res := result{meta: types.DocumentMetadata{SlideCount: intPtr(len(slides))}}
	var sb strings.Builder
	for _, s := range slides {
		text, _, err := wordMLText(zipEntry(zr, s.name))
		if err != nil {
			res.partial = true
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')

		notes := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", s.index)
		if f := zipEntry(zr, notes); f != nil {
			noteText, _, err := wordMLText(f)
			if err == nil && strings.TrimSpace(noteText) != "" {
				sb.WriteString(noteText)
				sb.WriteByte('\n')
			}
		}
	}
	res.text = sb.String()

	if len(matchingEntries(zr, regexp.MustCompile(`^ppt/comments/`))) > 0 {
		res.flags = append(res.flags, "presentation contains comments")
	}
	if n := countPrefix(zr, "ppt/media/"); n > 0 {
		res.meta.ImageCount = intPtr(n)
		res.flags = append(res.flags, fmt.Sprintf("contains %d embedded images", n))
	}
	return res, nil
}

// wordMLText streams an OOXML part, concatenating the text runs (<w:t>,
// <a:t>) in document order. Returns whether tracked-change markup (<w:ins>,
// <w:del>) was seen.
func wordMLText(f *zip.File) (string, bool, error) {
	if f == nil {
		return "", false, fmt.Errorf("missing archive entry")
	}
	rc, err := f.Open()
	if err != nil {
		return "", false, err
	}
	defer func() { _ = rc.Close() }()
	return decodeRuns(rc)
}

func decodeRuns(r io.Reader) (string, bool, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	var inRun bool
	var tracked bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", tracked, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "ins", "del":
				tracked = true
			case "br":
				sb.WriteByte('\n')
			case "tab":
				sb.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}
	return sb.String(), tracked, nil
}

// docPropsPages reads the page count from docProps/app.xml when present.
func docPropsPages(zr *zip.Reader) (int, bool) {
	f := zipEntry(zr, "docProps/app.xml")
	if f == nil {
		return 0, false
	}
	rc, err := f.Open()
	if err != nil {
		return 0, false
	}
	defer func() { _ = rc.Close() }()

	dec := xml.NewDecoder(rc)
	var inPages bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inPages = t.Name.Local == "Pages"
		case xml.CharData:
			if inPages {
				if n, err := strconv.Atoi(strings.TrimSpace(string(t))); err == nil && n > 0 {
					return n, true
				}
				return 0, false
			}
		case xml.EndElement:
			inPages = false
		}
	}
}

func zipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func matchingEntries(zr *zip.Reader, pat *regexp.Regexp) []string {
	var names []string
	for _, f := range zr.File {
		if pat.MatchString(f.Name) {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

func countPrefix(zr *zip.Reader, prefix string) int {
	n := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && !strings.HasSuffix(f.Name, "/") {
			n++
		}
	}
	return n
}
