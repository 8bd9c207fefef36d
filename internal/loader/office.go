package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DOCX and PPTX are both OOXML: zip archives of XML parts. Text lives
// in <w:t> runs (Word) and <a:t> runs (PowerPoint); run-container end
// elements mark paragraph breaks.

func loadDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx failed: %w", err)
	}
	defer archive.Close()

	doc := findPart(archive, "word/document.xml")
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	text, err := extractRuns(doc, "t", "p")
	if err != nil {
		return "", fmt.Errorf("parse docx failed: %w", err)
	}
	return text, nil
}

func loadPPTX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx failed: %w", err)
	}
	defer archive.Close()

	var slides []*zip.File
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	// slide10.xml sorts before slide2.xml lexically, so order by the
	// numeric suffix
	sort.Slice(slides, func(i, j int) bool {
		ni, nj := slideNumber(slides[i].Name), slideNumber(slides[j].Name)
		if ni != nj {
			return ni < nj
		}
		return slides[i].Name < slides[j].Name
	})

	var out strings.Builder
	for _, slide := range slides {
		text, err := extractRuns(slide, "t", "p")
		if err != nil {
			return "", fmt.Errorf("parse pptx slide %s failed: %w", slide.Name, err)
		}
		if text != "" {
			if out.Len() > 0 {
				out.WriteString("\n")
			}
			out.WriteString(text)
		}
	}
	return out.String(), nil
}

func slideNumber(name string) int {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func findPart(archive *zip.ReadCloser, name string) *zip.File {
	for _, f := range archive.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// extractRuns concatenates the character data of every <textElem>
// element, inserting a newline at each </paraElem>.
func extractRuns(f *zip.File, textElem, paraElem string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var out strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textElem {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == textElem {
				inText = false
			}
			if t.Name.Local == paraElem {
				out.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
