package livesearch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"

	"github.com/dohuyhoang93/deepsearch-go/internal/model"
)

// ContentFlags gates each content-search extension group independently;
// a disabled group is skipped entirely rather than falling back to a
// different matcher.
type ContentFlags struct {
	PDF       bool
	Office    bool
	PlainText bool
}

// searchFileContent dispatches path to the handler for its extension,
// returning nil (not an error) for anything unsupported or disabled.
func searchFileContent(path, keyword string, flags ContentFlags) []model.LiveHit {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case ext == "pdf" && flags.PDF:
		return searchPDF(path, keyword)
	case ext == "docx" && flags.Office:
		return searchDocx(path, keyword)
	case ext == "xlsx" && flags.Office:
		return searchXlsx(path, keyword)
	case flags.PlainText && model.PlainTextExtensions[ext]:
		return searchPlainText(path, keyword)
	default:
		return nil
	}
}

func searchPDF(path, keyword string) []model.LiveHit {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var hits []model.LiveHit
	total := r.NumPage()
	for page := 1; page <= total; page++ {
		p := r.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil || !strings.Contains(text, keyword) {
			continue
		}
		hits = append(hits, model.LiveHit{
			Path:    path,
			Line:    page,
			Snippet: firstMatchingLine(text, keyword),
		})
	}
	return hits
}

func searchDocx(path, keyword string) []model.LiveHit {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil
	}
	defer r.Close()

	content := r.Editable().GetContent()
	if !strings.Contains(content, keyword) {
		return nil
	}
	return []model.LiveHit{{Path: path, Line: 1, Snippet: firstMatchingLine(content, keyword)}}
}

func searchXlsx(path, keyword string) []model.LiveHit {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var hits []model.LiveHit
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for i, row := range rows {
			text := strings.Join(row, " | ")
			if strings.Contains(text, keyword) {
				hits = append(hits, model.LiveHit{Path: path, Line: i + 1, Snippet: text})
			}
		}
	}
	return hits
}

func searchPlainText(path, keyword string) []model.LiveHit {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var hits []model.LiveHit
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.Contains(line, keyword) {
			hits = append(hits, model.LiveHit{Path: path, Line: lineNo, Snippet: line})
		}
	}
	return hits
}

func firstMatchingLine(text, keyword string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, keyword) {
			return strings.TrimSpace(line)
		}
	}
	return strings.TrimSpace(text)
}
