package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Parse reads the selected worksheet. XLSX content is always UTF-8, so
// opt.Encoding is ignored.
func (xlsxParser) Parse(src io.Reader, name string, opt Options) (*Sheet, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := workbook{files: map[string]*zip.File{}}
	for _, f := range zr.File {
		wb.files[f.Name] = f
	}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	shared, err := wb.sharedStrings()
	if err != nil {
		return nil, err
	}
	data, err := wb.read(target)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s: worksheet %s not found", name, target)
	}
	sh := &Sheet{Name: name}
	rows := &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
	header, ok, err := rows.next()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return sh, nil
	}
	sh.Header = header
	for {
		row, ok, err := rows.next()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			break
		}
		if len(row) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, row)
			row = tmp
		}
		sh.Rows = append(sh.Rows, row)
	}
	return sh, nil
}

type workbook struct {
	files map[string]*zip.File
}

func (w workbook) read(name string) ([]byte, error) {
	f, ok := w.files[name]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

type xlsxSheetRef struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxWorkbook struct {
	Sheets []xlsxSheetRef `xml:"sheets>sheet"`
}

type xlsxRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// sheetPath resolves the zip entry of the requested worksheet.
func (w workbook) sheetPath(sheetName string, sheetIndex int) (string, error) {
	var wbx xlsxWorkbook
	if b, err := w.read("xl/workbook.xml"); err != nil {
		return "", err
	} else if b != nil {
		if err := xml.Unmarshal(b, &wbx); err != nil {
			return "", fmt.Errorf("parse workbook: %w", err)
		}
	}
	rels := map[string]string{}
	if b, err := w.read("xl/_rels/workbook.xml.rels"); err != nil {
		return "", err
	} else if b != nil {
		var rx xlsxRels
		if err := xml.Unmarshal(b, &rx); err != nil {
			return "", fmt.Errorf("parse workbook rels: %w", err)
		}
		for _, r := range rx.Rels {
			rels[r.ID] = r.Target
		}
	}
	if sheetName != "" {
		names := make([]string, 0, len(wbx.Sheets))
		for _, s := range wbx.Sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if t, ok := rels[s.RID]; ok {
					return relPath(t), nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", sheetName, strings.Join(names, ", "))
	}
	if sheetIndex <= 0 {
		sheetIndex = 1
	}
	for _, s := range wbx.Sheets {
		if s.SheetID == sheetIndex {
			if t, ok := rels[s.RID]; ok {
				return relPath(t), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", sheetIndex), nil
}

// relPath turns a relationship target into a zip entry name.
func relPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

type xlsxShared struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

func (w workbook) sharedStrings() ([]string, error) {
	b, err := w.read("xl/sharedStrings.xml")
	if err != nil || b == nil {
		return nil, err
	}
	var sx xlsxShared
	if err := xml.Unmarshal(b, &sx); err != nil {
		return nil, fmt.Errorf("parse shared strings: %w", err)
	}
	out := make([]string, len(sx.Items))
	for i, it := range sx.Items {
		if len(it.Runs) == 0 {
			out[i] = it.T
			continue
		}
		var sb strings.Builder
		for _, r := range it.Runs {
			sb.WriteString(r.T)
		}
		out[i] = sb.String()
	}
	return out, nil
}

// rowReader streams <row> elements of a worksheet.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		T string `xml:"t"`
	} `xml:"is"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

// next returns the following row; ok is false at the end of the sheet.
func (r *rowReader) next() ([]string, bool, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read xlsx row: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row xlsxRow
		if err := r.dec.DecodeElement(&row, &se); err != nil {
			return nil, false, fmt.Errorf("read xlsx row: %w", err)
		}
		var out []string
		for i, c := range row.Cells {
			idx := i
			ci, err := columnIndex(c.Ref)
			if err != nil {
				return nil, false, err
			}
			if ci >= 0 {
				idx = ci
			}
			if idx >= maxColumns {
				return nil, false, fmt.Errorf("read xlsx row: more than %d cells in a row", maxColumns)
			}
			for len(out) <= idx {
				out = append(out, "")
			}
			v, err := r.cellText(c)
			if err != nil {
				return nil, false, err
			}
			out[idx] = v
		}
		return out, true, nil
	}
}

func (r *rowReader) cellText(c xlsxCell) (string, error) {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(r.shared) {
			return "", fmt.Errorf("cell %s: shared string %q out of range (%d strings)", c.Ref, c.Value, len(r.shared))
		}
		return r.shared[i], nil
	case "inlineStr":
		return c.Inline.T, nil
	default:
		return c.Value, nil
	}
}

// maxColumns is the worksheet width limit of the format (column XFD).
const maxColumns = 16384

// columnIndex converts a cell reference like "AB12" into a 0-based column.
// It returns -1 when ref has no column letters.
func columnIndex(ref string) (int, error) {
	idx := 0
	for _, ch := range strings.ToUpper(ref) {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
		if idx > maxColumns {
			return 0, fmt.Errorf("cell reference %q is beyond column XFD", ref)
		}
	}
	return idx - 1, nil
}
