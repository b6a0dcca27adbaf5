package docgen

import (
	"archive/zip"
	"bytes"
	"io"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
)

type part struct {
	name string
	data []byte
}

// archive holds the template package parts in their original order so the
// output keeps the input's internal layout.
type archive struct {
	parts []part
}

func openArchive(b []byte) (*archive, error) {
	r, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &LoadError{Reason: "not a valid archive", Err: err}
	}

	a := &archive{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &LoadError{Reason: "unreadable part " + f.Name, Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &LoadError{Reason: "unreadable part " + f.Name, Err: err}
		}
		a.parts = append(a.parts, part{name: f.Name, data: data})
	}

	if _, ok := a.get(documentPart); !ok {
		return nil, &LoadError{Reason: "archive has no " + documentPart + " part"}
	}
	return a, nil
}

func (a *archive) get(name string) ([]byte, bool) {
	for _, p := range a.parts {
		if p.name == name {
			return p.data, true
		}
	}
	return nil, false
}

func (a *archive) set(name string, data []byte) {
	for i, p := range a.parts {
		if p.name == name {
			a.parts[i].data = data
			return
		}
	}
	a.parts = append(a.parts, part{name: name, data: data})
}

func (a *archive) bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range a.parts {
		f, err := w.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(p.data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
