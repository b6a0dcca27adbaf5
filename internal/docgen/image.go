package docgen

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Images are bound at a fixed 120x90 px box (96 DPI), expressed in EMUs.
const (
	emuPerPixel    = 9525
	imageWidthEMU  = 120 * emuPerPixel
	imageHeightEMU = 90 * emuPerPixel
)

var relIDRe = regexp.MustCompile(`Id="rId(\d+)"`)

type renderer struct {
	arch *archive

	nextRelID int
	nextImage int
	nextDocPr int

	media []part
	rels  []string
	exts  map[string]string // extension -> content type
}

func newRenderer(arch *archive) *renderer {
	r := &renderer{arch: arch, nextRelID: 1, nextImage: 1, nextDocPr: 1000, exts: map[string]string{}}

	if rels, ok := arch.get(documentRelsPart); ok {
		for _, m := range relIDRe.FindAllStringSubmatch(string(rels), -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= r.nextRelID {
				r.nextRelID = n + 1
			}
		}
	}
	for _, p := range arch.parts {
		if strings.HasPrefix(p.name, "word/media/") {
			r.nextImage++
		}
	}
	return r
}

// registerImage stores the payload as a new media part and returns the inline
// drawing fragment referencing it. Payloads that are not a recognized image
// format are rejected so a corrupt fetch degrades to an absent image instead
// of producing an unopenable document.
func (r *renderer) registerImage(data []byte) (string, bool) {
	ext, contentType, ok := sniffImage(data)
	if !ok {
		return "", false
	}

	relID := fmt.Sprintf("rId%d", r.nextRelID)
	r.nextRelID++
	name := fmt.Sprintf("image%d.%s", r.nextImage, ext)
	r.nextImage++
	docPrID := r.nextDocPr
	r.nextDocPr++

	r.media = append(r.media, part{name: "word/media/" + name, data: data})
	r.rels = append(r.rels, fmt.Sprintf(
		`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`,
		relID, name,
	))
	r.exts[ext] = contentType

	return drawingRun(docPrID, relID), true
}

func sniffImage(data []byte) (ext, contentType string, ok bool) {
	switch ct := http.DetectContentType(data); ct {
	case "image/png":
		return "png", ct, true
	case "image/jpeg":
		return "jpeg", ct, true
	case "image/gif":
		return "gif", ct, true
	default:
		return "", "", false
	}
}

// drawingRun renders a self-contained run holding an inline picture. All
// drawing namespaces are declared locally so the template's root element does
// not need them.
func drawingRun(docPrID int, relID string) string {
	return fmt.Sprintf(`<w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/>`+
		`<wp:docPr id="%[3]d" name="Picture %[3]d"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%[3]d" name="Picture %[3]d"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[4]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/>`+
		`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		imageWidthEMU, imageHeightEMU, docPrID, relID,
	)
}

// flushMedia writes accumulated media parts and patches the relationship and
// content-type manifests to reference them.
func (r *renderer) flushMedia() error {
	if len(r.media) == 0 {
		return nil
	}

	for _, m := range r.media {
		r.arch.set(m.name, m.data)
	}

	rels, ok := r.arch.get(documentRelsPart)
	relsStr := string(rels)
	if !ok || relsStr == "" {
		relsStr = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
	}
	// An empty manifest may be written self-closing.
	relsStr = strings.Replace(relsStr,
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`, 1)
	idx := strings.LastIndex(relsStr, "</Relationships>")
	if idx < 0 {
		return &LoadError{Reason: "malformed " + documentRelsPart}
	}
	relsStr = relsStr[:idx] + strings.Join(r.rels, "") + relsStr[idx:]
	r.arch.set(documentRelsPart, []byte(relsStr))

	ctypes, ok := r.arch.get(contentTypesPart)
	ctStr := string(ctypes)
	if !ok || ctStr == "" {
		ctStr = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`</Types>`
	}
	var defaults []string
	for ext, ct := range r.exts {
		if !strings.Contains(ctStr, `Extension="`+ext+`"`) {
			defaults = append(defaults, fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, ext, ct))
		}
	}
	if len(defaults) > 0 {
		idx := strings.LastIndex(ctStr, "</Types>")
		if idx < 0 {
			return &LoadError{Reason: "malformed " + contentTypesPart}
		}
		ctStr = ctStr[:idx] + strings.Join(defaults, "") + ctStr[idx:]
	}
	r.arch.set(contentTypesPart, []byte(ctStr))

	return nil
}
