package corpus

import (
	"archive/zip"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// elfMagic is the 16-byte ELF identification header; the generated
// binaries are inert but look like real 64-bit executables to content
// inspection.
var elfMagic = []byte{
	0x7f, 0x45, 0x4c, 0x46, 0x02, 0x01, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

const (
	baseSizeKB     = 20
	docxMaxSizeMB  = 50
	ManifestName   = "config.txt"
	filePermission = 0644
)

// Generator writes the test-content corpus plus its manifest. The
// formats are approximate on purpose: the harness measures transfer,
// not document rendering.
type Generator struct {
	OutputDir string
	MaxSizeMB float64 // largest variant; sizes double from 20KB up to this
	Rand      *rand.Rand
}

// Generate produces every size variant and the manifest, returning the
// manifest path.
func (g *Generator) Generate() (string, error) {
	if g.MaxSizeMB <= 0 {
		return "", fmt.Errorf("max size must be greater than 0")
	}
	if err := os.MkdirAll(g.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var lines []string
	for _, sizeKB := range sizeVariants(g.MaxSizeMB) {
		variantLines, err := g.generateVariant(sizeKB)
		if err != nil {
			return "", fmt.Errorf("failed to generate %s variant: %w", sizeString(sizeKB), err)
		}
		lines = append(lines, variantLines...)
	}

	sort.Strings(lines)
	manifestPath := filepath.Join(g.OutputDir, ManifestName)
	if err := os.WriteFile(manifestPath, []byte(strings.Join(lines, "\n")+"\n"), filePermission); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifestPath, nil
}

// sizeVariants doubles from the 20KB base until maxMB is exceeded.
func sizeVariants(maxMB float64) []int {
	var sizes []int
	for kb := baseSizeKB; float64(kb)/1024 <= maxMB; kb *= 2 {
		sizes = append(sizes, kb)
	}
	return sizes
}

// sizeString renders a size the way the corpus names its files: 20KB,
// 1MB, 2GB.
func sizeString(sizeKB int) string {
	switch {
	case sizeKB >= 1024*1024:
		return fmt.Sprintf("%.0fGB", float64(sizeKB)/(1024*1024))
	case sizeKB >= 1024:
		return fmt.Sprintf("%.0fMB", float64(sizeKB)/1024)
	default:
		return fmt.Sprintf("%dKB", sizeKB)
	}
}

func (g *Generator) generateVariant(sizeKB int) ([]string, error) {
	sizeMB := float64(sizeKB) / 1024
	sizeBytes := int64(sizeKB) * 1024
	label := sizeString(sizeKB)

	var lines []string

	binName := fmt.Sprintf("binary_%s.bin", label)
	if err := g.writeBinary(binName, sizeBytes); err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("%s, %.2fMB", binName, sizeMB))

	zipName := fmt.Sprintf("archive_%s.zip", label)
	if err := g.writeArchive(zipName, sizeBytes); err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("%s, %.2fMB", zipName, sizeMB))

	// Documents stay under the size the original formats stay valid at.
	if sizeMB <= docxMaxSizeMB {
		docName := fmt.Sprintf("document_%s.docx", label)
		if err := g.writeDocx(docName, sizeBytes); err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s, %.2fMB", docName, sizeMB))
	}

	return lines, nil
}

// writeBinary emits an ELF-headered file padded to size with random
// (incompressible) bytes.
func (g *Generator) writeBinary(name string, size int64) error {
	f, err := os.Create(filepath.Join(g.OutputDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(elfMagic); err != nil {
		return err
	}
	return g.writeRandom(f, size-int64(len(elfMagic)))
}

// writeArchive emits a real zip whose members are random payloads,
// stored uncompressed so the archive lands on the target size.
func (g *Generator) writeArchive(name string, size int64) error {
	f, err := os.Create(filepath.Join(g.OutputDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	memberSize := size / 3
	for _, member := range []string{"binary1.elf", "binary2.elf", "image.jpg"} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: member, Method: zip.Store})
		if err != nil {
			return err
		}
		if _, err := w.Write(elfMagic); err != nil {
			return err
		}
		if err := g.writeRandom(w, memberSize-int64(len(elfMagic))); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeDocx emits a minimal OPC package: the three parts a docx needs
// to identify as one, plus a stored media payload that pads it to size.
func (g *Generator) writeDocx(name string, size int64) error {
	f, err := os.Create(filepath.Join(g.OutputDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="bin" ContentType="application/octet-stream"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>synthetic test document</w:t></w:r></w:p></w:body>
</w:document>`,
	}

	written := int64(0)
	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		w, err := zw.Create(part)
		if err != nil {
			return err
		}
		n, err := w.Write([]byte(parts[part]))
		if err != nil {
			return err
		}
		written += int64(n)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{Name: "word/media/payload.bin", Method: zip.Store})
	if err != nil {
		return err
	}
	if err := g.writeRandom(w, size-written); err != nil {
		return err
	}
	return zw.Close()
}

func (g *Generator) writeRandom(w io.Writer, size int64) error {
	buf := make([]byte, 64*1024)
	for size > 0 {
		n := int64(len(buf))
		if size < n {
			n = size
		}
		g.Rand.Read(buf[:n])
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		size -= n
	}
	return nil
}
