// Package pdftest writes small text-only PDF files, optionally protected with
// the standard security handler (RC4, 128-bit key, revision 3), for tests that
// need real statements to run through the decryption and extraction stages.
package pdftest

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"encoding/hex"
	"fmt"
	"strings"
)

// Text is a string drawn with its baseline starting at (X, Y), in points
// from the bottom-left corner of an A4 page.
type Text struct {
	X, Y float64
	S    string
}

// Document describes the pages of a PDF to write.
type Document struct {
	Pages [][]Text

	// UserPassword encrypts the file when set.
	UserPassword string
	// OwnerPassword defaults to UserPassword.
	OwnerPassword string

	// FontSize defaults to 9pt. Every glyph is Courier, 0.6em wide.
	FontSize float64
}

const (
	pageWidth  = 595
	pageHeight = 842
)

// permissions grants printing and copying, the usual bank e-statement flags.
const permissions int32 = -1028

var passwordPad = []byte{
	0x28, 0xbf, 0x4e, 0x5e, 0x4e, 0x75, 0x8a, 0x41,
	0x64, 0x00, 0x4e, 0x56, 0xff, 0xfa, 0x01, 0x08,
	0x2e, 0x2e, 0x00, 0xb6, 0xd0, 0x68, 0x3e, 0x80,
	0x2f, 0x0c, 0xa9, 0xfe, 0x64, 0x53, 0x69, 0x7a,
}

// CharWidth returns the advance of one glyph at the document font size.
func (d Document) CharWidth() float64 {
	return 0.6 * d.fontSize()
}

func (d Document) fontSize() float64 {
	if d.FontSize > 0 {
		return d.FontSize
	}
	return 9
}

// Encrypted reports whether Bytes will write an encryption dictionary.
func (d Document) Encrypted() bool {
	return d.UserPassword != "" || d.OwnerPassword != ""
}

// Bytes renders the document. The output is deterministic for a given
// Document.
func (d Document) Bytes() []byte {
	pages := d.Pages
	if len(pages) == 0 {
		pages = [][]Text{nil}
	}

	contents := make([][]byte, len(pages))
	for i, texts := range pages {
		contents[i] = d.contentStream(texts)
	}

	idSum := md5.New()
	for _, c := range contents {
		idSum.Write(c)
	}
	id := idSum.Sum(nil)

	var sec *security
	if d.Encrypted() {
		sec = newSecurity(d.UserPassword, d.OwnerPassword, id)
	}

	// 1 catalog, 2 page tree, 3 font, then a page and its content stream per
	// page, then the encryption dictionary.
	numObjects := 3 + 2*len(pages)
	encryptObj := 0
	if sec != nil {
		numObjects++
		encryptObj = numObjects
	}

	objects := make([][]byte, numObjects+1)
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects[1] = []byte("<< /Type /Catalog /Pages 2 0 R >>")
	objects[2] = []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects[3] = fontObject()

	for i, content := range contents {
		pageNum, contentNum := 4+2*i, 5+2*i
		objects[pageNum] = []byte(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, contentNum))

		if sec != nil {
			content = sec.encrypt(contentNum, content)
		}
		var obj bytes.Buffer
		fmt.Fprintf(&obj, "<< /Length %d >>\nstream\n", len(content))
		obj.Write(content)
		obj.WriteString("\nendstream")
		objects[contentNum] = obj.Bytes()
	}

	if sec != nil {
		objects[encryptObj] = []byte(fmt.Sprintf(
			"<< /Filter /Standard /V 2 /R 3 /Length 128 /P %d /O <%s> /U <%s> >>",
			permissions, hex.EncodeToString(sec.o), hex.EncodeToString(sec.u)))
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, numObjects+1)
	for num := 1; num <= numObjects; num++ {
		offsets[num] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", num)
		out.Write(objects[num])
		out.WriteString("\nendobj\n")
	}

	xrefOffset := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", numObjects+1)
	for num := 1; num <= numObjects; num++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[num])
	}

	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R", numObjects+1)
	if sec != nil {
		fmt.Fprintf(&out, " /Encrypt %d 0 R", encryptObj)
	}
	fmt.Fprintf(&out, " /ID [<%s> <%s>] >>\n", hex.EncodeToString(id), hex.EncodeToString(id))
	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return out.Bytes()
}

func (d Document) contentStream(texts []Text) []byte {
	var b bytes.Buffer
	for _, t := range texts {
		fmt.Fprintf(&b, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n",
			formatNumber(d.fontSize()), formatNumber(t.X), formatNumber(t.Y), escapeString(t.S))
	}
	return b.Bytes()
}

func fontObject() []byte {
	var b bytes.Buffer
	b.WriteString("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 255 /Widths [")
	for c := 32; c <= 255; c++ {
		if c > 32 {
			b.WriteByte(' ')
		}
		b.WriteString("600")
	}
	b.WriteString("] >>")
	return b.Bytes()
}

func formatNumber(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// escapeString encodes s as the body of a literal string in WinAnsi.
// Characters outside WinAnsi are written as '?'.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r >= 32 && r < 127:
			b.WriteRune(r)
		case r == '€':
			b.WriteString(`\200`)
		case r == '•':
			b.WriteString(`\225`)
		case r >= 0xa0 && r <= 0xff:
			fmt.Fprintf(&b, `\%03o`, r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

type security struct {
	key []byte
	o   []byte
	u   []byte
}

func newSecurity(user, owner string, id []byte) *security {
	if owner == "" {
		owner = user
	}
	o := ownerEntry(owner, user)
	key := encryptionKey(user, o, id)
	return &security{key: key, o: o, u: userEntry(key, id)}
}

func padPassword(pw string) []byte {
	out := make([]byte, 0, 32)
	out = append(out, pw...)
	if len(out) >= 32 {
		return out[:32]
	}
	return append(out, passwordPad[:32-len(out)]...)
}

func ownerEntry(owner, user string) []byte {
	sum := md5.Sum(padPassword(owner))
	key := sum[:]
	for i := 0; i < 50; i++ {
		next := md5.Sum(key)
		key = next[:]
	}
	o := padPassword(user)
	rc4Rounds(key, o)
	return o
}

func encryptionKey(user string, o, id []byte) []byte {
	perm := permissions
	p := uint32(perm)
	h := md5.New()
	h.Write(padPassword(user))
	h.Write(o)
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	h.Write(id)
	key := h.Sum(nil)
	for i := 0; i < 50; i++ {
		next := md5.Sum(key[:16])
		key = next[:]
	}
	return key[:16]
}

func userEntry(key, id []byte) []byte {
	h := md5.New()
	h.Write(passwordPad)
	h.Write(id)
	u := h.Sum(nil)
	rc4Rounds(key, u)
	return append(u, make([]byte, 16)...)
}

// rc4Rounds encrypts buf with key, then 19 more times with key XOR i.
func rc4Rounds(key, buf []byte) {
	for i := 0; i <= 19; i++ {
		k := make([]byte, len(key))
		for j := range key {
			k[j] = key[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(k)
		c.XORKeyStream(buf, buf)
	}
}

func (s *security) encrypt(objNum int, data []byte) []byte {
	h := md5.New()
	h.Write(s.key)
	h.Write([]byte{byte(objNum), byte(objNum >> 8), byte(objNum >> 16), 0, 0})
	c, _ := rc4.NewCipher(h.Sum(nil))
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}
