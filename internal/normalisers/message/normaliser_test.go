package message

import (
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalise_PlainText(t *testing.T) {
	n := New()
	got := n.Normalise("  Please quote 2 x 40HC from Shanghai.  ")
	assert.Equal(t, "Please quote 2 x 40HC from Shanghai.", got)
}

func TestNormalise_Empty(t *testing.T) {
	n := New()
	assert.Equal(t, "", n.Normalise(""))
}

func TestNormalise_MultipartPrefersPlainText(t *testing.T) {
	raw := `Content-Type: multipart/alternative; boundary="BOUND"

--BOUND
Content-Type: text/plain; charset=utf-8

Gross weight: 5000 kg
--BOUND
Content-Type: text/html

<html><body><b>Gross weight: 5000 kg</b></body></html>
--BOUND--`

	got := New().Normalise(raw)
	assert.Equal(t, "Gross weight: 5000 kg", got)
}

func TestNormalise_MultipartBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("poids brut 12 T"))
	raw := "Content-Type: multipart/mixed; boundary=XYZ\n\n" +
		"--XYZ\nContent-Type: text/plain\nContent-Transfer-Encoding: base64\n\n" +
		encoded + "\n--XYZ--"

	got := New().Normalise(raw)
	assert.Equal(t, "poids brut 12 T", got)
}

func TestNormalise_MultipartQuotedPrintable(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=QP\n\n" +
		"--QP\nContent-Type: text/plain\nContent-Transfer-Encoding: quoted-printable\n\n" +
		"fret a=C3=A9rien urgent\n--QP--"

	got := New().Normalise(raw)
	assert.Equal(t, "fret aérien urgent", got)
}

func TestNormalise_MultipartSkipsImages(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=IMG\n\n" +
		"--IMG\nContent-Type: image/png\nContent-Transfer-Encoding: base64\n\n" +
		"iVBORw0KGgo=\n" +
		"--IMG\nContent-Type: text/plain\n\nvolume: 20 cbm\n--IMG--"

	got := New().Normalise(raw)
	assert.Equal(t, "volume: 20 cbm", got)
}

func TestNormalise_MultipartFallsBackToHTML(t *testing.T) {
	raw := "Content-Type: multipart/alternative; boundary=HB\n\n" +
		"--HB\nContent-Type: text/html\n\n" +
		"<div>TERM: CIF</div><div>2 pallets</div>\n--HB--"

	got := New().Normalise(raw)
	assert.Equal(t, "TERM: CIF\n2 pallets", got)
}

func TestNormalise_MultipartIgnoresPreamble(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=PRE\n" +
		"This is a multi-part message in MIME format.\n\n" +
		"--PRE\nContent-Type: text/plain\n\nPoids: 800 kg\n--PRE--"

	got := New().Normalise(raw)
	assert.Equal(t, "Poids: 800 kg", got)
}

func TestNormalise_MultipartOnlyImages(t *testing.T) {
	// Nothing usable: the envelope header must not leak through.
	raw := "Content-Type: multipart/mixed; boundary=NOPE\n\n" +
		"--NOPE\nContent-Type: image/jpeg\nContent-Transfer-Encoding: base64\n\n" +
		"/9j/4AAQ\n--NOPE--"

	got := New().Normalise(raw)
	assert.Equal(t, "", got)
}

func TestNormalise_BareHTML(t *testing.T) {
	got := New().Normalise("<html><body><p>destination Djibouti</p></body></html>")
	assert.Equal(t, "destination Djibouti", got)
}

func TestNormalise_Entities(t *testing.T) {
	got := New().Normalise("<div>fret a&eacute;rien &amp; douane</div>")
	assert.Equal(t, "fret aérien & douane", got)
}

func TestNormalise_CapsLength(t *testing.T) {
	long := strings.Repeat("a", MaxLength+500)
	got := New().Normalise(long)
	assert.Len(t, got, MaxLength)
}

func TestNormalise_CapsLengthOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", MaxLength+10)
	got := New().Normalise(long)
	assert.Equal(t, MaxLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}
