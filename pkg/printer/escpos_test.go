package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStartsWithInit(t *testing.T) {
	doc := NewDocument(32)
	assert.Equal(t, []byte{esc, '@'}, doc.Bytes()[:2])
}

func TestKeyValueFillsWidth(t *testing.T) {
	doc := NewDocument(32)
	doc.KeyValue("TOTAL", "600.00")

	out := doc.Bytes()[2:] // skip init sequence
	line, _, found := bytes.Cut(out, []byte{lf})
	assert.True(t, found)
	assert.Len(t, line, 32)
	assert.True(t, bytes.HasPrefix(line, []byte("TOTAL")))
	assert.True(t, bytes.HasSuffix(line, []byte("600.00")))
}

func TestItemTruncatesLongNames(t *testing.T) {
	doc := NewDocument(32)
	doc.Item(2, "An Extremely Long Product Name That Overflows", "120.00")

	out := doc.Bytes()[2:]
	line, _, _ := bytes.Cut(out, []byte{lf})
	assert.Len(t, line, 32)
	assert.True(t, bytes.HasSuffix(line, []byte("120.00")))
}

func TestCutEndsStream(t *testing.T) {
	doc := NewDocument(32)
	doc.Line("bye").Cut()

	out := doc.Bytes()
	assert.Equal(t, []byte{gs, 'V', 0x00}, out[len(out)-3:])
}
