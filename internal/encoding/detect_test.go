package encoding_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimelh/salespoint/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Arabic product names should pass through unchanged.
	input := "barcode;name;price\n100001;قهوة عربية;12.50\n100002;شاي أخضر;3.00\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("الباركود;الاسم;السعر\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "الباركود;الاسم;السعر\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// UTF-16 LE with BOM, as produced by Excel "Unicode Text" exports.
	text := "الاسم;السعر\n"

	var buf bytes.Buffer

	buf.Write([]byte{0xFF, 0xFE})

	for _, unit := range utf16.Encode([]rune(text)) {
		var b [2]byte

		binary.LittleEndian.PutUint16(b[:], unit)
		buf.Write(b[:])
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, text, string(got))
}
