package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("   ", 10))
	assert.Equal(t, []string{"hola mundo"}, Wrap("hola mundo", 10))
	assert.Equal(t, []string{"servicio de", "consultoria"}, Wrap("servicio de consultoria", 12))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, Wrap("abcdefghijk", 5))
}

func TestKeyValueAlignsToWidth(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Total:", "100.00")

	out := string(doc.Bytes())
	assert.Contains(t, out, "Total:        100.00\n")
}

func TestKeyValueOverflowMovesValueToNextLine(t *testing.T) {
	doc := NewDocument(10)
	doc.KeyValue("Customer:", "Someone Long")

	lines := strings.Split(strings.TrimPrefix(string(doc.Bytes()), string([]byte{ESC, '@'})), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "Customer:", lines[0])
	assert.Equal(t, "Someone Long", lines[1])
}

func TestDocumentStartsWithInitAndEndsWithCut(t *testing.T) {
	doc := NewDocument(0)
	assert.Equal(t, Width58mm, doc.Width())

	doc.Text("x").PartialCut()
	out := doc.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	assert.True(t, bytes.HasSuffix(out, []byte{GS, 'V', 0x01}))
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, p.Type())
	assert.False(t, p.IsConnected(context.Background()))
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig(TypeUSB, "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig(TypeNetwork, "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)

	p, err = NewPrinterFromConfig(TypeNetwork, "", "127.0.0.1:9100")
	require.NoError(t, err)
	assert.Equal(t, TypeNetwork, p.Type())
}
