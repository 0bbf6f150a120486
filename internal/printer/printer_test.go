package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_Message(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Message("Alice", "2024-05-01 10:00", "first line\nsecond line\n")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Alice")
	assert.Contains(t, lines[0], "2024-05-01 10:00")
	assert.Equal(t, "  first line", lines[1])
	assert.Equal(t, "  second line", lines[2])
}

func TestPrinter_FatalError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "boom")
}

func TestPrinter_FatalErrorValidation(t *testing.T) {
	fieldErrs := criterio.FieldErrors{{Field: "store.backend", Err: errors.New("unknown backend")}}
	err := fmt.Errorf("load config: %w", fieldErrs)

	var buf bytes.Buffer
	New(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "Validation Error")
	assert.Contains(t, out, "load config")
	assert.Contains(t, out, "store.backend: ")
	assert.Contains(t, out, "unknown backend")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()))
}
