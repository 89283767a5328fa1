package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncate(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.Truncate("short", 100))
	assert.Equal(t, "hello", tp.Truncate("hello world", 5))
	assert.Equal(t, "unlimited", tp.Truncate("unlimited", 0))
}

func TestTruncateRespectsUTF8Boundary(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo" is 6 bytes; cutting at 2 lands inside the é sequence.
	out := tp.Truncate("héllo", 2)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "h", out)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))

	dirty := "ok" + string([]byte{0xff, 0xfe}) + "ok"
	out := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "okok", out)
}

func TestProcess(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	long := strings.Repeat("a", 100) + string([]byte{0xff})
	out := tp.Process(long, 50)
	assert.Len(t, out, 50)
	assert.True(t, utf8.ValidString(out))
}
