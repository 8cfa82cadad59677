package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(40)
	out, err := render("**서울** 청년 월세 지원")
	require.NoError(t, err)
	assert.Contains(t, out, "서울")
	assert.Contains(t, out, "월세 지원")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsTerminal(strings.NewReader("")))
	assert.Equal(t, DefaultWidth, Width(&bytes.Buffer{}))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
	assert.Contains(t, buf.String(), "|_.__/")
}
