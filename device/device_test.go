package device

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleIn(t *testing.T) {
	assert := assert.New(t)

	con := &Console{Input: strings.NewReader("ab")}

	value, err := con.In()
	assert.NoError(err)
	assert.Equal(uint8('a'), value)

	value, err = con.In()
	assert.NoError(err)
	assert.Equal(uint8('b'), value)

	_, err = con.In()
	assert.Equal(io.EOF, err)
}

func TestConsoleInUnattached(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}

	_, err := con.In()
	assert.Equal(io.EOF, err)
}

func TestConsoleOut(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := &Console{Output: output}

	err := con.Out('H')
	assert.NoError(err)
	err = con.Out('i')
	assert.NoError(err)

	assert.Equal("Hi", output.String())
}

func TestConsoleOutUnattached(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}

	err := con.Out('x')
	assert.NoError(err)
}
