package sqlrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRow map[int]string

func (r fakeRow) Col(index int) (string, bool) {
	v, ok := r[index]
	return v, ok
}

func TestColAccessors(t *testing.T) {
	row := fakeRow{0: "42", 1: "1", 2: "hello"}

	t.Run("string present", func(t *testing.T) {
		assert.Equal(t, "hello", ColString(row, 2, "default"))
	})

	t.Run("string missing falls back to default", func(t *testing.T) {
		assert.Equal(t, "default", ColString(row, 9, "default"))
	})

	t.Run("int parses", func(t *testing.T) {
		assert.Equal(t, 42, ColInt(row, 0, -1))
	})

	t.Run("int missing falls back", func(t *testing.T) {
		assert.Equal(t, -1, ColInt(row, 9, -1))
	})

	t.Run("int unparsable falls back", func(t *testing.T) {
		assert.Equal(t, -1, ColInt(row, 2, -1))
	})

	t.Run("bool true", func(t *testing.T) {
		assert.True(t, ColBool(row, 1, false))
	})

	t.Run("bool missing falls back", func(t *testing.T) {
		assert.True(t, ColBool(row, 9, true))
	})

	t.Run("int ptr present", func(t *testing.T) {
		p := ColIntPtr(row, 0)
		if assert.NotNil(t, p) {
			assert.Equal(t, 42, *p)
		}
	})

	t.Run("int ptr missing is nil", func(t *testing.T) {
		assert.Nil(t, ColIntPtr(row, 9))
	})
}
