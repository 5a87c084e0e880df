package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Quit(t *testing.T) {
	km := DefaultKeyMap()

	for _, k := range []string{"q", "ctrl+c", "esc"} {
		assert.True(t, Matches(k, km.Quit), k)
	}
	assert.False(t, Matches("x", km.Quit))
	assert.Equal(t, "cancel", km.Quit.Help().Desc)
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ShortHelp(), 1)
}
