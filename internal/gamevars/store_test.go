package gamevars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("weather")
	assert.False(t, ok)

	s.Set("weather", "stormy")
	value, ok := s.Get("weather")
	assert.True(t, ok)
	assert.Equal(t, "stormy", value)

	s.Set("weather", "clear")
	value, _ = s.Get("weather")
	assert.Equal(t, "clear", value)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	s.Set("quest", "active")

	assert.True(t, s.Delete("quest"))
	assert.False(t, s.Delete("quest"))
	_, ok := s.Get("quest")
	assert.False(t, ok)
}

func TestStore_ListSorted(t *testing.T) {
	s := NewStore()
	s.Set("b", "2")
	s.Set("a", "1")
	s.Set("c", "3")

	vars := s.List()
	keys := make([]string, len(vars))
	for i, v := range vars {
		keys[i] = v.Key
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
