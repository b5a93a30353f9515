package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RequiresSource(t *testing.T) {
	m, err := New(nil, Source{}, nil)

	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrNoSource)
}
