package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, q, New(nil, Question).rebind(q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", New(nil, Dollar).rebind(q))
}
