package userservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordSetAndCompare(t *testing.T) {
	var p Password

	err := p.set("Test_1234!")
	assert.NoError(t, err)
	assert.NotEmpty(t, p.hash)

	ok, err := p.compare("Test_1234!")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.compare("wrong-password")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashNotDeterministic(t *testing.T) {
	var a, b Password

	assert.NoError(t, a.set("Test_1234!"))
	assert.NoError(t, b.set("Test_1234!"))

	// bcrypt salts every hash.
	assert.NotEqual(t, a.hash, b.hash)
}
