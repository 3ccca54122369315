package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/models"
)

func TestPrompterFallsBackToLines(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("secret-1\r\nsecret-2"), &out)

	first, err := p.secret("Password: ")
	require.NoError(t, err)
	second, err := p.secret("Confirm password: ")
	require.NoError(t, err)

	assert.Equal(t, "secret-1", first)
	assert.Equal(t, "secret-2", second)
	assert.Equal(t, "Password: Confirm password: ", out.String())

	_, err = p.secret("again: ")
	assert.Error(t, err)
}

func TestPrintUsers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printUsers(&out, []models.User{{
		ID: "2ab", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Role: models.UserRoleAdmin, CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "EMAIL")
	assert.Contains(t, lines[1], "ada@example.com")
	assert.Contains(t, lines[1], "Ada Lovelace")
	assert.Contains(t, lines[1], "2024-05-01 09:30")
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"serve"}, {"users", "list"}, {"users", "add"}, {"snapshot", "export"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
