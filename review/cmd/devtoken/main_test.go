package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuesVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--uid", "U101", "--name", "Neo", "--provider", "github.com", "--secret", "test-secrets"})
	require.NoError(t, cmd.Execute())

	id, err := jwt.New(func() []byte { return []byte("test-secrets") }).VerifyIDToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "U101", id.UID)
	assert.Equal(t, "Neo", id.DisplayName)
	assert.Equal(t, "github", id.Provider)
}

func TestRequiresUID(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--secret", "test-secrets"})
	assert.Error(t, cmd.Execute())
}
