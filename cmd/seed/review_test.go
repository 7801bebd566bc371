package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
)

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"j\n", true},
		{"Ja\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		confirm := promptConfirm(strings.NewReader(tt.input), &out)
		assert.Equal(t, tt.want, confirm("Slette?"), "input %q", tt.input)
		assert.Equal(t, "Slette? [j/N] ", out.String())
	}
}

func TestKeyResolverEchoesKeys(t *testing.T) {
	url, err := keyResolver{}.URL(context.Background(), "form-uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "form-uploads/a.jpg", url)
	assert.Error(t, keyResolver{}.Put(context.Background(), "k", nil, 0, ""))
}

func TestPrintView(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	view := &formsapp.SubmissionView{
		Submission: formsdomain.Submission{
			ID:              "s1",
			FormSlug:        "stengeskjema",
			Status:          formsdomain.StatusCompleted,
			StatusUpdatedBy: "kari@crust.no",
			StatusUpdatedAt: &at,
			Answers:         map[string]string{"sted": "Bergen", "navn": "Ola"},
		},
		Images: []formsapp.ResolvedImage{{Path: "form-uploads/a.jpg", URL: "https://cdn.test/a.jpg"}},
	}

	var out bytes.Buffer
	printView(&out, view, time.UTC)
	want := "s1 (stengeskjema) completed\n" +
		"sist endret av kari@crust.no 2026-03-01T12:00:00Z\n" +
		"  navn: Ola\n" +
		"  sted: Bergen\n" +
		"  bilde: https://cdn.test/a.jpg\n"
	assert.Equal(t, want, out.String())
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"forms"},
		{"settings"},
		{"review", "list"},
		{"review", "show"},
		{"review", "status"},
		{"review", "delete"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
