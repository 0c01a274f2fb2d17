package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalbiztech/bizsite/content"
)

func TestParsePost(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	src := []byte(`---
title: Moving SAP Workloads to the Cloud
category: sap
author: Priya
date: "2025-02-10"
---

Body text with **markdown**.
`)
	post, err := parsePost("sap.md", src, now)
	require.NoError(t, err)
	assert.Equal(t, "moving-sap-workloads-to-the-cloud", post.Slug)
	assert.Equal(t, "2025-02-10", post.Date)
	assert.Equal(t, "Body text with **markdown**.", post.Content)
	assert.Equal(t, "1 min", post.ReadTime)
}

func TestParsePostDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	post, err := parsePost("notes/hello-world.md", []byte("just text\n"), now)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, "2025-03-01", post.Date)
}

func TestParsePostBadDate(t *testing.T) {
	_, err := parsePost("x.md", []byte("---\ntitle: X\ndate: soon\n---\nbody"), time.Now())
	require.ErrorIs(t, err, content.ErrInvalid)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "bizsite dev\n", out.String())
}

func TestContentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "site.db"))
	t.Setenv("LOG_LEVEL", "error")

	posts := filepath.Join(dir, "posts")
	require.NoError(t, os.Mkdir(posts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "a.md"),
		[]byte("---\ntitle: Imported Post\ndate: \"2025-01-02\"\n---\nHello"), 0o644))

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	assert.Contains(t, run("blog", "import", posts), "imported 1 posts")
	list := run("content", "list", "blogs")
	assert.Contains(t, list, "stored")
	assert.Contains(t, list, "imported-post")

	exported := filepath.Join(dir, "blogs.json")
	run("content", "export", "blogs", "-o", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slug": "imported-post"`)

	assert.Contains(t, run("content", "reset", "blogs"), "restored to defaults")
	assert.Contains(t, run("content", "list", "blogs"), "default")

	assert.Contains(t, run("content", "import", "blogs", exported), "imported")
	exportOut = ""
}
