package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteBanner(t *testing.T) {
	var buf bytes.Buffer
	writeBanner(&buf, "http://localhost:3000", []string{"guide", "reference"})

	out := buf.String()
	assert.Contains(t, out, "http://localhost:3000")
	assert.Contains(t, out, "• guide")
	assert.Contains(t, out, "• reference")
}

func TestWriteBanner_NoCategories(t *testing.T) {
	var buf bytes.Buffer
	writeBanner(&buf, "http://localhost:3000", nil)
	assert.Contains(t, buf.String(), "No categories found")
}
