package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer("Rajamangala University of Technology")

	payload, err := renderer.Render(Document{
		Title:     "Add Seat Request",
		Subtitle:  "Faculty of Engineering",
		Reference: "4f9d6a1c",
		Fields: []Field{
			{Label: "Student", Value: "Somchai Jaidee"},
			{Label: "Course", Value: "ENG101 Statics"},
			{Label: "Section", Value: "2"},
		},
		Decision: []Field{
			{Label: "Instructor", Value: "Approved"},
			{Label: "Comment", Value: "Seat available"},
		},
		IssuedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestRenderSkipsEmptyFields(t *testing.T) {
	renderer := NewRenderer("Test University")

	withEmpty, err := renderer.Render(Document{
		Title:  "General Petition",
		Fields: []Field{{Label: "Details", Value: "leave of absence"}, {Label: "Unused", Value: ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(withEmpty[:4]))
}
