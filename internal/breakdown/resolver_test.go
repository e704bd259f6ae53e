package breakdown

import (
	"testing"

	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_MatchedPlaceholder(t *testing.T) {
	items := []models.MediaItem{
		{Key: "1", Type: models.MediaTypeImage, URL: "https://cdn.example.com/chart.png"},
	}

	nodes := Resolve("A [MEDIA:1] B", items)

	require.Len(t, nodes, 3)
	assert.Equal(t, NodeText, nodes[0].Kind)
	assert.Equal(t, "A ", nodes[0].Text)
	assert.Equal(t, NodeImage, nodes[1].Kind)
	assert.Equal(t, "1", nodes[1].Media.Key)
	assert.Equal(t, NodeText, nodes[2].Kind)
	assert.Equal(t, " B", nodes[2].Text)
}

func TestResolve_UnmatchedPlaceholderDropped(t *testing.T) {
	nodes := Resolve("A [MEDIA:2] B", nil)

	require.Len(t, nodes, 2)
	assert.Equal(t, "A ", nodes[0].Text)
	assert.Equal(t, " B", nodes[1].Text)
}

func TestResolve_EmptyContent(t *testing.T) {
	nodes := Resolve("", nil)

	require.Len(t, nodes, 1)
	assert.Equal(t, NodeText, nodes[0].Kind)
	assert.Equal(t, "", nodes[0].Text)
}

func TestResolve_DuplicateIDsResolveIndependently(t *testing.T) {
	items := []models.MediaItem{
		{Key: "7", Type: models.MediaTypeLink, URL: "https://example.com"},
	}

	nodes := Resolve("[MEDIA:7] and [MEDIA:7]", items)

	var mediaCount int
	for _, n := range nodes {
		if n.Kind == NodeLink {
			mediaCount++
		}
	}
	assert.Equal(t, 2, mediaCount)
}

func TestResolve_MalformedTokenStaysLiteral(t *testing.T) {
	content := "before [MEDIA:9 after"
	nodes := Resolve(content, []models.MediaItem{{Key: "9", Type: models.MediaTypeImage}})

	require.Len(t, nodes, 1)
	assert.Equal(t, content, nodes[0].Text)
}

func TestResolve_ClientGeneratedTokens(t *testing.T) {
	items := []models.MediaItem{
		{Key: "temp_1712000000_ab12cd", Type: models.MediaTypeVideo, URL: "https://youtu.be/dQw4w9WgXcQ"},
	}

	nodes := Resolve("look [MEDIA:temp_1712000000_ab12cd]", items)

	require.Len(t, nodes, 3)
	assert.Equal(t, NodeVideo, nodes[1].Kind)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", nodes[1].EmbedURL)
}

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"vimeo", "https://vimeo.com/123456789", "https://player.vimeo.com/video/123456789"},
		{"unknown host", "https://cdn.example.com/raw.mp4", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmbedURL(tt.url))
		})
	}
}
