// Package breakdown implements the paginated breakdown text model of a
// trade idea: inline media placeholder resolution and page navigation.
package breakdown

import (
	"regexp"

	"alphaboard/internal/models"
)

// placeholderPattern matches inline media tokens of the form [MEDIA:<id>].
// Malformed tokens (missing bracket, non-word id) stay literal text.
var placeholderPattern = regexp.MustCompile(`\[MEDIA:(\w+)\]`)

// NodeKind discriminates rendered nodes.
type NodeKind string

const (
	// NodeText is a plain prose segment rendered as markdown.
	NodeText NodeKind = "text"
	// NodeImage is a resolved image media block.
	NodeImage NodeKind = "image"
	// NodeVideo is a resolved video media block.
	NodeVideo NodeKind = "video"
	// NodeLink is a resolved link media block.
	NodeLink NodeKind = "link"
)

// Node is one element of a resolved page: either a text chunk or a typed
// media block, in the order it occurs in the source text.
type Node struct {
	Kind NodeKind `json:"kind"`
	// Text is set for NodeText nodes.
	Text string `json:"text,omitempty"`
	// Media is set for media nodes.
	Media *models.MediaItem `json:"media,omitempty"`
	// EmbedURL is set for NodeVideo when the URL matches a known provider.
	EmbedURL string `json:"embed_url,omitempty"`
}

// Resolve splits one page of breakdown text on media placeholder tokens and
// substitutes each token with its media item, looked up by exact key match.
// Tokens with no matching item produce no node. Text chunks are kept
// verbatim, including empty ones, so the output round-trips segment order.
// Resolve is pure and never fails.
func Resolve(content string, items []models.MediaItem) []Node {
	byKey := make(map[string]*models.MediaItem, len(items))
	for i := range items {
		byKey[items[i].Key] = &items[i]
	}

	var nodes []Node
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(content, -1) {
		nodes = append(nodes, Node{Kind: NodeText, Text: content[last:loc[0]]})
		last = loc[1]

		key := content[loc[2]:loc[3]]
		item, ok := byKey[key]
		if !ok {
			// Unmatched placeholders are dropped silently.
			continue
		}
		nodes = append(nodes, mediaNode(item))
	}
	nodes = append(nodes, Node{Kind: NodeText, Text: content[last:]})
	return nodes
}

func mediaNode(item *models.MediaItem) Node {
	switch item.Type {
	case models.MediaTypeImage:
		return Node{Kind: NodeImage, Media: item}
	case models.MediaTypeVideo:
		return Node{Kind: NodeVideo, Media: item, EmbedURL: EmbedURL(item.URL)}
	default:
		return Node{Kind: NodeLink, Media: item}
	}
}
