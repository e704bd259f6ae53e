package breakdown

import "regexp"

// Known video providers. The capture group is the provider video id.
var (
	youtubePattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtube\.com/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`)
	vimeoPattern   = regexp.MustCompile(`vimeo\.com/(\d+)`)
)

// EmbedURL rewrites a video URL to the provider's embeddable player URL.
// Unrecognized URLs return the empty string; callers fall back to rendering
// the original URL as a raw video file or external link.
func EmbedURL(rawURL string) string {
	if m := youtubePattern.FindStringSubmatch(rawURL); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := vimeoPattern.FindStringSubmatch(rawURL); m != nil {
		return "https://player.vimeo.com/video/" + m[1]
	}
	return ""
}
