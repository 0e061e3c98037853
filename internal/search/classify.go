package search

import (
	"regexp"
	"strings"

	"metasearch/internal/domain"
)

// YouTube URL shapes that carry a canonical video ID. Watch links,
// short links, and embeds share one pattern; shorts have their own path.
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^&\n?#]+)`),
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

var videoExtensions = []string{".mp4", ".webm", ".ogg", ".mov", ".avi"}

// ExtractYouTubeID pulls the canonical video ID out of a YouTube URL.
// First matching pattern wins. Returns false for non-YouTube URLs.
func ExtractYouTubeID(rawURL string) (string, bool) {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) == 2 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// EmbedURL builds the embeddable player link for a YouTube video ID.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

// IsImageURL reports whether the URL points at an image file,
// by case-insensitive suffix match.
func IsImageURL(rawURL string) bool {
	return hasAnySuffix(rawURL, imageExtensions)
}

// IsVideoFileURL reports whether the URL points at a raw video file,
// by case-insensitive suffix match.
func IsVideoFileURL(rawURL string) bool {
	return hasAnySuffix(rawURL, videoExtensions)
}

func hasAnySuffix(rawURL string, suffixes []string) bool {
	lower := strings.ToLower(rawURL)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Classify inspects a result URL and fills in Kind and, for platform
// videos, EmbedURL. Classification is advisory metadata, it never drops
// a result. Precedence: platform video, then image, then raw video file.
func Classify(result *domain.SearchResult) {
	if id, ok := ExtractYouTubeID(result.URL); ok {
		result.Kind = domain.KindVideo
		result.VideoID = id
		result.EmbedURL = EmbedURL(id)
		return
	}
	if IsImageURL(result.URL) {
		result.Kind = domain.KindImage
		return
	}
	if IsVideoFileURL(result.URL) {
		result.Kind = domain.KindFile
		return
	}
	result.Kind = domain.KindWeb
}
