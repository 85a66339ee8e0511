// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package drive

import (
	"net/url"
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeFileID
	TypeShareLink
	TypeDownloadLink
)

func (t IdentifierType) String() string {
	switch t {
	case TypeFileID:
		return "file-id"
	case TypeShareLink:
		return "share-link"
	case TypeDownloadLink:
		return "download-link"
	default:
		return "unknown"
	}
}

// Base URLs for Drive endpoints. Declared as vars so tests can
// substitute httptest servers.
var (
	ucBase  = "https://drive.google.com/uc"
	apiBase = "https://www.googleapis.com/drive/v3/files/"
)

// fileIDPattern matches bare Drive file identifiers. Drive IDs are
// opaque URL-safe base64 tokens, 25 characters or longer in practice.
var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{25,}$`)

// sharePathPattern matches the /file/d/<id>/... form of share links.
var sharePathPattern = regexp.MustCompile(`^/file/d/([A-Za-z0-9_-]{25,})(?:/.*)?$`)

// Classify determines the identifier type and returns the normalized
// Drive file ID. Share links ("file/d/<id>/view"), open links
// ("open?id=<id>"), and uc download links ("uc?id=<id>") all normalize
// to the bare file ID.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if fileIDPattern.MatchString(identifier) {
		return TypeFileID, identifier
	}

	u, err := url.Parse(identifier)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return TypeUnknown, identifier
	}
	if !strings.HasSuffix(u.Hostname(), "google.com") {
		return TypeUnknown, identifier
	}

	if m := sharePathPattern.FindStringSubmatch(u.Path); m != nil {
		return TypeShareLink, m[1]
	}

	if u.Path == "/open" || u.Path == "/uc" || strings.HasSuffix(u.Path, "/download") {
		id := u.Query().Get("id")
		if fileIDPattern.MatchString(id) {
			if u.Path == "/open" {
				return TypeShareLink, id
			}
			return TypeDownloadLink, id
		}
	}

	return TypeUnknown, identifier
}

// DownloadURL returns the public uc download endpoint for a file ID.
// Anyone-with-the-link files need no credentials on this endpoint.
func DownloadURL(fileID string) string {
	return ucBase + "?export=download&id=" + url.QueryEscape(fileID)
}

// APIURL returns the Drive v3 media download endpoint for a file ID,
// authenticated with an API key.
func APIURL(fileID, apiKey string) string {
	return apiBase + url.PathEscape(fileID) + "?alt=media&key=" + url.QueryEscape(apiKey)
}
