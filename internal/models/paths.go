package models

import (
	"path"
	"strings"
)

// Firestore collection paths shared by every function.
const (
	PostsCollection           = "posts"
	BlogIndexRefsCollection   = "blogIndexRefs"
	ProductsCollection        = "products"
	OrdersCollection          = "orders"
	AdminUsersCollection      = "adminUsers"
	PublicUsersCollection     = "publicUsers"
	PodcastEpisodesCollection = "podcastEpisodes"
	BackupsCollection         = "backups"
)

// Storage layout.
const (
	ImageRoleHero   = "hero"
	ImageRoleInline = "inline"

	PublicUserImportsPrefix       = "publicUsers/imports/"
	PublicUserImportReportsPrefix = "publicUsers/importReports/"
)

// DocPath joins a collection and a document id into a Firestore document path.
func DocPath(collection, id string) string {
	return collection + "/" + id
}

const maxDocIDBytes = 1500

// ValidDocID reports whether id can be used as a single Firestore document id.
func ValidDocID(id string) bool {
	switch {
	case id == "", id == ".", id == "..":
		return false
	case len(id) > maxDocIDBytes:
		return false
	case strings.Contains(id, "/"):
		return false
	case len(id) >= 4 && strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return false
	}
	return true
}

// StoragePrefix is the object prefix holding every file owned by a document.
func StoragePrefix(collection, id string) string {
	return collection + "/" + id + "/"
}

// ImportReportPath is where the parser records the outcome of one import.
func ImportReportPath(importID string) string {
	return PublicUserImportReportsPrefix + importID + ".json"
}

// ImagePath is a parsed object name of the form {collection}/{ownerId}/{role}/{file}.
type ImagePath struct {
	Collection string
	OwnerID    string
	Role       string
	Dir        string
	FileName   string
}

var imageOwners = map[string]bool{
	PostsCollection:    true,
	ProductsCollection: true,
}

// ParseImagePath reports whether name is an image owned by a post or product.
// Anything deeper than one file below the role directory is rejected so the
// resizer never touches its own output directories or unrelated uploads.
func ParseImagePath(name string) (ImagePath, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 {
		return ImagePath{}, false
	}
	collection, owner, role, file := parts[0], parts[1], parts[2], parts[3]
	if !imageOwners[collection] || owner == "" || file == "" {
		return ImagePath{}, false
	}
	if role != ImageRoleHero && role != ImageRoleInline {
		return ImagePath{}, false
	}
	return ImagePath{
		Collection: collection,
		OwnerID:    owner,
		Role:       role,
		Dir:        path.Dir(name),
		FileName:   file,
	}, true
}

// OwnerDocPath is the Firestore document that lists this image.
func (p ImagePath) OwnerDocPath() string {
	return DocPath(p.Collection, p.OwnerID)
}
