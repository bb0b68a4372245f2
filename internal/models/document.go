package models

import "time"

// ImageProps describes the image a post or product renders at the top of its page.
// Src points at the original upload until the resizer replaces it with sized variants.
type ImageProps struct {
	Src    string `firestore:"src,omitempty" json:"src,omitempty"`
	Alt    string `firestore:"alt,omitempty" json:"alt,omitempty"`
	Width  int    `firestore:"width,omitempty" json:"width,omitempty"`
	Height int    `firestore:"height,omitempty" json:"height,omitempty"`
}

// ImageSet is embedded in every document that owns resized images in Storage.
type ImageSet struct {
	ImageFilePathList []string   `firestore:"imageFilePathList,omitempty" json:"imageFilePathList,omitempty"`
	ImageSizes        []int      `firestore:"imageSizes,omitempty" json:"imageSizes,omitempty"`
	ImagesUpdated     *time.Time `firestore:"imagesUpdated,omitempty" json:"imagesUpdated,omitempty"`
}

// Post represents a blog post in Firestore.
type Post struct {
	ID            string      `firestore:"id" json:"id"`
	Title         string      `firestore:"title" json:"title"`
	Slug          string      `firestore:"slug,omitempty" json:"slug,omitempty"`
	Content       string      `firestore:"content,omitempty" json:"content,omitempty"`
	Author        string      `firestore:"author,omitempty" json:"author,omitempty"`
	Published     bool        `firestore:"published" json:"published"`
	PublishedDate *time.Time  `firestore:"publishedDate,omitempty" json:"publishedDate,omitempty"`
	ImageProps    *ImageProps `firestore:"imageProps,omitempty" json:"imageProps,omitempty"`
	ImageSet
	CreatedDate  time.Time `firestore:"createdDate" json:"createdDate"`
	ModifiedDate time.Time `firestore:"modifiedDate" json:"modifiedDate"`
}

// BlogIndexRef is the listing copy of a Post kept in its own collection so the
// public blog index can be read without pulling every post body.
type BlogIndexRef struct {
	ID            string      `firestore:"id" json:"id"`
	Title         string      `firestore:"title" json:"title"`
	Slug          string      `firestore:"slug,omitempty" json:"slug,omitempty"`
	Published     bool        `firestore:"published" json:"published"`
	PublishedDate *time.Time  `firestore:"publishedDate,omitempty" json:"publishedDate,omitempty"`
	ImageProps    *ImageProps `firestore:"imageProps,omitempty" json:"imageProps,omitempty"`
}

// PodcastEpisode mirrors an episode pulled from the podcast feed.
type PodcastEpisode struct {
	ID            string     `firestore:"id" json:"id"`
	Title         string     `firestore:"title" json:"title"`
	Description   string     `firestore:"description,omitempty" json:"description,omitempty"`
	URL           string     `firestore:"url,omitempty" json:"url,omitempty"`
	Duration      int        `firestore:"duration,omitempty" json:"duration,omitempty"` // seconds
	PublishedDate *time.Time `firestore:"publishedDate,omitempty" json:"publishedDate,omitempty"`
	ModifiedDate  time.Time  `firestore:"modifiedDate" json:"modifiedDate"`
}
