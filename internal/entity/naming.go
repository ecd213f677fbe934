package entity

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultCategory is used when a product has no category_name.
const DefaultCategory = "product"

// pathSeparators keeps names from adding directory levels.
var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// CategorySlug lower-cases the category and replaces " & ", spaces and path
// separators with dashes. It is used both as a search token and as a
// directory name, so "." and ".." fall back to DefaultCategory.
func CategorySlug(categoryName string) string {
	if categoryName == "" {
		categoryName = DefaultCategory
	}
	slug := strings.ToLower(categoryName)
	slug = strings.ReplaceAll(slug, " & ", "-")
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = pathSeparators.Replace(slug)
	if slug == "." || slug == ".." {
		return DefaultCategory
	}
	return slug
}

// FilenameBase turns a product name into the image file name without extension.
func FilenameBase(name string) string {
	base := strings.ToLower(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ReplaceAll(base, ",", "")
	base = strings.ReplaceAll(base, "&", "and")
	return pathSeparators.Replace(base)
}

// SearchQuery is the plain-text query sent to the image search API.
func SearchQuery(name, categoryName string) string {
	return name + " " + CategorySlug(categoryName)
}

// ImagePath is where the image for the product lives on disk.
func ImagePath(imagesDir, name, categoryName string) string {
	return filepath.Join(imagesDir, CategorySlug(categoryName), FilenameBase(name)+".jpg")
}

// PublicPath is the reference written back into the catalog: the local path
// with forward slashes and exactly one leading slash.
func PublicPath(localPath string) string {
	p := path.Clean(filepath.ToSlash(localPath))
	return "/" + strings.TrimLeft(p, "/")
}
