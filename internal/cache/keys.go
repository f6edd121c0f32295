package cache

import "fmt"

// Key prefixes per content area. Invalidation deletes by these prefixes so a
// write to an entity clears every cached list and detail view derived from it.
const (
	PrefixPosts         = "posts:"
	PrefixAnnouncements = "announcements:"
	PrefixStaff         = "staff:"
	PrefixFacilities    = "facilities:"
	PrefixExtras        = "extras:"
	PrefixGalleries     = "galleries:"
	PrefixMedia         = "media:"
	PrefixSliders       = "sliders:"
	PrefixSettings      = "settings:"
)

// Named post list keys. These are the hot public lists that are always
// warmed, so they are invalidated individually in addition to the prefix
// sweep.
const (
	KeyPostsFeatured = PrefixPosts + "list:featured"
	KeyPostsLatest   = PrefixPosts + "list:latest"
)

// postListPages is how many leading list pages get named cache keys.
const postListPages = 5

// KeyPost returns the cache key for a post detail by id.
func KeyPost(id int64) string {
	return fmt.Sprintf("%sid:%d", PrefixPosts, id)
}

// KeyPostSlug returns the cache key for a post detail by slug.
func KeyPostSlug(slug string) string {
	return PrefixPosts + "slug:" + slug
}

// KeyPostsPage returns the cache key for one page of the public post list.
func KeyPostsPage(page int64) string {
	return fmt.Sprintf("%slist:page:%d", PrefixPosts, page)
}

// PostListKeys returns the full named set of post list keys that must be
// dropped whenever a post is created, updated or deleted.
func PostListKeys() []string {
	keys := []string{KeyPostsFeatured, KeyPostsLatest}
	for page := int64(1); page <= postListPages; page++ {
		keys = append(keys, KeyPostsPage(page))
	}
	return keys
}

// KeySlug returns a slug-keyed detail cache key under the given prefix.
func KeySlug(prefix, slug string) string {
	return prefix + "slug:" + slug
}

// KeyID returns an id-keyed detail cache key under the given prefix.
func KeyID(prefix string, id int64) string {
	return fmt.Sprintf("%sid:%d", prefix, id)
}
