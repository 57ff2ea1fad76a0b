package handlers

import (
	"net/url"
	"strconv"
)

// totalPages is the ceiling of count/limit
func totalPages(count, limit int64) int64 {
	return (count + limit - 1) / limit
}

// pageLinks builds the previous/next absolute URLs for a page. Next exists only
// when a later page does, previous only past the first page; otherwise nil.
func pageLinks(baseURL, flair string, page, totalPages int64) (previous, next *string) {
	if page > 1 {
		previous = pageLink(baseURL, flair, page-1)
	}
	if page < totalPages {
		next = pageLink(baseURL, flair, page+1)
	}
	return previous, next
}

func pageLink(baseURL, flair string, page int64) *string {
	query := url.Values{}
	if flair != "" {
		query.Set("flair", flair)
	}
	query.Set("page", strconv.FormatInt(page, 10))
	link := baseURL + "?" + query.Encode()
	return &link
}
