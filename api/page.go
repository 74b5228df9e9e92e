package api

// Page is the backend's pagination envelope wrapping any list query.
// A page never holds more items than the requested page size.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
