package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

// Pageable carries the page/size/sort query parameters understood by every
// listing endpoint.
type Pageable struct {
	Page int
	Size int
	Sort []string
}

// Values renders the pagination parameters, merging them into extra when
// provided.
func (p Pageable) Values(extra url.Values) url.Values {
	values := url.Values{}
	for key, vals := range extra {
		values[key] = vals
	}
	values.Set("page", strconv.Itoa(p.Page))
	if p.Size > 0 {
		values.Set("size", strconv.Itoa(p.Size))
	}
	for _, sort := range p.Sort {
		values.Add("sort", sort)
	}
	return values
}

// Page is the server's listing envelope.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	TotalPages    int
	Size          int
	Number        int
	First         bool
	Last          bool
}

// pageEnvelope mirrors the wire shape. Content stays raw so an absent field
// can be told apart from an empty array.
type pageEnvelope struct {
	Content       json.RawMessage `json:"content"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Size          int             `json:"size"`
	Number        int             `json:"number"`
	First         bool            `json:"first"`
	Last          bool            `json:"last"`
}

// decodePage parses a listing envelope. A missing or null content field is
// an error, never an empty page: silently treating a bad response as "no
// more items" would truncate the feed.
func decodePage[T any](r io.Reader) (Page[T], error) {
	var envelope pageEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return Page[T]{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(envelope.Content) == 0 || string(envelope.Content) == "null" {
		return Page[T]{}, fmt.Errorf("%w: missing content field", ErrMalformedResponse)
	}

	var content []T
	if err := json.Unmarshal(envelope.Content, &content); err != nil {
		return Page[T]{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return Page[T]{
		Content:       content,
		TotalElements: envelope.TotalElements,
		TotalPages:    envelope.TotalPages,
		Size:          envelope.Size,
		Number:        envelope.Number,
		First:         envelope.First,
		Last:          envelope.Last,
	}, nil
}

// EmptyPage is the canonical zero-item final page, used when a missing
// resource is normalized to a valid empty result.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Content: []T{}, First: true, Last: true}
}
