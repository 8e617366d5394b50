package paperless

import (
	"context"
	"fmt"
	"net/http"
)

// Document is a paperless document. Correspondent, DocumentType and Tags hold
// entity ids; names are resolved through the entity cache.
type Document struct {
	ID            int                `json:"id"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Correspondent *int               `json:"correspondent"`
	DocumentType  *int               `json:"document_type"`
	Tags          []int              `json:"tags"`
	CustomFields  []CustomFieldValue `json:"custom_fields"`
	Created       string             `json:"created"`
	Added         string             `json:"added"`
}

// CustomFieldValue is one field instance attached to a document.
type CustomFieldValue struct {
	Field int `json:"field"`
	Value any `json:"value"`
}

func (c *Client) GetDocument(ctx context.Context, id int) (*Document, error) {
	var doc Document
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/documents/%d/", id), nil, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments fetches all documents, following pagination.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	return listAll[Document](ctx, c, "/api/documents/")
}

// UpdateFields patches a document with the given attribute values. Keys follow
// the API's field names (title, correspondent, document_type, tags,
// custom_fields).
func (c *Client) UpdateFields(ctx context.Context, id int, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/documents/%d/", id), fields, nil)
}

// AddTag attaches a tag by name, creating the tag when it does not exist.
// Adding an already present tag is a no-op.
func (c *Client) AddTag(ctx context.Context, documentID int, tagName string) error {
	tagID, err := c.EnsureTag(ctx, tagName)
	if err != nil {
		return err
	}

	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	for _, id := range doc.Tags {
		if id == tagID {
			return nil
		}
	}

	tags := append(append([]int{}, doc.Tags...), tagID)
	return c.UpdateFields(ctx, documentID, map[string]any{"tags": tags})
}

// RemoveTag detaches a tag by name. Unknown or absent tags are a no-op.
func (c *Client) RemoveTag(ctx context.Context, documentID int, tagName string) error {
	tagID, ok, err := c.lookupTag(ctx, tagName)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	tags := make([]int, 0, len(doc.Tags))
	found := false
	for _, id := range doc.Tags {
		if id == tagID {
			found = true
			continue
		}
		tags = append(tags, id)
	}
	if !found {
		return nil
	}

	return c.UpdateFields(ctx, documentID, map[string]any{"tags": tags})
}

// TagNames resolves a document's tag ids to names. The tag cache is loaded
// once per client lifetime; ids it does not know are skipped.
func (c *Client) TagNames(ctx context.Context, doc *Document) ([]string, error) {
	cache, err := c.tagCache(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Tags))
	for _, id := range doc.Tags {
		if name, ok := cache.nameOf(id); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
