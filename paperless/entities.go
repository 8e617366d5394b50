package paperless

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// Entity is a named taxonomy object (correspondent, document type or tag).
type Entity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CustomField is a field definition available to all documents.
type CustomField struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

func (c *Client) Correspondents(ctx context.Context) ([]Entity, error) {
	return listAll[Entity](ctx, c, "/api/correspondents/")
}

func (c *Client) DocumentTypes(ctx context.Context) ([]Entity, error) {
	return listAll[Entity](ctx, c, "/api/document_types/")
}

func (c *Client) Tags(ctx context.Context) ([]Entity, error) {
	return listAll[Entity](ctx, c, "/api/tags/")
}

func (c *Client) CustomFields(ctx context.Context) ([]CustomField, error) {
	return listAll[CustomField](ctx, c, "/api/custom_fields/")
}

func (c *Client) CreateCorrespondent(ctx context.Context, name string) (*Entity, error) {
	var created Entity
	err := c.do(ctx, http.MethodPost, "/api/correspondents/", map[string]any{"name": name}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateDocumentType(ctx context.Context, name string) (*Entity, error) {
	var created Entity
	err := c.do(ctx, http.MethodPost, "/api/document_types/", map[string]any{"name": name}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (*Entity, error) {
	var created Entity
	err := c.do(ctx, http.MethodPost, "/api/tags/", map[string]any{"name": name}, &created)
	if err != nil {
		return nil, err
	}

	c.tags.put(created.ID, created.Name)
	return &created, nil
}

func (c *Client) CreateCustomField(ctx context.Context, name, dataType string) (*CustomField, error) {
	var created CustomField
	err := c.do(ctx, http.MethodPost, "/api/custom_fields/",
		map[string]any{"name": name, "data_type": dataType}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EnsureTag resolves a tag name to its id, creating the tag when it does not
// exist yet.
func (c *Client) EnsureTag(ctx context.Context, name string) (int, error) {
	id, ok, err := c.lookupTag(ctx, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	created, err := c.CreateTag(ctx, name)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) lookupTag(ctx context.Context, name string) (int, bool, error) {
	cache, err := c.tagCache(ctx)
	if err != nil {
		return 0, false, err
	}
	id, ok := cache.idOf(name)
	return id, ok, nil
}

// tagCache lazily loads all tags once. Creations through this client keep it
// current; tags created elsewhere appear after a restart.
func (c *Client) tagCache(ctx context.Context) (*entityCache, error) {
	c.tags.mu.Lock()
	loaded := c.tags.loaded
	c.tags.mu.Unlock()

	if !loaded {
		tags, err := c.Tags(ctx)
		if err != nil {
			return nil, err
		}
		c.tags.fill(tags)
	}
	return &c.tags, nil
}

type entityCache struct {
	mu     sync.Mutex
	byName map[string]int
	byID   map[int]string
	loaded bool
}

func (ec *entityCache) fill(entities []Entity) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.byName = make(map[string]int, len(entities))
	ec.byID = make(map[int]string, len(entities))
	for _, e := range entities {
		ec.byName[strings.ToLower(e.Name)] = e.ID
		ec.byID[e.ID] = e.Name
	}
	ec.loaded = true
}

func (ec *entityCache) put(id int, name string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.byName == nil {
		ec.byName = make(map[string]int)
		ec.byID = make(map[int]string)
	}
	ec.byName[strings.ToLower(name)] = id
	ec.byID[id] = name
}

func (ec *entityCache) idOf(name string) (int, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	id, ok := ec.byName[strings.ToLower(name)]
	return id, ok
}

func (ec *entityCache) nameOf(id int) (string, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	name, ok := ec.byID[id]
	return name, ok
}
