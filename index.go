package quill

import (
	"context"
	"fmt"
)

// IndexNamespace manages the indexes inside a collection.
type IndexNamespace struct {
	transport    Transport
	collectionID string
}

// CreateIndexParams describes a new index. Embeddings lists the
// properties to embed; empty means the backend's automatic selection.
type CreateIndexParams struct {
	ID         string   `json:"id,omitempty"`
	Embeddings []string `json:"embedding,omitempty"`
}

// Create creates a new index.
func (n *IndexNamespace) Create(ctx context.Context, params CreateIndexParams) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/create", n.collectionID),
		Body:        params,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Delete deletes an index.
func (n *IndexNamespace) Delete(ctx context.Context, indexID string) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/delete", n.collectionID),
		Body:        map[string]string{"index_id_to_delete": indexID},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Set returns an Index handle for document operations on the given
// index id.
func (n *IndexNamespace) Set(indexID string) *Index {
	return &Index{transport: n.transport, collectionID: n.collectionID, indexID: indexID}
}

// Index performs document operations on one index.
type Index struct {
	transport    Transport
	collectionID string
	indexID      string
}

// Reindex rebuilds the index from its documents.
func (i *Index) Reindex(ctx context.Context) error {
	_, err := i.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/%s/reindex", i.collectionID, i.indexID),
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// InsertDocuments adds documents to the index.
func (i *Index) InsertDocuments(ctx context.Context, documents ...any) error {
	_, err := i.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/insert", i.collectionID, i.indexID),
		Body:        map[string]any{"documents": documents},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// DeleteDocuments removes documents from the index by id.
func (i *Index) DeleteDocuments(ctx context.Context, documentIDs ...string) error {
	_, err := i.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/delete", i.collectionID, i.indexID),
		Body:        map[string]any{"document_ids": documentIDs},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// UpsertDocuments inserts or replaces documents in the index.
func (i *Index) UpsertDocuments(ctx context.Context, documents ...any) error {
	_, err := i.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/upsert", i.collectionID, i.indexID),
		Body:        map[string]any{"documents": documents},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}
