package quill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill"
)

func TestIndexNamespace_DocumentOperations(t *testing.T) {
	t.Parallel()
	transport, seen := requestRecorder(`{}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	require.NoError(t, manager.Index.Create(context.Background(), quill.CreateIndexParams{ID: "idx-1"}))

	idx := manager.Index.Set("idx-1")
	require.NoError(t, idx.InsertDocuments(context.Background(),
		map[string]any{"id": "d1", "title": "first"},
		map[string]any{"id": "d2", "title": "second"},
	))
	require.NoError(t, idx.DeleteDocuments(context.Background(), "d1"))
	require.NoError(t, idx.Reindex(context.Background()))

	require.Len(t, *seen, 4)
	assert.Equal(t, "/v1/collections/col-1/indexes/create", (*seen)[0].Path)
	assert.Equal(t, "/v1/collections/col-1/indexes/idx-1/documents/insert", (*seen)[1].Path)
	assert.Equal(t, "/v1/collections/col-1/indexes/idx-1/documents/delete", (*seen)[2].Path)
	assert.Equal(t, "/v1/collections/col-1/indexes/idx-1/reindex", (*seen)[3].Path)

	// All document operations go to the writer cluster with the key in
	// the header.
	for _, req := range *seen {
		assert.Equal(t, quill.TargetWriter, req.Target)
		assert.Equal(t, quill.APIKeyInHeader, req.KeyPosition)
	}

	body := decodeBody(t, (*seen)[1])
	assert.JSONEq(t, `[{"id":"d1","title":"first"},{"id":"d2","title":"second"}]`, string(body["documents"]))
}
