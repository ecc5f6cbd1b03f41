package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesNestedUnderData(t *testing.T) {
	v := mustParse(t, `{"data":{"sources":[{"title":"A"}]}}`)
	docs := Sources(v)

	require.Len(t, docs, 1)
	assert.Equal(t, "A", docs[0].Title)
}

func TestSourcesPriorityOrder(t *testing.T) {
	t.Run("data.sources wins over data.documents", func(t *testing.T) {
		v := mustParse(t, `{"data":{"sources":[{"title":"S"}],"documents":[{"title":"D"}]}}`)
		docs := Sources(v)
		require.Len(t, docs, 1)
		assert.Equal(t, "S", docs[0].Title)
	})

	t.Run("data.documents used when sources absent", func(t *testing.T) {
		v := mustParse(t, `{"data":{"documents":[{"title":"D"}]}}`)
		docs := Sources(v)
		require.Len(t, docs, 1)
		assert.Equal(t, "D", docs[0].Title)
	})

	t.Run("top-level sources", func(t *testing.T) {
		v := mustParse(t, `{"sources":[{"title":"T","url":"https://sat.gob.mx","similarity":0.93}]}`)
		docs := Sources(v)
		require.Len(t, docs, 1)
		assert.Equal(t, "T", docs[0].Title)
		assert.Equal(t, "https://sat.gob.mx", docs[0].URL)
		assert.InDelta(t, 0.93, docs[0].Similarity, 1e-9)
	})

	t.Run("top-level documents", func(t *testing.T) {
		v := mustParse(t, `{"documents":[{"title":"B","scope":"federal"}]}`)
		docs := Sources(v)
		require.Len(t, docs, 1)
		assert.Equal(t, "federal", docs[0].Scope)
	})
}

func TestSourcesFromContentBlock(t *testing.T) {
	v := mustParse(t, `{"content":[{"type":"text","text":"{\"data\":{\"sources\":[{\"title\":\"C\"}]}}"}]}`)
	docs := Sources(v)

	require.Len(t, docs, 1)
	assert.Equal(t, "C", docs[0].Title)
}

func TestSourcesUnrecognizedShape(t *testing.T) {
	t.Run("no recognizable key yields empty", func(t *testing.T) {
		v := mustParse(t, `{"foo":"bar"}`)
		assert.Empty(t, Sources(v))
	})

	t.Run("string result yields empty", func(t *testing.T) {
		assert.Empty(t, Sources(FromAny("texto")))
	})

	t.Run("sources is not a list yields empty", func(t *testing.T) {
		v := mustParse(t, `{"sources":"no-una-lista"}`)
		assert.Empty(t, Sources(v))
	})

	t.Run("malformed items are skipped", func(t *testing.T) {
		v := mustParse(t, `{"sources":[42,{"title":"ok"}]}`)
		docs := Sources(v)
		require.Len(t, docs, 1)
		assert.Equal(t, "ok", docs[0].Title)
	})
}
