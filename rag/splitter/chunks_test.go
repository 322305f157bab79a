package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLoader struct{}

func (failingLoader) Load(context.Context) ([]rag.Document, error) {
	return nil, errors.New("disk gone")
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Aspirin   (acetylsalicylic acid)\n treats   fever; pain!  ", "Aspirin acetylsalicylic acid treats fever pain!"},
		{"COVID-19 causes fever.", "COVID-19 causes fever."},
		{"Fièvre: traitée?", "Fièvre traitée?"},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("Splits every document in order", func(t *testing.T) {
		src := Chunks{
			Loader: loader.NewStaticDocumentLoader([]rag.Document{
				{ID: "a", Content: "para one.\n\npara two."},
				{ID: "b", Content: "   "},
				{ID: "c", Content: "para (3)."},
			}),
			Splitter: NewRecursiveCharacterTextSplitter(WithChunkSize(12), WithChunkOverlap(0)),
			Clean:    true,
		}
		chunks, err := src.Chunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"para one.", "para two.", "para 3."}, chunks)
	})

	t.Run("Default splitter", func(t *testing.T) {
		chunks, err := Chunks{Loader: loader.NewSampleLoader()}.Chunks(ctx)
		require.NoError(t, err)
		assert.Len(t, chunks, len(loader.SampleMedicalCorpus))
	})

	t.Run("Loader error", func(t *testing.T) {
		_, err := Chunks{Loader: failingLoader{}}.Chunks(ctx)
		assert.ErrorContains(t, err, "disk gone")
	})

	t.Run("Missing loader", func(t *testing.T) {
		_, err := Chunks{}.Chunks(ctx)
		assert.Error(t, err)
	})
}
