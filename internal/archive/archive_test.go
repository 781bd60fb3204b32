package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params uploader.UploadParams
	data   []byte
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	if r, ok := file.(io.Reader); ok {
		f.data, _ = io.ReadAll(r)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &uploader.UploadResult{
		PublicID:  params.Folder + "/" + params.PublicID,
		SecureURL: "https://res.cloudinary.com/demo/raw/upload/" + params.PublicID,
		Bytes:     len(f.data),
	}, nil
}

func TestArchive_Store(t *testing.T) {
	up := &fakeUploader{}
	a := NewWithUploader(up, "escola/exports")
	a.now = func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC) }

	res, err := a.Store(context.Background(), "alunos.csv", []byte("Nome,Matrícula,Mensalidade,Status Pagamento"))
	require.NoError(t, err)

	assert.Equal(t, "raw", up.params.ResourceType)
	assert.Equal(t, "alunos-20240305-103000.csv", up.params.PublicID)
	assert.Equal(t, "escola/exports/alunos-20240305-103000.csv", res.PublicID)
	assert.Equal(t, len("Nome,Matrícula,Mensalidade,Status Pagamento"), res.Bytes)
}

func TestArchive_StoreError(t *testing.T) {
	a := NewWithUploader(&fakeUploader{err: errors.New("401")}, "")
	_, err := a.Store(context.Background(), "alunos.csv", nil)
	assert.Error(t, err)
}
