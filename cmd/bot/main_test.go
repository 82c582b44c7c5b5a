package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nuclight.org/upload-tg-bot/app/bot"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

type captionRecorder struct {
	captions []string
}

func (r *captionRecorder) SendDocument(_ context.Context, _ int64, _ string, body io.Reader, caption string) error {
	_, err := io.Copy(io.Discard, body)
	r.captions = append(r.captions, caption)
	return err
}

func TestNewPipeline_UploadsWithCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	t.Cleanup(srv.Close)

	uploader := &captionRecorder{}
	p := newPipeline(logger.Discard(), uploader, t.TempDir(), time.Minute)

	_, err := p.Run(context.Background(), e.NewTransferRequest(srv.URL+"/report.pdf", 7, 8, 9), nil)
	require.NoError(t, err)

	require.Len(t, uploader.captions, 1)
	assert.NotEmpty(t, uploader.captions[0])
	assert.Equal(t, bot.Caption, uploader.captions[0])
}
