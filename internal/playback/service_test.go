package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/vidshare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLauncher struct {
	urls []string
	err  error
}

func (s *stubLauncher) Launch(url string) error {
	s.urls = append(s.urls, url)
	return s.err
}

type stubRecorder struct {
	recorded []string
}

func (s *stubRecorder) RecordView(_ context.Context, v domain.Video) {
	s.recorded = append(s.recorded, v.VideoID)
}

const watchURL = "https://www.youtube.com/watch?v=%s"

func TestOpenRecordsView(t *testing.T) {
	l := &stubLauncher{}
	r := &stubRecorder{}
	svc := NewService(l, r, watchURL, nil)

	err := svc.Open(context.Background(), domain.Video{VideoID: "v1", SourceVideoID: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, l.urls)
	assert.Equal(t, []string{"v1"}, r.recorded)
}

func TestOpenLaunchFailureSkipsRecord(t *testing.T) {
	boom := errors.New("player crashed")
	l := &stubLauncher{err: boom}
	r := &stubRecorder{}
	svc := NewService(l, r, watchURL, nil)

	err := svc.Open(context.Background(), domain.Video{VideoID: "v1", SourceVideoID: "abc"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.recorded)
}

func TestOpenWithoutSourceVideo(t *testing.T) {
	l := &stubLauncher{}
	r := &stubRecorder{}
	svc := NewService(l, r, watchURL, nil)

	err := svc.Open(context.Background(), domain.Video{VideoID: "v1"})
	assert.ErrorIs(t, err, domain.ErrNoSourceVideo)
	assert.Empty(t, l.urls)
	assert.Empty(t, r.recorded)
}
