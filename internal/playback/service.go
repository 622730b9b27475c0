package playback

import (
	"context"
	"log/slog"

	"github.com/mmcdole/vidshare/internal/domain"
)

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(url string) error
}

// recorder is the part of the history cache the open flow needs
type recorder interface {
	RecordView(ctx context.Context, video domain.Video)
}

// Service opens videos on the external platform and records the view
type Service struct {
	launcher launcher
	history  recorder
	watchURL string
	logger   *slog.Logger
}

// NewService creates a new playback service. watchURL is a format string
// with one %s for the source video id.
func NewService(launcher launcher, history recorder, watchURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		launcher: launcher,
		history:  history,
		watchURL: watchURL,
		logger:   logger,
	}
}

// Open launches the video and records it as viewed. Only launch errors are
// returned; recording is best-effort.
func (s *Service) Open(ctx context.Context, video domain.Video) error {
	url, err := video.WatchURL(s.watchURL)
	if err != nil {
		s.logger.Error("failed to build watch URL", "error", err, "videoID", video.VideoID)
		return err
	}

	s.logger.Info("launching playback", "title", video.Title, "videoID", video.VideoID)
	if err := s.launcher.Launch(url); err != nil {
		s.logger.Error("failed to launch player", "error", err, "videoID", video.VideoID)
		return err
	}

	s.history.RecordView(ctx, video)
	return nil
}
