package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/core"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
	"github.com/tessro/mewzy/internal/wizard"
)

var (
	playResume  bool
	playShuffle bool
	playRepeat  string
)

var playCmd = &cobra.Command{
	Use:   "play [track-id...]",
	Short: "Play tracks in the foreground",
	Long: `Play one or more tracks without the full-screen player.

The given tracks become the queue. When the queue runs out, radio autoplay
keeps going with similar tracks. Without arguments a picker over your likes
(or the public feed) is shown. Press Ctrl+C to stop.

Examples:
  mewzy play 42                # Play track 42
  mewzy play 42 43 44          # Queue three tracks
  mewzy play --resume          # Continue the saved session
  mewzy play --repeat one 42   # Loop a single track`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&playResume, "resume", "r", false, "continue the saved session")
	playCmd.Flags().BoolVarP(&playShuffle, "shuffle", "s", false, "enable shuffle")
	playCmd.Flags().StringVar(&playRepeat, "repeat", "", "repeat mode (off/all/one)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if playRepeat != "" {
		mode, err := core.ParseRepeatMode(playRepeat)
		if err != nil {
			return err
		}
		s.engine.SetRepeat(mode)
	}
	if playShuffle {
		s.engine.SetShuffle(true)
	}

	switch {
	case playResume:
		if err := s.engine.Restore(ctx); err != nil {
			return err
		}
		if !s.engine.State().HasTrack() {
			return mewzyerrors.ErrNoSource
		}
		s.engine.Play()

	case wizard.NeedsTrack(args):
		_, tracks, err := loadLibrary(ctx, s.api)
		if err != nil {
			return err
		}
		picked, err := wizard.NewInteractive().PromptTrack("Play", tracks, "")
		if err != nil {
			return err
		}
		if picked == nil {
			return mewzyerrors.WithSuggestion(mewzyerrors.ErrTrackNotFound,
				"Pass a track id, e.g. 'mewzy play 42'")
		}
		s.engine.PlayFrom(ctx, *picked, tracks, true)

	default:
		_, library, err := loadLibrary(ctx, s.api)
		if err != nil {
			// Unknown ids still play, only without titles.
			library = nil
		}
		tracks := resolveTracks(args, library, s.api)
		s.engine.PlayFrom(ctx, tracks[0], tracks, true)
	}

	if st := s.engine.State(); st.HasTrack() && !st.Playing {
		return fmt.Errorf("%w: %s", mewzyerrors.ErrPlaybackFailed, trackLine(*st.Track))
	}

	return follow(ctx, s)
}

// loadLibrary returns the user's likes, falling back to the public feed.
func loadLibrary(ctx context.Context, c *api.Client) (string, []core.Track, error) {
	if c.HasToken() {
		if likes, err := c.Likes(ctx); err == nil && len(likes) > 0 {
			return "Liked Songs", likes, nil
		}
	}
	feed, err := c.Feed(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load feed: %w", err)
	}
	return "Feed", feed, nil
}

// resolveTracks maps ids to library tracks. Ids the library does not know
// become bare tracks streamed straight from the server.
func resolveTracks(ids []string, library []core.Track, c *api.Client) []core.Track {
	tracks := make([]core.Track, 0, len(ids))
	for _, id := range ids {
		if i := core.IndexOf(library, id); i >= 0 {
			tracks = append(tracks, library[i])
			continue
		}
		tracks = append(tracks, core.Track{ID: id, Title: id, StreamURL: c.StreamURL(id)})
	}
	return tracks
}

// follow prints track changes and notices until playback stops or ctx is
// cancelled.
func follow(ctx context.Context, s *stack) error {
	changes := make(chan core.PlaybackState, noticeBuffer)
	unsubscribe := s.engine.Subscribe(func(st core.PlaybackState) {
		select {
		case changes <- st:
		default:
		}
	})
	defer unsubscribe()

	var currentID string
	show := func(st core.PlaybackState) {
		if !st.HasTrack() || st.Track.ID == currentID {
			return
		}
		currentID = st.Track.ID
		if JSONOutput() {
			_ = printJSON(st.Track)
			return
		}
		fmt.Printf("▶ %s\n", trackLine(*st.Track))
	}
	show(s.engine.State())

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-s.notices:
			if n.Kind == core.NoticeError {
				fmt.Fprintf(os.Stderr, "! %s\n", n.Message)
			} else if !JSONOutput() {
				fmt.Printf("· %s\n", n.Message)
			}
		case st := <-changes:
			show(st)
			if st.Status == core.StatusStopped {
				return nil
			}
		}
	}
}
