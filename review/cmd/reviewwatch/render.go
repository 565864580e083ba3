package main

import (
	"context"
	"fmt"
	"strings"

	metadataclient "github.com/abhishek622/movieticket/metadata/pkg/client"
	"github.com/abhishek622/movieticket/pkg/memo"
	"github.com/abhishek622/movieticket/review/pkg/listview"
	"golang.org/x/sync/errgroup"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500/"

type movieDetails struct {
	Genres    []string
	Directors []string
}

// detailsFetcher loads genres and credits of a movie concurrently.
func detailsFetcher(c *metadataclient.Client) memo.FetchFunc[string, movieDetails] {
	return func(ctx context.Context, movieID string) (movieDetails, error) {
		var d movieDetails
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			genres, err := c.Genres(ctx, movieID)
			d.Genres = genres
			return err
		})
		g.Go(func() error {
			credits, err := c.Credits(ctx, movieID)
			if err != nil {
				return err
			}
			for _, m := range credits.Directors {
				d.Directors = append(d.Directors, m.Name)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return movieDetails{}, err
		}
		return d, nil
	}
}

func newMetadataClient(baseURL string) *metadataclient.Client {
	return metadataclient.New(baseURL, nil)
}

func posterURL(poster string) string {
	if poster == "" {
		return ""
	}
	return posterBaseURL + strings.TrimPrefix(poster, "/")
}

func renderList(st listview.State, unseen int) string {
	var b strings.Builder
	switch st.Status {
	case listview.StatusLoading:
		b.WriteString("Loading reviews...\n")
	case listview.StatusError:
		fmt.Fprintf(&b, "Could not load reviews: %s\n", st.Message)
	default:
		if unseen > 0 {
			fmt.Fprintf(&b, "Reviews (%d new)\n", unseen)
		} else {
			b.WriteString("Reviews\n")
		}
		if len(st.Reviews) == 0 {
			b.WriteString("  no reviews yet\n")
		}
		for _, r := range st.Reviews {
			fmt.Fprintf(&b, "  [%4.1f] %s (%s) %q by %s\n", r.Rating, r.MovieTitle, r.ReleaseYear, r.ReviewTitle, r.OwnerDisplayName)
			if u := posterURL(r.PosterImage); u != "" {
				fmt.Fprintf(&b, "         %s\n", u)
			}
		}
	}
	return b.String()
}

func renderDetails(s memo.State[string, movieDetails]) string {
	switch s.Status {
	case memo.StatusLoading:
		return fmt.Sprintf("movie %s: loading details", s.Key)
	case memo.StatusError:
		return fmt.Sprintf("movie %s: details unavailable", s.Key)
	}
	genres := "none"
	if len(s.Value.Genres) > 0 {
		genres = strings.Join(s.Value.Genres, ", ")
	}
	directors := "unknown"
	if len(s.Value.Directors) > 0 {
		directors = strings.Join(s.Value.Directors, ", ")
	}
	return fmt.Sprintf("movie %s: %s; directed by %s", s.Key, genres, directors)
}
