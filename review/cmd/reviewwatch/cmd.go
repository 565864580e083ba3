package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/pkg/memo"
	"github.com/abhishek622/movieticket/review/internal/notifier/kafka"
	"github.com/abhishek622/movieticket/review/pkg/client"
	"github.com/abhishek622/movieticket/review/pkg/listview"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	reviewURL   string
	metadataURL string
	token       string
	bootstrap   string
	topic       string
	group       string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "reviewwatch",
		Short:        "Follow movie reviews from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.reviewURL, "review-url", "http://localhost:8082", "review service base URL")
	root.PersistentFlags().StringVar(&opts.metadataURL, "metadata-url", "http://localhost:8081", "metadata service base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("REVIEW_TOKEN"), "bearer token of the signed-in user")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the review list and refresh it on every review event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	watch.Flags().StringVar(&opts.bootstrap, "bootstrap-servers", "localhost:9092", "Kafka bootstrap servers")
	watch.Flags().StringVar(&opts.topic, "topic", kafka.DefaultTopic, "review event topic")
	watch.Flags().StringVar(&opts.group, "group", "reviewwatch", "consumer group id")

	del := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete one of your reviews after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	root.AddCommand(watch, del)
	return root
}

func runWatch(ctx context.Context, out io.Writer, opts *options) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reviews := client.New(opts.reviewURL, opts.token, nil)
	mutated := listview.NewSignal()
	badge := listview.NewBadge(mutated)
	defer badge.Close()
	view := listview.New(reviews, listview.ConfirmFunc(func(context.Context, *model.Review) bool { return false }), mutated, "")

	details := memo.NewSelector(detailsFetcher(newMetadataClient(opts.metadataURL)), func(s memo.State[string, movieDetails]) {
		fmt.Fprintln(out, renderDetails(s))
	})
	defer details.Close()

	refresh := func(ctx context.Context) {
		if err := view.Refresh(ctx); err != nil {
			logger.Warn("Failed to refresh reviews", zap.Error(err))
		}
		st := view.State()
		fmt.Fprint(out, renderList(st, badge.Count()))
		badge.Seen()
		if st.Status == listview.StatusIdle && len(st.Reviews) > 0 {
			details.Select(ctx, st.Reviews[len(st.Reviews)-1].MovieID)
		}
	}
	refresh(ctx)

	consumer, err := kafka.NewConsumer(opts.bootstrap, opts.group, opts.topic, logger)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer consumer.Close()

	err = consumer.Run(ctx, func(ctx context.Context, event model.ReviewEvent) {
		logger.Info("Review event", zap.String("type", string(event.Type)), zap.String("reviewId", event.ReviewID))
		mutated.Notify()
		refresh(ctx)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func runDelete(ctx context.Context, in io.Reader, out io.Writer, opts *options, id string) error {
	reviews := client.New(opts.reviewURL, opts.token, nil)
	me, err := reviews.Me(ctx)
	if err != nil {
		return err
	}
	view := listview.New(reviews, promptConfirmer(in, out), nil, me.UID)
	if err := view.Refresh(ctx); err != nil {
		return err
	}
	deleted, err := view.Delete(ctx, id)
	if err != nil {
		n := apperr.Notify(err)
		fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
		return err
	}
	if deleted {
		fmt.Fprintln(out, "Deleted.")
	}
	return nil
}

func promptConfirmer(in io.Reader, out io.Writer) listview.Confirmer {
	scanner := bufio.NewScanner(in)
	return listview.ConfirmFunc(func(_ context.Context, r *model.Review) bool {
		fmt.Fprintf(out, "Delete %q for %s? [y/N] ", r.ReviewTitle, r.MovieTitle)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	})
}
