package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/crustntrust/site-api/internal/apperr"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	"github.com/crustntrust/site-api/internal/infrastructure/blob"
	mongodoc "github.com/crustntrust/site-api/internal/infrastructure/mongo"
)

// keyResolver stands in for the blob store when no bucket is configured,
// showing raw keys instead of URLs.
type keyResolver struct{}

func (keyResolver) Put(context.Context, string, io.Reader, int64, string) error {
	return apperr.Transient("put image", errors.New("no blob bucket configured"))
}

func (keyResolver) URL(_ context.Context, key string) (string, error) {
	return key, nil
}

func (e *env) reviewBoard(ctx context.Context, confirm formsapp.ConfirmFunc) (*formsapp.ReviewBoard, error) {
	var blobs formsapp.BlobStore = keyResolver{}
	if e.cfg.BlobBucket != "" {
		store, err := blob.NewS3Store(ctx, blob.Config{
			Bucket:          e.cfg.BlobBucket,
			Region:          e.cfg.BlobRegion,
			Endpoint:        e.cfg.BlobEndpoint,
			AccessKeyID:     e.cfg.BlobAccessKeyID,
			SecretAccessKey: e.cfg.BlobSecretAccessKey,
			MediaBaseURL:    e.cfg.MediaBaseURL,
			URLTTL:          e.cfg.BlobURLTTL,
			Logger:          e.logger,
		})
		if err != nil {
			return nil, err
		}
		blobs = store
	}
	submissions := mongodoc.NewSubmissionRepository(e.db, e.cfg.SubmissionCollection)
	return formsapp.NewReviewBoard(formsapp.NewReviewService(submissions, blobs, e.logger), confirm), nil
}

func (e *env) location() *time.Location {
	loc, err := time.LoadLocation(e.cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func newReviewCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work the submission review queue",
	}
	cmd.AddCommand(
		newReviewListCmd(e),
		newReviewShowCmd(e),
		newReviewStatusCmd(e),
		newReviewDeleteCmd(e),
	)
	return cmd
}

func newReviewListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list <slug>",
		Short: "List submissions of a form, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			form, err := formsapp.NewCatalogue(mongodoc.NewFormRepository(e.db, e.cfg.FormCollection), e.logger).LoadForm(ctx, args[0])
			if err != nil {
				return err
			}
			board, err := e.reviewBoard(ctx, nil)
			if err != nil {
				return err
			}
			if err := board.Load(ctx, args[0]); err != nil {
				return err
			}

			loc := e.location()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAVN\tSTED\tSTATUS\tSENDT")
			for _, sub := range board.Rows() {
				submitted := "-"
				if sub.SubmittedAt != nil {
					submitted = sub.SubmittedAt.In(loc).Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", sub.ID, sub.DisplayName(form.Questions), sub.Place(), sub.Status, submitted)
			}
			return tw.Flush()
		},
	}
}

func newReviewShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one submission with its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			board, err := e.reviewBoard(ctx, nil)
			if err != nil {
				return err
			}
			view, err := board.Open(ctx, args[0])
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view, e.location())
			return nil
		},
	}
}

func printView(w io.Writer, view *formsapp.SubmissionView, loc *time.Location) {
	sub := view.Submission
	fmt.Fprintf(w, "%s (%s) %s\n", sub.ID, sub.FormSlug, sub.Status)
	if sub.StatusUpdatedBy != "" && sub.StatusUpdatedAt != nil {
		fmt.Fprintf(w, "sist endret av %s %s\n", sub.StatusUpdatedBy, sub.StatusUpdatedAt.In(loc).Format(time.RFC3339))
	}
	keys := make([]string, 0, len(sub.Answers))
	for k := range sub.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, sub.Answers[k])
	}
	for _, img := range view.Images {
		fmt.Fprintf(w, "  bilde: %s\n", img.URL)
	}
}

func newReviewStatusCmd(e *env) *cobra.Command {
	var reviewer string
	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the review status of a submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			board, err := e.reviewBoard(ctx, nil)
			if err != nil {
				return err
			}
			id := args[0]
			if err := board.SetStatus(ctx, id, args[1], reviewer); err != nil {
				return fmt.Errorf("%s", board.State(id).StatusError)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&reviewer, "by", "", "reviewer recorded on the submission")
	return cmd
}

func newReviewDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			confirm := promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = func(string) bool { return true }
			}
			board, err := e.reviewBoard(ctx, confirm)
			if err != nil {
				return err
			}
			id := args[0]
			deleted, err := board.Delete(ctx, id)
			if err != nil {
				return fmt.Errorf("%s", board.State(id).DeleteError)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "avbrutt")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slettet %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// promptConfirm asks on out and accepts "j", "ja", "y" or "yes" from in.
func promptConfirm(in io.Reader, out io.Writer) formsapp.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [j/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "j", "ja", "y", "yes":
			return true
		}
		return false
	}
}
