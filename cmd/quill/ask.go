package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill"
)

var askRelated bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and stream the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}

		session, err := manager.AI.CreateAISession(quill.CreateAISessionConfig{})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Ctrl-C aborts the in-flight answer instead of killing the
		// process mid-write.
		go func() {
			<-ctx.Done()
			_ = session.Abort()
		}()

		req := quill.AnswerRequest{Query: strings.Join(args, " ")}
		if askRelated {
			req.Related = &quill.RelatedConfig{Enabled: true, Size: 3, Format: "question"}
		}

		stream, err := session.AnswerStream(context.Background(), req)
		if err != nil {
			return err
		}
		defer stream.Close()

		var printed int
		for {
			snapshot, err := stream.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			// Snapshots accumulate; print only the new suffix.
			fmt.Print(snapshot[printed:])
			printed = len(snapshot)
		}
		fmt.Println()

		interactions := session.Interactions()
		if len(interactions) == 0 {
			return nil
		}
		last := interactions[len(interactions)-1]
		switch {
		case last.Error:
			return fmt.Errorf("answer failed: %s", last.ErrorMessage)
		case last.Aborted:
			fmt.Fprintln(os.Stderr, "aborted")
		case last.Related != nil && *last.Related != "":
			fmt.Printf("\nRelated: %s\n", *last.Related)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askRelated, "related", false, "Request related follow-up questions")
}
