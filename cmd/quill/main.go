// Command quill is a terminal client for a collection: ask streams an
// AI answer, search runs a one-shot query.
//
// Credentials come from flags or the environment (a .env file in the
// working directory is loaded when present):
//
//	QUILL_COLLECTION_ID  collection to query
//	QUILL_API_KEY        API key (p_-prefixed keys use the JWT flow)
//	QUILL_READER_URL     reader cluster URL (optional)
//	QUILL_WRITER_URL     writer cluster URL (optional)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quillhq/quill"
	"github.com/quillhq/quill/rest"
)

var (
	collectionID string
	apiKey       string
	readerURL    string
	writerURL    string
)

var rootCmd = &cobra.Command{
	Use:           "quill",
	Short:         "Search and streaming answers for a collection",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; explicit env and flags still apply.
		_ = godotenv.Load()
		if collectionID == "" {
			collectionID = os.Getenv("QUILL_COLLECTION_ID")
		}
		if apiKey == "" {
			apiKey = os.Getenv("QUILL_API_KEY")
		}
		if readerURL == "" {
			readerURL = os.Getenv("QUILL_READER_URL")
		}
		if writerURL == "" {
			writerURL = os.Getenv("QUILL_WRITER_URL")
		}
		if collectionID == "" || apiKey == "" {
			return fmt.Errorf("collection id and API key are required (flags or QUILL_COLLECTION_ID / QUILL_API_KEY)")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&collectionID, "collection", "", "Collection ID")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key")
	rootCmd.PersistentFlags().StringVar(&readerURL, "reader-url", "", "Reader cluster URL")
	rootCmd.PersistentFlags().StringVar(&writerURL, "writer-url", "", "Writer cluster URL")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}

// newManager wires the REST transport and collection manager from the
// resolved configuration.
func newManager() (*quill.CollectionManager, error) {
	var opts []rest.Option
	if readerURL != "" {
		opts = append(opts, rest.WithReaderURL(readerURL))
	}
	if writerURL != "" {
		opts = append(opts, rest.WithWriterURL(writerURL))
	}
	transport := rest.New(collectionID, apiKey, opts...)
	return quill.NewCollectionManager(transport, collectionID,
		quill.WithProfile(quill.NewProfile(transport)))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		os.Exit(1)
	}
}
