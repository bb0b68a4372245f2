package main

import (
	"errors"

	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/Lllllllleong/backofficefunctions/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy publicUsers into a new backups/{backupId} snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		backup, err := services.NewPublicUserBackup(ctx)
		if err != nil {
			return err
		}
		res, err := backup.Process(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var deletePostCmd = &cobra.Command{
	Use:   "delete-post <postId>",
	Short: "Delete a post, its blog index entry and its stored images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		deleter, err := services.NewPostDeleter(ctx)
		if err != nil {
			return err
		}
		res, err := deleter.Process(ctx, &models.DeletePostRequest{PostID: args[0]})
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var importID string

// parseImportCmd runs the parser directly, bypassing the parse topic. Batches are
// still published to the write topic.
var parseImportCmd = &cobra.Command{
	Use:   "parse-import <bucket> <object>",
	Short: "Parse an uploaded subscriber sheet and publish its batches",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		parser, err := services.NewImportParser(ctx)
		if err != nil {
			return err
		}
		id := importID
		if id == "" {
			id = uuid.NewString()
		}
		report, err := parser.Process(ctx, models.ImportRequest{ImportID: id, Bucket: args[0], FilePath: args[1]})
		if err != nil {
			return err
		}
		if report == nil {
			return errors.New("file was not imported; see the log for the reason")
		}
		return printJSON(cmd, report)
	},
}

func init() {
	parseImportCmd.Flags().StringVar(&importID, "import-id", "", "Import id to use (default: random)")
}
