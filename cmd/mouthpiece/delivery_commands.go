package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mouthpiece/internal/config"
	"mouthpiece/internal/delivery"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var filePath, fileType, name string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a single audio or lipsync file to the avatar runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			kind, err := delivery.ParseFileType(fileType)
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(filePath)
			if err != nil {
				return err
			}
			req, err := delivery.FileRequest(path, kind, name)
			if err != nil {
				return err
			}
			resp, err := ctx.deliveryClient(cfg, logger).Upload(cmd.Context(), req)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"name":      req.Name,
					"file_type": string(req.FileType),
					"bytes":     len(req.Content),
					"status":    resp.Status,
					"message":   resp.Message,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s (%s)\n", req.FileName, req.Name, req.FileType)
			if msg := strings.TrimSpace(resp.Message); msg != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Runtime: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "File to upload")
	cmd.Flags().StringVar(&fileType, "type", "", "File type: audio or lipsync")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Logical name (default: derived from the file name)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Ask the avatar runtime to play a previously uploaded pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logical, err := delivery.NormalizeName(name)
			if err != nil {
				return err
			}
			resp, err := ctx.deliveryClient(cfg, logger).Play(cmd.Context(), logical)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"name": logical, "status": resp.Status, "message": resp.Message})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s\n", logical)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Logical name to play")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
