// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/graphrag-console/internal/api"
	"github.com/pdiddy/graphrag-console/internal/pipeline"
	"github.com/pdiddy/graphrag-console/internal/report"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "List storage containers or upload documents",
}

var dataListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the storage containers known to the service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		names, err := p.StorageOptions(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return report.FormatJSON(cmd.OutOrStdout(), names[1:])
		}
		report.FormatList(cmd.OutOrStdout(), "Storage containers", names)
		return nil
	},
}

var dataUploadCmd = &cobra.Command{
	Use:   "upload <storage-name> <files...>",
	Short: "Upload documents into a new storage container",
	Long: `Upload sends text documents to the service, which stores them in the named
blob storage container. The name is lower-cased. Container names must be
3 through 63 characters of lowercase letters, numbers, and single hyphens,
starting and ending with a letter or number; violations are reported as
warnings and the service has the final say.

With --existing the named container is selected instead and no files may be
given.`,
	RunE: runDataUpload,
}

func init() {
	dataListCmd.Flags().Bool("json", false, "output as JSON")
	dataUploadCmd.Flags().String("existing", "", "select an existing storage container instead of uploading")

	dataCmd.AddCommand(dataListCmd, dataUploadCmd)
	rootCmd.AddCommand(dataCmd)
}

func runDataUpload(cmd *cobra.Command, args []string) error {
	existing, _ := cmd.Flags().GetString("existing")

	in := pipeline.StorageInput{Selected: existing}
	if len(args) > 0 {
		in.NewName = args[0]
	}
	if len(args) > 1 {
		files, closeFiles, err := openUploads(args[1:])
		if err != nil {
			return err
		}
		defer closeFiles()
		in.Files = files
	}

	p, sessions, err := newPipeline()
	if err != nil {
		return err
	}
	defer sessions.Close()

	out, err := p.StorageStep(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Name)
	return nil
}

// openUploads opens each path for upload. The content type comes from the
// file extension.
func openUploads(paths []string) ([]api.UploadFile, func(), error) {
	var (
		files  []api.UploadFile
		opened []*os.File
	)
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		opened = append(opened, f)

		ct := mime.TypeByExtension(filepath.Ext(path))
		if ct == "" {
			ct = "text/plain"
		}
		files = append(files, api.UploadFile{Name: filepath.Base(path), ContentType: ct, Content: f})
	}
	return files, closeAll, nil
}
