package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/transport"
)

// DownloadOptions holds flags for the download command.
type DownloadOptions struct {
	*RootOptions
	OutDir string
}

// DownloadResult describes one saved artifact.
type DownloadResult struct {
	Token string `json:"token"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// NewDownloadCommand creates the download command.
func NewDownloadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DownloadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "download <token>...",
		Short: "Download generated files by token",
		Long: `Fetch generated files from <base>/download/<token> and save each one
under its token name in the output directory.

Examples:
  recon download processed_current.xlsx
  recon download a.xlsx b.xlsx c.xlsx --out ./reports`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "output directory (default from config)")

	return cmd
}

func runDownload(ctx context.Context, opts *DownloadOptions, tokens []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	dir := opts.OutDir
	if dir == "" {
		dir = opts.Config.OutputDir
	}
	client := transport.New(opts.Config.BaseURL,
		transport.WithTimeout(opts.Config.RequestTimeout),
		transport.WithLogger(opts.Logger),
	)

	saved, err := downloadAll(ctx, client, tokens, dir)
	if err != nil {
		_ = out.Error(CodeFetchFailed, err.Error(), saved)
		return WrapExitError(ExitFailure, "download failed", err)
	}
	return out.Success(saved, func(w io.Writer) {
		for _, d := range saved {
			fmt.Fprintf(w, "saved %s (%d bytes)\n", d.Path, d.Bytes)
		}
	})
}

// downloadAll saves each token to dir/<token> and stops at the first
// failure. Files saved before the failure are kept and returned.
func downloadAll(ctx context.Context, client *transport.Client, tokens []string, dir string) ([]DownloadResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	saved := make([]DownloadResult, 0, len(tokens))
	for _, tok := range tokens {
		res, err := downloadOne(ctx, client, tok, dir)
		if err != nil {
			return saved, err
		}
		saved = append(saved, res)
	}
	return saved, nil
}

func downloadOne(ctx context.Context, client *transport.Client, token, dir string) (DownloadResult, error) {
	tmp, err := os.CreateTemp(dir, ".recon-*")
	if err != nil {
		return DownloadResult{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := client.Fetch(ctx, token, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", tmp.Name(), cerr)
	}
	if err != nil {
		return DownloadResult{}, err
	}

	// Fetch rejects tokens with separators, so the join stays inside dir.
	path := filepath.Join(dir, token)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return DownloadResult{}, fmt.Errorf("save %s: %w", token, err)
	}
	return DownloadResult{Token: token, Path: path, Bytes: n}, nil
}
