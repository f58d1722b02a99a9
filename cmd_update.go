package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update sketch2story to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate(cmd.Context(), cmd.OutOrStdout(), checkOnly)
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether a newer release exists")

	return cmd
}

func (a *app) runUpdate(ctx context.Context, w io.Writer, checkOnly bool) error {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(a.cfg.Update.Repo))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release of %s for %s/%s", a.cfg.Update.Repo, runtime.GOOS, runtime.GOARCH)
	}

	if isRelease(version) && latest.LessOrEqual(version) {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("sketch2story %s is up to date", version)))
		return nil
	}

	if checkOnly {
		fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("sketch2story %s is available (you have %s)", latest.Version(), version)))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	a.log().Info("updating", "from", version, "to", latest.Version(), "asset", latest.AssetName)
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("Updated to %s", latest.Version())))
	return nil
}

// isRelease reports whether v is a semantic version; dev builds always update
func isRelease(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}
