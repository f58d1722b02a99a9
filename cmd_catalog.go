package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sketch2story/workflow"
)

func newVoicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the narration voices the backend offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Backend.CatalogTimeout)
			defer cancel()

			client, err := a.newClient()
			if err != nil {
				return err
			}
			resp, err := client.Voices(ctx)
			if err != nil {
				return fmt.Errorf("failed to list voices: %w", err)
			}

			s := workflow.NewSession(client.BaseURL(), nil)
			s.ApplyVoices(resp, nil)
			printVoices(cmd.OutOrStdout(), s.Catalogs().Voices, resp.Recommended)
			return nil
		},
	}
}

func newLevelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the vocabulary levels the backend offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Backend.CatalogTimeout)
			defer cancel()

			client, err := a.newClient()
			if err != nil {
				return err
			}
			resp, err := client.VocabularyLevels(ctx)
			if err != nil {
				return fmt.Errorf("failed to list vocabulary levels: %w", err)
			}

			s := workflow.NewSession(client.BaseURL(), nil)
			s.ApplyLevels(resp, nil)
			printLevels(cmd.OutOrStdout(), s.Catalogs().Levels, resp.Default)
			return nil
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the story backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Backend.CatalogTimeout)
			defer cancel()

			client, err := a.newClient()
			if err != nil {
				return err
			}
			resp, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("backend at %s is not reachable: %w", client.BaseURL(), err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("%s: %s", client.BaseURL(), resp.Status)))
			if resp.Message != "" {
				fmt.Fprintln(w, infoStyle.Render(resp.Message))
			}
			if !resp.OpenAIConfigured {
				fmt.Fprintln(w, errorStyle.Render("The backend has no OpenAI API key; story generation will fail"))
			}
			if len(resp.Features) > 0 {
				fmt.Fprintln(w, infoStyle.Render("Features: "+strings.Join(resp.Features, ", ")))
			}
			return nil
		},
	}
}

func printVoices(w io.Writer, voices []workflow.Voice, recommended string) {
	for _, v := range voices {
		line := fmt.Sprintf("%-8s %s", v.ID, wordStyle.Render(v.Name))
		if v.Description != "" {
			line += infoStyle.Render(" - " + v.Description)
		}
		if v.ID == recommended {
			line += successStyle.Render(" (recommended)")
		}
		fmt.Fprintln(w, line)
	}
}

func printLevels(w io.Writer, levels []workflow.Level, def string) {
	for _, l := range levels {
		line := fmt.Sprintf("%-13s %s", l.Key, wordStyle.Render(l.Name))
		if l.Key == def {
			line += successStyle.Render(" (default)")
		}
		fmt.Fprintln(w, line)
		if l.Description != "" {
			fmt.Fprintln(w, infoStyle.Render("              "+l.Description))
		}
		if l.TargetLength != "" {
			fmt.Fprintln(w, infoStyle.Render("              Length: "+l.TargetLength))
		}
		if l.Examples != "" {
			fmt.Fprintln(w, infoStyle.Render("              Examples: "+l.Examples))
		}
	}
}
