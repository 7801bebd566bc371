package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	mongodoc "github.com/crustntrust/site-api/internal/infrastructure/mongo"
	settingsdomain "github.com/crustntrust/site-api/internal/settings/domain"
)

func newSeedFormsCmd(e *env) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Upsert the built-in form, or a form read from --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := formsdomain.DefaultForm()
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if form, err = formsdomain.ParseFormFile(data); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			forms := mongodoc.NewFormRepository(e.db, e.cfg.FormCollection)
			if err := forms.Upsert(ctx, form); err != nil {
				return err
			}
			e.logger.Info("form seeded", zap.String("slug", form.Slug), zap.Int("questions", len(form.Questions)))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded form %s (%d questions)\n", form.Slug, len(form.Questions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form definition")
	return cmd
}

func newSeedSettingsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Create the applications switch if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			repo := mongodoc.NewSettingsRepository(e.db, e.cfg.SettingsCollection)
			created, err := repo.EnsureDefault(ctx, settingsdomain.JobApplicationsID)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (accepting applications)\n", settingsdomain.JobApplicationsID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already present\n", settingsdomain.JobApplicationsID)
			}
			return nil
		},
	}
}
