package main

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/open-elt/open-elt/internal/config"
	"github.com/open-elt/open-elt/internal/oauth"
	"github.com/open-elt/open-elt/internal/oauth/github"
	"github.com/open-elt/open-elt/internal/oauth/gitlab"
	"github.com/open-elt/open-elt/internal/store"
)

var (
	consentWorkspaceFlag  string
	consentDefinitionFlag string
	consentRedirectFlag   string
)

// consentURLCmd is an operator tool: it resolves the stored credentials for
// a scope and prints the provider consent URL without going through the
// HTTP API.
var consentURLCmd = &cobra.Command{
	Use:   "consent-url",
	Short: "Print the OAuth consent URL for a workspace and source definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, err := uuid.Parse(consentWorkspaceFlag)
		if err != nil {
			return fmt.Errorf("invalid --workspace: %w", err)
		}
		definitionID, err := uuid.Parse(consentDefinitionFlag)
		if err != nil {
			return fmt.Errorf("invalid --definition: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		dbStore := store.New(pool, nil)
		def, err := dbStore.GetSourceDefinition(ctx, definitionID)
		if err != nil {
			return err
		}

		httpClient := &http.Client{Timeout: cfg.OAuthHTTPTimeout}
		reg := oauth.NewRegistry()
		if err := reg.Register(gitlab.New(dbStore, httpClient, nil)); err != nil {
			return err
		}
		if err := reg.Register(github.New(dbStore, httpClient, nil)); err != nil {
			return err
		}

		flow, ok := reg.Get(def.Kind)
		if !ok {
			return fmt.Errorf("no oauth flow registered for kind %q", def.Kind)
		}

		consentURL, err := flow.ConsentURL(ctx, workspaceID, definitionID, consentRedirectFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), consentURL)
		return nil
	},
}

func init() {
	consentURLCmd.Flags().StringVar(&consentWorkspaceFlag, "workspace", "", "workspace id (uuid)")
	consentURLCmd.Flags().StringVar(&consentDefinitionFlag, "definition", "", "source definition id (uuid)")
	consentURLCmd.Flags().StringVar(&consentRedirectFlag, "redirect", "", "redirect url registered with the provider")
	_ = consentURLCmd.MarkFlagRequired("workspace")
	_ = consentURLCmd.MarkFlagRequired("definition")
	_ = consentURLCmd.MarkFlagRequired("redirect")
}
