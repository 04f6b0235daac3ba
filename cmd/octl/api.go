package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/domain"
)

var (
	signinFirstName string
	signinLastName  string
	signinRedirect  string

	collectiveName     string
	collectiveSlug     string
	collectiveType     string
	collectiveLocation string
	tierAmount         int
)

var signinCmd = &cobra.Command{
	Use:   "signin <email>",
	Short: "Request a login link, creating the account if needed",
	Long: `Request a login link for an email address. Unknown emails get a new
account. Test accounts receive the signin URL in the response, and the
one-time token it carries is printed too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		redirect, err := client.Signin(ctx, backend.SigninUser{
			Email:     args[0],
			FirstName: signinFirstName,
			LastName:  signinLastName,
		}, signinRedirect)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Login link sent to %s\n", args[0])
		if redirect == "" {
			return nil
		}
		fmt.Fprintf(out, "Signin URL: %s\n", redirect)
		if tok, err := backend.TokenFromRedirect(redirect); err == nil {
			fmt.Fprintf(out, "Token: %s\n", tok)
		}
		return nil
	},
}

var createCollectiveCmd = &cobra.Command{
	Use:     "create-collective",
	Short:   "Create a collective with a monthly backer tier",
	Example: `  octl create-collective --token $TOKEN --name "Webpack" --slug webpack`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := collectiveInput()
		if err != nil {
			return err
		}

		client, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		created, err := client.CreateCollective(ctx, input)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Collective created successfully!\n\n")
		fmt.Fprintf(out, "Collective ID: %d\n", created.ID)
		fmt.Fprintf(out, "Collective Slug: %s\n", created.Slug)
		fmt.Fprintf(out, "Collective Name: %s\n", created.Name)
		return nil
	},
}

func collectiveInput() (domain.CollectiveInput, error) {
	if collectiveName == "" {
		return domain.CollectiveInput{}, fmt.Errorf("--name is required")
	}
	typ := domain.CollectiveType(collectiveType)
	if !typ.IsValid() {
		return domain.CollectiveInput{}, fmt.Errorf("invalid collective type %q", collectiveType)
	}
	if tierAmount < 0 {
		return domain.CollectiveInput{}, fmt.Errorf("--tier-amount must not be negative")
	}

	input := domain.CollectiveInput{
		Name:     collectiveName,
		Slug:     collectiveSlug,
		Type:     typ,
		Location: domain.Location{Name: collectiveLocation},
	}
	if tierAmount > 0 {
		input.Tiers = []domain.Tier{{
			Type:     domain.OrderTypeContribution,
			Name:     "backer",
			Amount:   tierAmount,
			Interval: domain.IntervalMonth,
		}}
	}
	return input, nil
}

var collectiveCmd = &cobra.Command{
	Use:   "collective <slug>",
	Short: "Print a collective as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		c, err := client.Collective(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	signinCmd.Flags().StringVar(&signinFirstName, "first-name", "", "First name of a new account")
	signinCmd.Flags().StringVar(&signinLastName, "last-name", "", "Last name of a new account")
	signinCmd.Flags().StringVar(&signinRedirect, "redirect", "", "Path to land on after login")

	createCollectiveCmd.Flags().StringVar(&collectiveName, "name", "", "Collective name")
	createCollectiveCmd.Flags().StringVar(&collectiveSlug, "slug", "", "Collective slug (derived from the name when empty)")
	createCollectiveCmd.Flags().StringVar(&collectiveType, "type", string(domain.CollectiveTypeCollective), "Collective type")
	createCollectiveCmd.Flags().StringVar(&collectiveLocation, "location", "", "Location name")
	createCollectiveCmd.Flags().IntVar(&tierAmount, "tier-amount", 500, "Monthly backer tier amount in cents, 0 for none")
}
