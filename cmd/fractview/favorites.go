package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fractview/codec"
	"github.com/wippyai/fractview/favorites"
)

func newFavoritesCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage saved fractals",
		Long: `Manage the favorites database. Favorites are stored by title; adding a
title that exists replaces it.

Examples:
  fractview favorites add "Deep zoom" zoom.fv --description "seahorse valley"
  fractview favorites list
  fractview favorites export favorites.json`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "favorites database (default from config)")

	open := func() (*favorites.Store, error) {
		path := dbPath
		if path == "" {
			path = a.cfg.Favorites.Path
		}
		a.log.Debug("opening favorites", zap.String("path", path))
		return favorites.Open(path)
	}

	cmd.AddCommand(
		newFavoritesAddCmd(a, open),
		newFavoritesListCmd(open),
		newFavoritesShowCmd(open),
		newFavoritesRmCmd(open),
		newFavoritesImportCmd(open),
		newFavoritesExportCmd(open),
	)
	return cmd
}

type storeOpener func() (*favorites.Store, error)

func newFavoritesAddCmd(a *app, open storeOpener) *cobra.Command {
	var (
		description string
		iconPath    string
		sets        []string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE FILE",
		Short: "Save a fractal under a title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProvider(args[1:], nil, sets)
			if err != nil {
				return err
			}
			head, _ := p.Head()
			f, _ := p.Fractal(head)

			fav := &codec.Favorite{Data: f.Data(), Description: description}
			if iconPath != "" {
				if fav.Icon, err = os.ReadFile(iconPath); err != nil {
					return err
				}
			}

			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.Put(cmd.Context(), args[0], fav)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q (%s)\n", e.Title, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description shown in listings")
	cmd.Flags().StringVar(&iconPath, "icon", "", "image file stored as the icon")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "assign key=value before saving")
	return cmd
}

func newFavoritesListCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List favorites, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styled := isTerminal(out)
			for _, e := range entries {
				title := e.Title
				if styled {
					title = keyStyle.Render(title)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", title, e.UpdatedAt.Format(time.RFC3339), e.Description)
			}
			return nil
		},
	}
}

func newFavoritesShowCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "show TITLE",
		Short: "Print a favorite as a persisted document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title: %s\n", e.Title)
			if e.Description != "" {
				fmt.Fprintf(out, "description: %s\n", e.Description)
			}
			if len(e.Icon) > 0 {
				fmt.Fprintf(out, "icon: %d bytes\n", len(e.Icon))
			}
			return writeDocument(out, e.Data)
		},
	}
}

func newFavoritesRmCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:     "rm TITLE...",
		Aliases: []string{"remove"},
		Short:   "Delete favorites",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			var errs error
			for _, title := range args {
				errs = multierr.Append(errs, s.Delete(cmd.Context(), title))
			}
			return errs
		},
	}
}

func newFavoritesImportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a favorites collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := codec.UnmarshalFavorites(b)
			if err != nil {
				return err
			}

			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Import(cmd.Context(), entries)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d\n", n, len(entries))
			return err
		},
	}
}

func newFavoritesExportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export all favorites as a collection",
		Long:  "Export all favorites as a JSON collection, to FILE or standard output.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.Export(cmd.Context())
			if err != nil {
				return err
			}
			b, err := codec.MarshalFavorites(entries)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(append(b, '\n'))
				return err
			}
			return os.WriteFile(args[0], b, 0o644)
		},
	}
}
