// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// filterFlags narrow and order list output; see [Runner.filter].
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Only show titles with this genre",
		},
		&cli.FloatFlag{
			Name:  "min-score",
			Usage: "Only show titles scored at least this high",
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "Sort by popular, score or title",
		},
		jsonFlag(),
	}
}

// animeCommand handles catalog lookups that need no session.
func animeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "anime",
		Aliases: []string{"a"},
		Usage:   "Search and browse the anime catalog",
		Commands: []*cli.Command{
			{
				Name:   "home",
				Usage:  "Print the backend's home payload",
				Action: r.AnimeHome,
			},
			{
				Name:      "search",
				Usage:     "Search anime by keyword",
				Arguments: []cli.Argument{&cli.StringArg{Name: "keyword"}},
				Flags:     filterFlags(),
				Action:    r.AnimeSearch,
			},
			{
				Name:  "list",
				Usage: "List catalog titles",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of titles to return (0 uses ui.list_limit)",
					},
				}, filterFlags()...),
				Action: r.AnimeList,
			},
			{
				Name:   "popular",
				Usage:  "List popular titles",
				Flags:  filterFlags(),
				Action: r.AnimePopular,
			},
			{
				Name:      "recommend",
				Usage:     "List titles similar to the given title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags:     filterFlags(),
				Action:    r.AnimeRecommend,
			},
			{
				Name:      "show",
				Usage:     "Show one anime and titles similar to it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.AnimeShow,
			},
			{
				Name:      "open",
				Usage:     "Open an anime's catalog page in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.AnimeOpen,
			},
			{
				Name:  "history",
				Usage: "Show recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of searches to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Delete the search history",
					},
				},
				Action: r.AnimeHistory,
			},
		},
	}
}

// userCommand handles account and session operations.
func userCommand(r *Runner) *cli.Command {
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
			},
		}
	}

	return &cli.Command{
		Name:  "user",
		Usage: "Account and session management",
		Commands: []*cli.Command{
			{
				Name:   "register",
				Usage:  "Create an account",
				Flags:  credentialFlags(),
				Action: r.UserRegister,
			},
			{
				Name:   "login",
				Usage:  "Sign in and store the session token",
				Flags:  credentialFlags(),
				Action: r.UserLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session token",
				Action: r.UserLogout,
			},
			{
				Name:   "me",
				Usage:  "Show the signed-in account",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.UserMe,
			},
			{
				Name:   "status",
				Usage:  "Inspect the stored session token without contacting the backend",
				Action: r.UserStatus,
			},
			{
				Name:  "password",
				Usage: "Change the account password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "new",
						Usage: "New password (prompted when omitted)",
					},
				},
				Action: r.UserPassword,
			},
			{
				Name:  "delete",
				Usage: "Delete the account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				},
				Action: r.UserDelete,
			},
			{
				Name:  "feedback",
				Usage: "Rate a set of recommendations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Recommendation type: personal or similar",
						Value: "personal",
					},
					&cli.BoolFlag{
						Name:  "satisfied",
						Usage: "Mark the recommendations as satisfying",
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"m"},
						Usage:   "Feedback text",
					},
				},
				Action: r.UserFeedback,
			},
		},
	}
}

// favoritesCommand handles the signed-in user's favorites.
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorites",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add an anime to favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an anime from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
			{
				Name:  "export",
				Usage: "Export favorites to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, text or json",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory for markdown",
					},
					&cli.BoolFlag{
						Name:  "images",
						Usage: "Download cover images (markdown only)",
					},
				},
				Action: r.FavoritesExport,
			},
			{
				Name:  "similar",
				Usage: "Export titles similar to each favorite, one file per favorite",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, text or json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: similar_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Titles kept per favorite (0 keeps all)",
					},
				},
				Action: r.FavoritesSimilar,
			},
		},
	}
}

func recommendationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommendations",
		Aliases: []string{"recs"},
		Usage:   "List personal recommendations derived from favorites",
		Flags:   filterFlags(),
		Action:  r.Recommendations,
	}
}

// apiCommand handles direct backend calls.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the recommendation backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Print JSON on one line",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "dump",
				Usage: "Fetch every read endpoint and print the raw payloads",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
		},
		Action: r.Setup,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}
