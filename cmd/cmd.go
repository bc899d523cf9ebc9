// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the import HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a playlist file and match its songs",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Playlist format hint (m3u, xspf, json, csv); detected when omitted",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (defaults to the parsed name)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
			},
			&cli.StringFlag{
				Name:  "platform",
				Usage: "Target platform for the import",
				Value: "library",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Owning user id",
				Value:   "local",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "Auto-accept matches above the confidence threshold",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "create",
				Usage: "Create the playlist from auto-accepted matches",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the job projection as JSON",
			},
		},
		Action: r.Import,
	}
}

func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a playlist file without importing it",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Playlist format hint (m3u, xspf, json, csv); detected when omitted",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the validation result as JSON",
			},
		},
		Action: r.Validate,
	}
}

func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "List import jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Owning user id",
				Value:   "local",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (processing, completed, failed)",
			},
			&cli.DurationFlag{
				Name:  "stale",
				Usage: "Only show processing jobs idle longer than this duration",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output jobs as JSON",
			},
		},
		Action: r.Jobs,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a stored playlist to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist ID to export",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Owning user id",
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (m3u, csv, json, text)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
		},
		Action: r.Export,
	}
}

func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage the local track library",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a track to the library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Track artist",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Track album",
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Track duration in seconds",
					},
					&cli.StringFlag{
						Name:  "isrc",
						Usage: "International Standard Recording Code",
					},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:  "list",
				Usage: "List library tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by exact artist",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output tracks as JSON",
					},
				},
				Action: r.LibraryList,
			},
		},
	}
}
