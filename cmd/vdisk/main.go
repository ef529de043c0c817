package main

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/vdisk/vdisk/filesystem/toyfs/compress"
)

func main() {
	app := cli.App{
		Name:      appName,
		Usage:     "an interactive shell over a toy filesystem kept in a single host file",
		ArgsUsage: "[disk file]",
		Description: "Reads commands from stdin: mkfs, open, read, write, seek, close, mkdir, " +
			"rmdir, cd, pwd, link, unlink, stat, ls, cat, cp, tree, import, export, df, " +
			"fsck and exit. import and export understand host files compressed with " +
			strings.Join(compress.Names(), ", ") + ", chosen by file extension.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "yaml config file",
				EnvVars: []string{envVarPrefix + "_CONFIG_FILE"},
			},
			&cli.Int64Flag{
				Name:  "size",
				Usage: "disk size in bytes",
			},
			&cli.Int64Flag{
				Name:  "block-size",
				Usage: "block size in bytes",
			},
			&cli.IntFlag{
				Name:  "direct-blocks",
				Usage: "block positions held in each inode and in each indirect list",
			},
			&cli.StringFlag{
				Name:  "volume-name",
				Usage: "volume label",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "one of trace, debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "strict-trailing-slash",
				Usage: "a path ending in / may only name a directory",
			},
			&cli.BoolFlag{
				Name:  "allow-same-directory-links",
				Usage: "allow a hard link in the directory of its source",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() > 1 {
				return errors.New("only one disk file may be given")
			}
			cfg, err := LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			applyFlags(ctx, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := newShell(cfg, cfg.NewLogger(os.Stderr), os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			return errors.Join(s.run(os.Stdin), s.shutdown())
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// applyFlags overrides the loaded configuration with whatever was given on the
// command line
func applyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.NArg() == 1 {
		cfg.DiskFile = ctx.Args().First()
	}
	if ctx.IsSet("size") {
		cfg.Size = ctx.Int64("size")
	}
	if ctx.IsSet("block-size") {
		cfg.BlockSize = ctx.Int64("block-size")
	}
	if ctx.IsSet("direct-blocks") {
		cfg.DirectBlocks = ctx.Int("direct-blocks")
	}
	if ctx.IsSet("volume-name") {
		cfg.VolumeName = ctx.String("volume-name")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("strict-trailing-slash") {
		cfg.StrictTrailingSlash = ctx.Bool("strict-trailing-slash")
	}
	if ctx.IsSet("allow-same-directory-links") {
		cfg.AllowSameDirectoryLinks = ctx.Bool("allow-same-directory-links")
	}
}
