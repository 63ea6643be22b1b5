package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"taskpro/internal/bootstrap"
	"taskpro/internal/command"
	"taskpro/internal/config"
	"taskpro/internal/export"
	"taskpro/internal/i18n"
	"taskpro/internal/logging"
	"taskpro/internal/repl"
	"taskpro/internal/storage"
	"taskpro/internal/taskstore"
	"taskpro/internal/tui"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const usageText = `usage: taskpro [flags] [command]

commands:
  tui                      full-screen interface (default on a terminal)
  repl                     line-mode interface (default otherwise)
  export <format> [file]   write the list as csv, print, pdf or md
  import <file.json>       load a browser localStorage dump
  init                     write .taskpro/config.json in the current directory
  version                  print the version

flags:
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("taskpro", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath string
		home       string
		lang       string
	)
	fs.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	fs.StringVar(&home, "home", "", "Data directory override (database, log, history)")
	fs.StringVar(&lang, "lang", "", "UI language: "+strings.Join(i18n.Supported(), ", "))
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config failed: %v\n", err)
		return exitFailure
	}
	if home = strings.TrimSpace(home); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			fmt.Fprintf(stderr, "resolve home failed: %v\n", err)
			return exitFailure
		}
		cfg.Storage.BaseDir = abs
	}
	if lang != "" {
		cfg.UI.Locale = lang
	}

	rest := fs.Args()
	sub := ""
	if len(rest) > 0 {
		sub, rest = rest[0], rest[1:]
	}

	switch sub {
	case "version":
		fmt.Fprintf(stdout, "taskpro %s\n", version)
		return exitOK
	case "init":
		err = runInit(stdout)
	case "import":
		err = runImport(cfg, rest, stdout)
	case "export":
		err = runExport(cfg, rest, stdout)
	case "tui", "repl", "":
		if sub == "" {
			sub = "repl"
			if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
				sub = "tui"
			}
		}
		err = runInteractive(cfg, sub, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", sub)
		fs.Usage()
		return exitUsage
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", commandName(sub), err)
		return exitFailure
	}
	return exitOK
}

func commandName(sub string) string {
	if sub == "" {
		return "taskpro"
	}
	return sub
}

func runInteractive(cfg config.Config, mode string, stdout io.Writer) error {
	res, err := bootstrap.Build(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer res.Close()

	wd, _ := os.Getwd()
	if mode == "tui" {
		return tui.Run(tui.Options{
			Store:          res.Store,
			Locale:         res.Locale,
			Logger:         res.Logger,
			SwipeCellUnits: cfg.UI.SwipeCellUnits,
			SwipeThreshold: cfg.UI.SwipeThreshold,
			ExportDir:      wd,
		})
	}
	return repl.Run(repl.Options{
		Store:     res.Store,
		Locale:    res.Locale,
		Logger:    res.Logger,
		Out:       stdout,
		Color:     repl.UseColor(int(os.Stdout.Fd())),
		ExportDir: wd,
	}, res.HistoryPath())
}

func runExport(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: taskpro export csv|print|pdf|md [file]", errUsage)
	}
	f, err := export.ParseFormat(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	act := command.Action{Kind: command.KindExport, Format: f}
	if len(args) == 2 {
		act.Path = args[1]
	}

	res, err := bootstrap.Build(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer res.Close()

	out, err := command.Apply(res.Store, act)
	if err != nil {
		return err
	}
	if act.Path == "" {
		_, err = stdout.Write(out.Data)
		return err
	}
	res.Logger.Info("exported", "format", f, "path", act.Path, "tasks", res.Store.Len())
	fmt.Fprintf(stdout, "wrote %s\n", act.Path)
	return nil
}

func runImport(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: taskpro import <file.json>", errUsage)
	}
	logger, logCloser, err := logging.New(logging.Options{Path: cfg.LogPath(), Level: cfg.Log.Level, Prefix: "taskpro"})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	kv, err := bootstrap.OpenStorage(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	n, err := storage.MigrateFromJSON(args[0], kv, taskstore.CheckImport)
	if err != nil {
		logger.Error("import failed", "file", args[0], "err", err)
		return err
	}
	tasks := 0
	if raw, err := kv.Get(storage.KeyTasks); err == nil {
		if list, err := taskstore.DecodeTasks(raw); err == nil {
			tasks = len(list)
		}
	}
	logger.Info("imported", "file", args[0], "keys", n, "tasks", tasks)
	fmt.Fprintf(stdout, "imported %d keys (%d tasks)\n", n, tasks)
	return nil
}

func runInit(stdout io.Writer) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, err := config.InitProjectConfigScaffold(wd)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}
