// Command scripture reads installed Bible translations from the terminal
// and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperScripture/core/sqlite"
	"github.com/FocuswithJustin/JuniperScripture/internal/api"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	DataDir     string `name:"data-dir" short:"d" env:"SCRIPTURE_DATA_DIR" default:"." type:"path" help:"Directory holding translation sources"`
	Prefs       string `name:"prefs" env:"SCRIPTURE_PREFS" type:"path" help:"Preferences file (default: user config dir)"`
	Translation string `name:"translation" short:"t" env:"SCRIPTURE_TRANSLATION" help:"Translation id (default: last used)"`
	LogLevel    string `name:"log-level" env:"SCRIPTURE_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat   string `name:"log-format" env:"SCRIPTURE_LOG_FORMAT" default:"text" enum:"text,json" help:"Log format"`
	JSON        bool   `name:"json" help:"Print JSON instead of text"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Translations TranslationsCmd `cmd:"" help:"List known translations"`
	Books        BooksCmd        `cmd:"" help:"List the books of a translation"`
	Chapters     ChaptersCmd     `cmd:"" help:"List the chapters of a book"`
	Read         ReadCmd         `cmd:"" help:"Print a chapter"`
	Ref          RefCmd          `cmd:"" help:"Parse a reference"`
	Verify       VerifyCmd       `cmd:"" help:"Check installed translations"`
	Install      InstallCmd      `cmd:"" help:"Install a translation bundle"`
	Pack         PackCmd         `cmd:"" help:"Pack a translation source into a bundle"`
	Serve        ServeCmd        `cmd:"" help:"Start the HTTP API server"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("scripture"),
		kong.Description("Juniper Scripture - read-only access to installed Bible translations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.Bind(&cli.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(stdout, (*io.Writer)(nil)),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.Globals.initLogging(stderr); err != nil {
		return err
	}
	return kctx.Run()
}

func (g *Globals) initLogging(w io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(w, level, format)
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(out, "scripture version %s\n", version)
	fmt.Fprintf(out, "sqlite driver: %s (%s)\n", info.DriverType, info.Package)
	return nil
}

// ServeCmd runs the API server until interrupted.
type ServeCmd struct {
	Addr           string   `help:"Listen address" default:":8081" env:"SCRIPTURE_ADDR"`
	AllowedOrigins []string `name:"allowed-origin" help:"WebSocket origin to accept (repeatable; default all)"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := g.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	api.Version = version
	srv := api.New(api.Config{
		Addr:           c.Addr,
		PrefsPath:      e.prefsPath,
		AllowedOrigins: c.AllowedOrigins,
	}, e.session, nil)
	return srv.ListenAndServe(ctx)
}

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.Exit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scripture: error: %v\n", err)
		os.Exit(1)
	}
}
