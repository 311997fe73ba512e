package main

import (
	"log"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/emberstate/emberfront/internal/builder"
	"github.com/emberstate/emberfront/internal/elogger"
	"github.com/emberstate/emberfront/internal/server"
	"github.com/emberstate/emberfront/pkg/config"
)

var CLI struct {
	Build CommandBuild `cmd:"" aliases:"b" help:"Builds or rebuilds the project."`
	Serve CommandServe `cmd:"" aliases:"s" help:"Run a live dev server."`

	ConfigFile string `short:"c" help:"configuration file path (optional)"`
}

type CommandBuild struct {
	SrcDir   string `help:"Source directory." type:"existingdir"`
	BuildDir string `help:"Build output."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandServe struct {
	SrcDir   string `help:"Source directory." type:"existingdir"`
	BuildDir string `help:"Build output."`
	Build    bool   `negatable:"" help:"Don't run build."`

	Port     int  `short:"p" help:"Listener port"`
	NoReload bool `help:"Disable live page reloading."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.UsageOnError())

	err := config.Init(CLI.ConfigFile)
	if err != nil {
		log.Fatal(err)
	}

	err = ctx.Run(ctx)
	if err != nil {
		ctx.PrintUsage(false)
		os.Exit(1)
	}
}

func applyVerbose(v int) {
	switch v {
	case 0:
		elogger.ApplyLogLevel("info")
	case 1:
		elogger.ApplyLogLevel("debug")
	default:
		elogger.ApplyLogLevel("all")
	}
	if v > 0 {
		elogger.Debug("msg", "Effective configuration", "config", spew.Sdump(config.Config))
	}
}

func (r *CommandBuild) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	if r.SrcDir == "" {
		r.SrcDir = config.Config.SrcDir
	}
	if r.BuildDir == "" {
		r.BuildDir = config.Config.BuildDir
	}

	buildtool := builder.NewBuilder(r.SrcDir, r.BuildDir, ".")
	buildtool.PagesDir = config.Config.PagesDir
	buildtool.Vars = config.Config.Vars

	err := buildtool.Init()
	if err != nil {
		return err
	}

	err = buildtool.Build()
	if err != nil {
		elogger.Fatal("msg", "Build failed", "err", err)
	}

	return nil
}

func (r *CommandServe) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	if r.SrcDir == "" {
		r.SrcDir = config.Config.SrcDir
	}
	if r.BuildDir == "" {
		r.BuildDir = config.Config.BuildDir
	}
	if r.Port <= 0 {
		r.Port = config.Config.ServeConfig.Port
	}

	configFile := CLI.ConfigFile
	if configFile == "" {
		configFile = config.DefaultFile
	}

	reload := !r.NoReload && !config.Config.ServeConfig.DisableReload

	serv := server.NewServer(r.SrcDir, r.BuildDir, ".", strconv.Itoa(r.Port), config.Config.ServeConfig.Redirect404, configFile, reload)
	serv.Builder().PagesDir = config.Config.PagesDir
	serv.Builder().Vars = config.Config.Vars

	return serv.Start(!r.Build)
}
