package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pileuszu/unity-ai-model-upscaler/internal/config"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/engine"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/imaging"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/modelzoo"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/server"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/upscale"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("upscaler-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "upscale":
			os.Exit(runUpscaleCommand(os.Args[2:]))
		}
	}

	// .env is optional; missing files are not an error.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "upscaler-mcp: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	ups := loadUpscaler(cfg, log)
	srv := server.New(ups, cfg, log)
	if err := srv.Run(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func printHelp() {
	fmt.Println("upscaler-mcp - MCP server for AI image upscaling")
	fmt.Println()
	fmt.Println("Usage: upscaler-mcp [command] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)     Run the MCP server over stdin/stdout")
	fmt.Println("  upscale    One-shot upscale: upscale -in src.png -out dst.png -scale 4")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  UPSCALER_CONFIG           Path to the YAML config file")
	fmt.Println("  UPSCALER_MODEL            Local .onnx path or HuggingFace repo id")
	fmt.Println("  UPSCALER_TILE_SIZE        Fallback tile size (default 512)")
	fmt.Println("  UPSCALER_PADDING          Tile context padding (default 12)")
	fmt.Println("  UPSCALER_FAILURE_POLICY   abort or skip")
	fmt.Println("  UPSCALER_LOG_LEVEL        zap log level (default info)")
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runUpscaleCommand implements the one-shot CLI path. It shares the whole
// pipeline with the server, including the Lanczos fallback when no model is
// available.
func runUpscaleCommand(args []string) int {
	fs := flag.NewFlagSet("upscale", flag.ExitOnError)
	in := fs.String("in", "", "source image path")
	out := fs.String("out", "", "output PNG path")
	scale := fs.Float64("scale", 4.0, "scale factor")
	cfgPath := fs.String("config", "", "config file path")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "upscale: -in and -out are required")
		fs.Usage()
		return 2
	}

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upscale: %v\n", err)
		return 1
	}

	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	cache := imaging.NewImageCache()
	src, err := cache.Load(*in)
	if err != nil {
		log.Error("loading source", zap.Error(err))
		return 1
	}

	ups := loadUpscaler(cfg, log)

	var output *image.NRGBA
	method := "model"
	if ups == nil {
		output = imaging.ResizeLanczos(src, *scale)
		method = "lanczos"
	} else {
		output, err = ups.Upscale(context.Background(), src, *scale)
		if err != nil {
			log.Error("upscale failed", zap.Error(err))
			return 1
		}
	}

	if cfg.Output.Sharpen {
		output = imaging.Sharpen(output, cfg.Output.SharpenAmount)
	}
	if err := imaging.SavePNG(output, *out); err != nil {
		log.Error("writing output", zap.Error(err))
		return 1
	}

	log.Info("upscale complete",
		zap.String("in", *in), zap.String("out", *out),
		zap.Float64("scale", *scale), zap.String("method", method),
		zap.Int("width", output.Bounds().Dx()), zap.Int("height", output.Bounds().Dy()))
	return 0
}

// loadUpscaler resolves and loads the configured model. A missing model or
// an unavailable backend is not fatal: the server degrades to the Lanczos
// fallback and says so in the log.
func loadUpscaler(cfg config.Config, log *zap.Logger) *upscale.Upscaler {
	if cfg.Model.Source == "" {
		log.Warn("no model configured, upscaling falls back to Lanczos resampling")
		return nil
	}

	path, err := modelzoo.Resolve(cfg.Model.Source, cfg.Model.File, cfg.Model.CacheDir)
	if err != nil {
		log.Warn("model unavailable, falling back to Lanczos resampling", zap.Error(err))
		return nil
	}

	eng, err := engine.NewONNX(engine.ONNXConfig{
		ModelPath:   path,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
		LibraryPath: cfg.Model.LibraryPath,
	})
	if err != nil {
		if errors.Is(err, engine.ErrBackendUnavailable) {
			log.Warn("inference backend not built in, falling back to Lanczos resampling")
		} else {
			log.Warn("model load failed, falling back to Lanczos resampling", zap.Error(err))
		}
		return nil
	}

	log.Info("model loaded", zap.String("path", path))
	return upscale.New(eng, upscale.Options{
		TileSizeDefault: cfg.Tiling.TileSizeDefault,
		ContextPadding:  cfg.Tiling.ContextPadding,
		FailurePolicy:   upscale.FailurePolicy(cfg.Tiling.FailurePolicy),
		Logger:          log,
	})
}

// newLogger builds a stderr logger at the configured level. stdout is
// reserved for the MCP protocol.
func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
