package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mayeranalytics/go-bi5/internal/app"
	"github.com/mayeranalytics/go-bi5/internal/misc"
)

func main() {
	args := app.ArgsList{}
	flag.StringVar(&args.Date,
		"date", "",
		"period start of a single file in yyyy-mm-ddTHH:MM:SS format")
	flag.StringVar(&args.Sep,
		"sep", "\t",
		"column separator for the text dump")
	flag.StringVar(&args.Csv,
		"csv", "",
		"write output to the given CSV file instead of stdout")
	flag.BoolVar(&args.Header,
		"header", false,
		"print a header line")
	flag.BoolVar(&args.SkipBad,
		"skip-bad", false,
		"skip unreadable files during directory traversal instead of stopping")
	flag.StringVar(&args.Download,
		"download", "",
		"download tick data for the given symbol, like: EURUSD")
	flag.StringVar(&args.Folder,
		"folder", "",
		"destination folder for downloads")
	flag.StringVar(&args.Start,
		"start", "",
		"download start date, format YYYY-MM-DD")
	flag.StringVar(&args.End,
		"end", "",
		"download end date, format YYYY-MM-DD")
	flag.BoolVar(&args.Verbose,
		"verbose", false,
		"verbose output trace log")
	flag.Parse()
	args.Path = flag.Arg(0)

	if args.Verbose {
		misc.SetDefaultLog(slog.LevelDebug)
	} else {
		misc.SetDefaultLog(slog.LevelInfo)
	}

	opt, err := app.ParseOption(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintln(os.Stderr, "Usage: bi5 [options] <file-or-directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err = app.NewApp(opt).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
