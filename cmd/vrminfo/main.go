package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/binzume/vrmparser/scene"
	"github.com/binzume/vrmparser/vrm"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("vrminfo", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vrminfo [flags] input.vrm...\n")
		flagSet.PrintDefaults()
	}
	configPath := flagSet.StringP("config", "c", "", "YAML config file")
	format := flagSet.StringP("format", "f", "", "output format: json, yaml, cbor")
	profiles := flagSet.StringSlice("profile", nil, "decode profiles in order (standard, no_buffers, with_validation)")
	thumbnail := flagSet.Bool("thumbnail", false, "probe the thumbnail image")
	extensions := flagSet.Bool("extensions", false, "include reconciled extensions")
	verbose := flagSet.BoolP("verbose", "v", false, "log decode attempts")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return errors.New("no input files")
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("format") {
		conf.Format = *format
	}
	if flagSet.Changed("profile") {
		conf.Profiles = *profiles
	}
	if flagSet.Changed("thumbnail") {
		conf.Thumbnail = *thumbnail
	}
	if flagSet.Changed("extensions") {
		conf.Extensions = *extensions
	}
	if err := checkFormat(conf.Format); err != nil {
		return err
	}
	sceneProfiles, err := conf.sceneProfiles()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	options := &vrm.Options{
		Scene:     &scene.AdapterOptions{Profiles: sceneProfiles},
		Thumbnail: conf.Thumbnail,
		Logger:    logger,
	}

	var reports []*report
	failed := 0
	for _, input := range flagSet.Args() {
		r, err := vrm.LoadFile(input, options)
		if err != nil {
			logger.Error("parse failed", "file", input, "error", err)
			reports = append(reports, &report{File: input, Error: err.Error()})
			failed++
			continue
		}
		reports = append(reports, newReport(input, r, conf.Extensions))
	}
	if err := writeReports(stdout, conf.Format, reports); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(reports))
	}
	return nil
}
