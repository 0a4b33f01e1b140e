package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/smasonuk/goportal"
)

type logLevelFlag struct {
	value slog.Level
}

func (l *logLevelFlag) String() string {
	return l.value.String()
}

func (l *logLevelFlag) Set(value string) error {
	m := map[string]slog.Level{"DEBUG": slog.LevelDebug, "INFO": slog.LevelInfo, "WARN": slog.LevelWarn, "ERROR": slog.LevelError}
	v, ok := m[strings.ToUpper(value)]
	if !ok {
		return fmt.Errorf("unknown log level")
	}
	l.value = v
	return nil
}

// defined flags
var (
	levelFlag       logLevelFlag
	configFlag      = flag.String("config", "goportal.yaml", "path to the YAML config file")
	logFileFlag     = flag.String("logfile", "", "write logs to this file instead of the console")
	writeConfigFlag = flag.String("write-config", "", "write the effective config to this file and exit")
	noPortalsFlag   = flag.Bool("no-portals", false, "start with portal rendering off")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)
	if *logFileFlag != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   *logFileFlag,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	cfg, err := goportal.LoadConfig(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	if *noPortalsFlag {
		cfg.Portals.Rendering = false
	}
	if *writeConfigFlag != "" {
		if err := cfg.WriteFile(*writeConfigFlag); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Config written to %s\n", *writeConfigFlag)
		return
	}
	if err := goportal.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
