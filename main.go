/*
 * lc3sim - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"encoding/binary"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/go-lc3/lc3sim/command/reader"
	config "github.com/go-lc3/lc3sim/config/configparser"
	debug "github.com/go-lc3/lc3sim/config/debugconfig"
	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
	"github.com/go-lc3/lc3sim/emu/lc3/memory"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
	"github.com/go-lc3/lc3sim/link"
	logger "github.com/go-lc3/lc3sim/util/logger"
)

var Logger *slog.Logger

// boot collects what the config file directives recorded, for use once
// the whole file has been parsed.
var boot struct {
	image   string
	listen  string
	periph  peripherals.Config
	machine string
}

func init() {
	config.RegisterOption("IMAGE", func(f config.FirstOption, _ []config.Option) error {
		boot.image = f.Text()
		return nil
	})
	config.RegisterOption("LISTEN", func(f config.FirstOption, _ []config.Option) error {
		boot.listen = f.Text()
		return nil
	})
	config.RegisterOption("NAME", func(f config.FirstOption, _ []config.Option) error {
		boot.machine = f.Text()
		return nil
	})
	config.RegisterSwitch("GPIOB", func(_ config.FirstOption, _ []config.Option) error {
		boot.periph.GpioBPresent = true
		return nil
	})
	config.RegisterSwitch("GPIOC", func(_ config.FirstOption, _ []config.Option) error {
		boot.periph.GpioCPresent = true
		return nil
	})
}

// loadImage reads a raw LC-3 object file (a big-endian origin word
// followed by the words to load there) directly into mem, ahead of any
// later RPC-driven reload.
func loadImage(path string, mem *memory.Memory) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return nil
	}
	origin := binary.BigEndian.Uint16(data[0:2])
	for i := 2; i+1 < len(data); i += 2 {
		mem.WriteWord(origin, binary.BigEndian.Uint16(data[i:i+2]))
		origin++
	}
	return nil
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "lc3sim.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.StringLong("debug", 'd', "", "Debug categories, comma separated")
	optListen := getopt.StringLong("listen", 'p', "", "Listen address (overrides config file)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debugOn := *optDebug != ""
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debugOn))
	slog.SetDefault(Logger)

	Logger.Info("lc3sim started")

	if *optConfig != "" {
		if _, err := os.Stat(*optConfig); err == nil {
			if err := config.LoadConfigFile(*optConfig); err != nil {
				Logger.Error(err.Error())
				os.Exit(1)
			}
		} else if !os.IsNotExist(err) {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if *optDebug != "" {
		for _, cat := range strings.Split(*optDebug, ",") {
			if err := debug.Set(strings.TrimSpace(cat)); err != nil {
				Logger.Warn(err.Error())
			}
		}
	}

	listenAddr := boot.listen
	if *optListen != "" {
		listenAddr = *optListen
	}
	if listenAddr == "" {
		listenAddr = ":5555"
	}

	mem := memory.New()
	if boot.image != "" {
		if err := loadImage(boot.image, mem); err != nil {
			Logger.Error("loading memory image", "path", boot.image, "err", err)
			os.Exit(1)
		}
	}

	periph := peripherals.NewSet(boot.periph)
	interp := cpu.New(mem, periph, Logger)

	name := boot.machine
	if name == "" {
		name = "lc3sim"
	}
	machine := control.New(interp, control.DeviceInfo{Name: name, ProtocolVersion: 1})

	srv, err := link.Listen(listenAddr, machine, Logger)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	Logger.Info("listening", "addr", srv.Addr().String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	consoleDone := make(chan struct{})
	go func() {
		reader.ConsoleReader(machine)
		close(consoleDone)
	}()

	select {
	case <-sigChan:
		Logger.Info("got quit signal")
	case <-consoleDone:
		Logger.Info("console exited")
	}

	Logger.Info("shutting down server...")
	srv.Close()
	Logger.Info("servers stopped.")
}
